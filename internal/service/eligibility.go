package service

import "crownium_bot/internal/model"

const (
	MinTasksForPayout      = 2
	MinCrowniumForPayout   = 500000
	MinStreakDaysForPayout = 24
)

// IsWithdrawEligible reports whether u qualifies for the next payout window.
// click_streak_days is never written by this service; it has to be populated
// by whoever tracks streaks.
func IsWithdrawEligible(u *model.User) bool {
	return u.TasksCompletedCount >= MinTasksForPayout &&
		u.TotalCrownium() >= MinCrowniumForPayout &&
		u.ClickStreakDays >= MinStreakDaysForPayout
}
