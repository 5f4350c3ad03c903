package model

import "time"

type User struct {
	TelegramID          int64
	Username            *string
	FirstName           *string
	LastName            *string
	JoinedAt            time.Time
	DailyClickCount     int
	TotalClickCrownium  int64
	TotalTaskCrownium   int64
	TasksCompletedCount int
	ReferrerID          *int64
	ReferredAt          *time.Time
	ReferralCount       int
	ClickStreakDays     int
	IsEligibleForPayout bool
	LastClickAt         *time.Time
	Locale              string
	Timezone            *string
}

// TotalCrownium is the combined click and task balance.
func (u *User) TotalCrownium() int64 {
	return u.TotalClickCrownium + u.TotalTaskCrownium
}

// Identity is what Telegram tells us about the sender of an update.
type Identity struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

type Referrer struct {
	TelegramID    int64
	Username      *string
	FirstName     *string
	ReferralCount int
}

// DisplayName picks the handle, then the first name, then a placeholder.
func (r *Referrer) DisplayName() string {
	if r.Username != nil && *r.Username != "" {
		return "@" + *r.Username
	}
	if r.FirstName != nil && *r.FirstName != "" {
		return *r.FirstName
	}
	return "Unknown"
}
