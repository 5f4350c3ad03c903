package service

import (
	"math"
	"time"

	"crownium_bot/internal/model"
)

const (
	BaseClickReward = 10

	ReferredBonusWindow = 48 * time.Hour
	ReferredMultiplier  = 1.05
	PerReferralBonus    = 0.1
)

// ComputeClickReward returns the crownium earned by one click. The fresh
// referral bonus and the per-referral bonus are floored separately, in that
// order.
func ComputeClickReward(u *model.User, now time.Time) int64 {
	reward := int64(BaseClickReward)

	if u.ReferredAt != nil && now.Sub(*u.ReferredAt) <= ReferredBonusWindow {
		reward = int64(math.Floor(float64(reward) * ReferredMultiplier))
	}

	if u.ReferralCount > 0 {
		// explicit float64 conversion keeps the product from being fused
		// into the addition
		bonus := float64(PerReferralBonus * float64(u.ReferralCount))
		multiplier := 1 + bonus
		reward = int64(math.Floor(float64(reward) * multiplier))
	}

	return reward
}
