package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"crownium_bot/internal/model"
)

const (
	DailyClickLimit = 500
	LeaderboardSize = 5
	DefaultLocale   = "en"
)

// NewUser builds the record created on a user's first start.
func NewUser(identity model.Identity, now time.Time) *model.User {
	locale := identity.LanguageCode
	if locale == "" {
		locale = DefaultLocale
	}

	return &model.User{
		TelegramID: identity.TelegramID,
		Username:   optional(identity.Username),
		FirstName:  optional(identity.FirstName),
		LastName:   optional(identity.LastName),
		JoinedAt:   now,
		Locale:     locale,
	}
}

// ParseReferralPayload extracts a referrer id from a start payload. Empty,
// non-numeric and self-referencing payloads are rejected.
func ParseReferralPayload(payload string, selfID int64) (int64, bool) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return 0, false
	}

	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil || id == selfID {
		return 0, false
	}

	return id, true
}

func AttributeReferral(u *model.User, referrerID int64, now time.Time) {
	u.ReferrerID = &referrerID
	u.ReferredAt = &now
}

// ApplyClick returns the record after one click along with the reward.
func ApplyClick(u *model.User, now time.Time) (*model.User, int64, error) {
	if u.DailyClickCount >= DailyClickLimit {
		return nil, 0, ErrDailyClickLimit
	}

	reward := ComputeClickReward(u, now)

	next := *u
	next.DailyClickCount++
	next.TotalClickCrownium += reward
	next.LastClickAt = &now

	return &next, reward, nil
}

// ApplyWithdraw returns the record with the payout flag set, or
// ErrNotEligible when any payout condition fails.
func ApplyWithdraw(u *model.User) (*model.User, error) {
	if !IsWithdrawEligible(u) {
		return nil, ErrNotEligible
	}

	next := *u
	next.IsEligibleForPayout = true

	return &next, nil
}

// SecondaryDisplay renders total/100 with exactly two decimals.
func SecondaryDisplay(total int64) string {
	sign := ""
	abs := total
	if total < 0 {
		sign = "-"
		abs = -total
	}

	return fmt.Sprintf("%s%d.%02d", sign, abs/100, abs%100)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
