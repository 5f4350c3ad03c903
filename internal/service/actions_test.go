package service

import (
	"testing"
	"time"

	"crownium_bot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReferralPayload(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		expectedID int64
		expectedOK bool
	}{
		{name: "Valid id", payload: "42", expectedID: 42, expectedOK: true},
		{name: "Surrounding spaces", payload: " 42 ", expectedID: 42, expectedOK: true},
		{name: "Empty", payload: ""},
		{name: "Non numeric", payload: "abc"},
		{name: "Trailing garbage", payload: "42abc"},
		{name: "Own id", payload: "7"},
		{name: "Decimal", payload: "4.5"},
		{name: "Hex", payload: "0x10"},
		{name: "Exponent", payload: "1e3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseReferralPayload(tt.payload, 7)
			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedID, id)
		})
	}
}

func TestNewUser(t *testing.T) {
	now := time.Now().UTC()

	u := NewUser(model.Identity{TelegramID: 5, FirstName: "Ann"}, now)

	assert.Equal(t, int64(5), u.TelegramID)
	require.NotNil(t, u.FirstName)
	assert.Equal(t, "Ann", *u.FirstName)
	assert.Nil(t, u.Username)
	assert.Equal(t, DefaultLocale, u.Locale)
	assert.Nil(t, u.Timezone)
	assert.Nil(t, u.ReferrerID)
	assert.Zero(t, u.DailyClickCount)
	assert.Zero(t, u.TotalCrownium())
	assert.False(t, u.IsEligibleForPayout)
	assert.Equal(t, now, u.JoinedAt)
}

func TestApplyClick(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Credits reward and counts the click", func(t *testing.T) {
		u := &model.User{DailyClickCount: 3, TotalClickCrownium: 100, ReferralCount: 1}

		next, reward, err := ApplyClick(u, now)

		require.NoError(t, err)
		assert.Equal(t, int64(11), reward)
		assert.Equal(t, 4, next.DailyClickCount)
		assert.Equal(t, int64(111), next.TotalClickCrownium)
		assert.Equal(t, now, *next.LastClickAt)
		assert.Equal(t, 3, u.DailyClickCount, "input record must not change")
	})

	t.Run("Rejects at the daily limit", func(t *testing.T) {
		u := &model.User{DailyClickCount: DailyClickLimit, TotalClickCrownium: 100}

		next, reward, err := ApplyClick(u, now)

		assert.ErrorIs(t, err, ErrDailyClickLimit)
		assert.Nil(t, next)
		assert.Zero(t, reward)
	})
}

func TestApplyWithdraw(t *testing.T) {
	u := &model.User{TasksCompletedCount: 2, TotalTaskCrownium: 500000, ClickStreakDays: 24}

	next, err := ApplyWithdraw(u)
	require.NoError(t, err)
	assert.True(t, next.IsEligibleForPayout)
	assert.False(t, u.IsEligibleForPayout)

	u.ClickStreakDays = 0
	_, err = ApplyWithdraw(u)
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestSecondaryDisplay(t *testing.T) {
	tests := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		100:    "1.00",
		12345:  "123.45",
		500000: "5000.00",
		-5:     "-0.05",
		-250:   "-2.50",
	}

	for total, expected := range tests {
		assert.Equal(t, expected, SecondaryDisplay(total), "total=%d", total)
	}
}
