package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"crownium_bot/internal/metrics"
	"crownium_bot/internal/model"
	"crownium_bot/internal/repository"
	"crownium_bot/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOfferURL = "https://your-cpa-network.com/offer"

func strPtr(s string) *string { return &s }

func newTestRouter(t *testing.T, repo service.UserRepository) *Router {
	t.Helper()
	r, err := NewRouter(service.NewUserService(repo), "crownium_bot", testOfferURL, metrics.New())
	require.NoError(t, err)
	return r
}

func action(name string, id int64) Action {
	return Action{
		Name:     name,
		ChatID:   id,
		Identity: model.Identity{TelegramID: id, FirstName: "Alice", Username: "alice"},
	}
}

func TestRouter_Dispatch(t *testing.T) {
	tests := []struct {
		name     string
		seed     []*model.User
		action   Action
		expected string
		withMenu bool
	}{
		{
			name:     "Start greets by first name",
			action:   action(ActionStart, 42),
			expected: "Welcome, Alice! 🎉\nUse the menu below to interact.",
			withMenu: true,
		},
		{
			name:     "Click without record",
			action:   action(ActionClick, 42),
			expected: "❌ Please send /start first.",
		},
		{
			name:     "Click registers reward and count",
			seed:     []*model.User{{TelegramID: 42, DailyClickCount: 7}},
			action:   action(ActionClick, 42),
			expected: "⛏️ Click registered! (8/500) +10 CRM.",
		},
		{
			name:     "Click with referrals",
			seed:     []*model.User{{TelegramID: 42, ReferralCount: 3}},
			action:   action(ActionClick, 42),
			expected: "⛏️ Click registered! (1/500) +13 CRM.",
		},
		{
			name:     "Click at daily cap",
			seed:     []*model.User{{TelegramID: 42, DailyClickCount: 500}},
			action:   action(ActionClick, 42),
			expected: "⚠️ 500 clicks/day max reached.",
		},
		{
			name:     "Balance sums both accumulators",
			seed:     []*model.User{{TelegramID: 42, TotalClickCrownium: 12000, TotalTaskCrownium: 345}},
			action:   action(ActionBalance, 42),
			expected: "👑 You have 12345 CRM = R123.45",
		},
		{
			name:     "Balance without record",
			action:   action(ActionBalance, 42),
			expected: "❌ Please send /start first.",
		},
		{
			name:     "Task needs no record",
			action:   action(ActionTask, 42),
			expected: "🛠️ Complete this offer: https://your-cpa-network.com/offer?uid=42",
		},
		{
			name:     "Invite needs no record",
			action:   action(ActionInvite, 42),
			expected: "🔗 Invite link: https://t.me/crownium_bot?start=42",
		},
		{
			name:     "Withdraw ineligible",
			seed:     []*model.User{{TelegramID: 42, TasksCompletedCount: 2, TotalClickCrownium: 500000, ClickStreakDays: 23}},
			action:   action(ActionWithdraw, 42),
			expected: "🚫 You are not eligible for withdrawal yet.",
		},
		{
			name:     "Withdraw eligible",
			seed:     []*model.User{{TelegramID: 42, TasksCompletedCount: 2, TotalTaskCrownium: 500000, ClickStreakDays: 24}},
			action:   action(ActionWithdraw, 42),
			expected: "✅ You are in the next payout window.",
		},
		{
			name:     "Withdraw without record",
			action:   action(ActionWithdraw, 42),
			expected: "❌ Please send /start first.",
		},
		{
			name: "Leaderboard",
			seed: []*model.User{
				{TelegramID: 1, Username: strPtr("bob"), ReferralCount: 2},
				{TelegramID: 2, FirstName: strPtr("Carol"), ReferralCount: 5},
				{TelegramID: 3, ReferralCount: 2},
			},
			action:   action(ActionLeaderboard, 42),
			expected: "🏆 Top Referrers:\n1. Carol — 5\n2. @bob — 2\n3. Unknown — 2\n",
		},
		{
			name:     "Leaderboard empty store",
			action:   action(ActionLeaderboard, 42),
			expected: "🏆 Top Referrers:\n",
		},
		{
			name:     "Me without record",
			action:   action(ActionMe, 42),
			expected: "❌ Please send /start first.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewMemory()
			for _, u := range tt.seed {
				repo.Put(u)
			}
			router := newTestRouter(t, repo)

			reply, err := router.Dispatch(context.Background(), tt.action)
			require.NoError(t, err)
			require.NotNil(t, reply)
			assert.Equal(t, tt.expected, reply.Text)
			assert.Equal(t, tt.withMenu, reply.WithMenu)
		})
	}
}

func TestRouter_DispatchIgnoresUnknownText(t *testing.T) {
	router := newTestRouter(t, repository.NewMemory())

	for _, text := range []string{"click", "CLICK", "hello", "/help", ""} {
		reply, err := router.Dispatch(context.Background(), action(text, 42))
		assert.NoError(t, err)
		assert.Nil(t, reply, text)
	}
}

func TestRouter_Me(t *testing.T) {
	repo := repository.NewMemory()
	repo.Put(&model.User{TelegramID: 42, Username: strPtr("alice"), FirstName: strPtr("Alice"), ReferralCount: 4})
	router := newTestRouter(t, repo)

	reply, err := router.Dispatch(context.Background(), action(ActionMe, 42))
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(reply.Text, "Your record:\n"))
	body := strings.TrimPrefix(reply.Text, "Your record:\n")
	assert.JSONEq(t, `{"user_id":42,"username":"alice","name":"Alice","referrals":4}`, body)
	assert.Contains(t, body, "\n  \"user_id\": 42,")
}

func TestRouter_MeKeepsMarkupCharacters(t *testing.T) {
	repo := repository.NewMemory()
	repo.Put(&model.User{TelegramID: 42, Username: strPtr("tom_and_jerry"), FirstName: strPtr("Tom & <Jerry>")})
	router := newTestRouter(t, repo)

	reply, err := router.Dispatch(context.Background(), action(ActionMe, 42))
	require.NoError(t, err)

	assert.Contains(t, reply.Text, `"name": "Tom & <Jerry>"`)
	assert.NotContains(t, reply.Text, `\u0026`)
	assert.False(t, strings.HasSuffix(reply.Text, "\n"))
}

func TestRouter_MeWithoutUsername(t *testing.T) {
	repo := repository.NewMemory()
	repo.Put(&model.User{TelegramID: 42})
	router := newTestRouter(t, repo)

	reply, err := router.Dispatch(context.Background(), action(ActionMe, 42))
	require.NoError(t, err)

	body := strings.TrimPrefix(reply.Text, "Your record:\n")
	assert.JSONEq(t, `{"user_id":42,"username":null,"name":null,"referrals":0}`, body)
}

func TestRouter_StartWithReferral(t *testing.T) {
	repo := repository.NewMemory()
	repo.Put(&model.User{TelegramID: 7})
	router := newTestRouter(t, repo)

	a := action(ActionStart, 42)
	a.Payload = "7"
	_, err := router.Dispatch(context.Background(), a)
	require.NoError(t, err)

	referrer, err := repo.GetUserByTelegramID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, referrer.ReferralCount)

	// a second start never re-attributes
	_, err = router.Dispatch(context.Background(), a)
	require.NoError(t, err)

	referrer, err = repo.GetUserByTelegramID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, referrer.ReferralCount)

	// freshly referred users earn floor(10 * 1.05)
	reply, err := router.Dispatch(context.Background(), action(ActionClick, 42))
	require.NoError(t, err)
	assert.Equal(t, "⛏️ Click registered! (1/500) +10 CRM.", reply.Text)
}

type failingRepo struct {
	*repository.Memory
}

func (failingRepo) GetUserByTelegramID(context.Context, int64) (*model.User, error) {
	return nil, errors.New("connection reset")
}

func TestRouter_DispatchStoreError(t *testing.T) {
	router := newTestRouter(t, failingRepo{repository.NewMemory()})

	reply, err := router.Dispatch(context.Background(), action(ActionBalance, 42))
	assert.Error(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, msgInternalError, reply.Text)
}
