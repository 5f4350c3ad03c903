package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"crownium_bot/internal/model"
)

// Memory is a process-local store with the same semantics as Repository.
// Every method works on copies so callers never share state with the map.
type Memory struct {
	users map[int64]*model.User
	sync.Mutex
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[int64]*model.User),
	}
}

func (m *Memory) CreateUser(_ context.Context, user *model.User) (bool, error) {
	m.Lock()
	defer m.Unlock()

	if _, exists := m.users[user.TelegramID]; exists {
		return false, nil
	}

	m.users[user.TelegramID] = copyUser(user)
	if user.ReferrerID != nil {
		if ref, ok := m.users[*user.ReferrerID]; ok {
			ref.ReferralCount++
		}
	}

	return true, nil
}

func (m *Memory) GetUserByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	m.Lock()
	defer m.Unlock()

	u, ok := m.users[telegramID]
	if !ok {
		return nil, ErrNotFound
	}

	return copyUser(u), nil
}

func (m *Memory) UpdateUserIdentity(_ context.Context, identity model.Identity) error {
	m.Lock()
	defer m.Unlock()

	u, ok := m.users[identity.TelegramID]
	if !ok {
		return ErrNotFound
	}
	u.Username = nullable(identity.Username)
	u.FirstName = nullable(identity.FirstName)

	return nil
}

func (m *Memory) RecordClick(_ context.Context, telegramID int64, reward int64, at time.Time, limit int) (int, error) {
	m.Lock()
	defer m.Unlock()

	u, ok := m.users[telegramID]
	if !ok || u.DailyClickCount >= limit {
		return 0, ErrLimitReached
	}
	u.TotalClickCrownium += reward
	u.DailyClickCount++
	u.LastClickAt = &at

	return u.DailyClickCount, nil
}

func (m *Memory) MarkPayoutEligible(_ context.Context, telegramID int64) error {
	m.Lock()
	defer m.Unlock()

	u, ok := m.users[telegramID]
	if !ok {
		return ErrNotFound
	}
	u.IsEligibleForPayout = true

	return nil
}

func (m *Memory) CreditTask(_ context.Context, telegramID int64, amount int64) error {
	m.Lock()
	defer m.Unlock()

	u, ok := m.users[telegramID]
	if !ok {
		return ErrNotFound
	}
	u.TotalTaskCrownium += amount
	u.TasksCompletedCount++

	return nil
}

func (m *Memory) ResetDailyClicks(_ context.Context) (int64, error) {
	m.Lock()
	defer m.Unlock()

	for _, u := range m.users {
		u.DailyClickCount = 0
	}

	return int64(len(m.users)), nil
}

func (m *Memory) GetTopReferrers(_ context.Context, limit int) ([]*model.Referrer, error) {
	m.Lock()
	defer m.Unlock()

	all := make([]*model.Referrer, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, &model.Referrer{
			TelegramID:    u.TelegramID,
			Username:      u.Username,
			FirstName:     u.FirstName,
			ReferralCount: u.ReferralCount,
		})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].ReferralCount != all[j].ReferralCount {
			return all[i].ReferralCount > all[j].ReferralCount
		}
		return all[i].TelegramID < all[j].TelegramID
	})

	if len(all) > limit {
		all = all[:limit]
	}

	return all, nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

// Put stores a record as-is, overwriting any existing one.
func (m *Memory) Put(user *model.User) {
	m.Lock()
	defer m.Unlock()

	m.users[user.TelegramID] = copyUser(user)
}

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}
