package mocks

import (
	"context"
	"time"

	"crownium_bot/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdateUserIdentity(ctx context.Context, identity model.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockUserRepository) RecordClick(ctx context.Context, telegramID int64, reward int64, at time.Time, limit int) (int, error) {
	args := m.Called(ctx, telegramID, reward, at, limit)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) MarkPayoutEligible(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

func (m *MockUserRepository) CreditTask(ctx context.Context, telegramID int64, amount int64) error {
	args := m.Called(ctx, telegramID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) ResetDailyClicks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetTopReferrers(ctx context.Context, limit int) ([]*model.Referrer, error) {
	args := m.Called(ctx, limit)
	if top := args.Get(0); top != nil {
		return top.([]*model.Referrer), args.Error(1)
	}
	return nil, args.Error(1)
}
