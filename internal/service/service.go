package service

import (
	"context"
	"errors"
	"time"

	"crownium_bot/internal/model"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDailyClickLimit = errors.New("daily click limit reached")
	ErrNotEligible     = errors.New("not eligible for withdrawal")
)

type UserServiceI interface {
	Start(ctx context.Context, identity model.Identity, payload string) (*StartResult, error)
	Click(ctx context.Context, telegramID int64) (*ClickResult, error)
	Balance(ctx context.Context, telegramID int64) (*Balance, error)
	Withdraw(ctx context.Context, telegramID int64) error
	Leaderboard(ctx context.Context) ([]*model.Referrer, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

type CreditServiceI interface {
	CreditTask(ctx context.Context, telegramID int64, amount int64) error
}

type ResetServiceI interface {
	ResetDailyClicks(ctx context.Context) (int64, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (bool, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	UpdateUserIdentity(ctx context.Context, identity model.Identity) error
	RecordClick(ctx context.Context, telegramID int64, reward int64, at time.Time, limit int) (int, error)
	MarkPayoutEligible(ctx context.Context, telegramID int64) error
	CreditTask(ctx context.Context, telegramID int64, amount int64) error
	ResetDailyClicks(ctx context.Context) (int64, error)
	GetTopReferrers(ctx context.Context, limit int) ([]*model.Referrer, error)
}
