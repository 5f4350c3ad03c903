package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crownium_bot/internal/model"
	"crownium_bot/internal/repository"
)

type StartResult struct {
	User     *model.User
	Created  bool
	Referred bool
}

type ClickResult struct {
	Reward      int64
	DailyClicks int
}

type Balance struct {
	ClickCrownium int64
	TaskCrownium  int64
	Total         int64
	Secondary     string
}

type UserService struct {
	repo UserRepository
	now  func() time.Time
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the user on first contact and refreshes identity fields
// afterwards. Referral attribution only happens when the record is created.
func (s *UserService) Start(ctx context.Context, identity model.Identity, payload string) (*StartResult, error) {
	existing, err := s.repo.GetUserByTelegramID(ctx, identity.TelegramID)
	switch {
	case err == nil:
		return s.refreshIdentity(ctx, existing, identity)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to get user by telegram ID: %w", err)
	}

	now := s.now()
	user := NewUser(identity, now)

	referred := false
	if referrerID, ok := ParseReferralPayload(payload, identity.TelegramID); ok {
		_, err := s.repo.GetUserByTelegramID(ctx, referrerID)
		switch {
		case err == nil:
			AttributeReferral(user, referrerID, now)
			referred = true
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("failed to get referrer: %w", err)
		}
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if !created {
		// a concurrent start registered the user first
		existing, err := s.repo.GetUserByTelegramID(ctx, identity.TelegramID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user by telegram ID: %w", err)
		}
		return s.refreshIdentity(ctx, existing, identity)
	}

	return &StartResult{
		User:     user,
		Created:  true,
		Referred: referred,
	}, nil
}

func (s *UserService) refreshIdentity(ctx context.Context, user *model.User, identity model.Identity) (*StartResult, error) {
	err := s.repo.UpdateUserIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to update user identity: %w", err)
	}

	user.Username = optional(identity.Username)
	user.FirstName = optional(identity.FirstName)

	return &StartResult{User: user}, nil
}

func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by telegram ID: %w", err)
	}
	return user, nil
}

func (s *UserService) Click(ctx context.Context, telegramID int64) (*ClickResult, error) {
	user, err := s.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	_, reward, err := ApplyClick(user, now)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.RecordClick(ctx, telegramID, reward, now, DailyClickLimit)
	if err != nil {
		if errors.Is(err, repository.ErrLimitReached) {
			return nil, ErrDailyClickLimit
		}
		return nil, fmt.Errorf("failed to record click: %w", err)
	}

	return &ClickResult{
		Reward:      reward,
		DailyClicks: count,
	}, nil
}

func (s *UserService) Balance(ctx context.Context, telegramID int64) (*Balance, error) {
	user, err := s.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	total := user.TotalCrownium()
	return &Balance{
		ClickCrownium: user.TotalClickCrownium,
		TaskCrownium:  user.TotalTaskCrownium,
		Total:         total,
		Secondary:     SecondaryDisplay(total),
	}, nil
}

func (s *UserService) Withdraw(ctx context.Context, telegramID int64) error {
	user, err := s.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}

	if _, err := ApplyWithdraw(user); err != nil {
		return err
	}

	err = s.repo.MarkPayoutEligible(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to mark payout eligibility: %w", err)
	}
	return nil
}

func (s *UserService) Leaderboard(ctx context.Context) ([]*model.Referrer, error) {
	top, err := s.repo.GetTopReferrers(ctx, LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get top referrers: %w", err)
	}
	return top, nil
}

// CreditTask books a completed third-party task. The amount is applied as
// given, zero and negative values included.
func (s *UserService) CreditTask(ctx context.Context, telegramID int64, amount int64) error {
	err := s.repo.CreditTask(ctx, telegramID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to credit task: %w", err)
	}
	return nil
}

func (s *UserService) ResetDailyClicks(ctx context.Context) (int64, error) {
	n, err := s.repo.ResetDailyClicks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reset daily clicks: %w", err)
	}
	return n, nil
}
