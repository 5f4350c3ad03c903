package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crownium_bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type User struct {
	TelegramID          int64      `db:"telegram_id"`
	Username            *string    `db:"username"`
	FirstName           *string    `db:"first_name"`
	LastName            *string    `db:"last_name"`
	JoinedAt            time.Time  `db:"joined_at"`
	DailyClickCount     int        `db:"daily_click_count"`
	TotalClickCrownium  int64      `db:"total_click_crownium"`
	TotalTaskCrownium   int64      `db:"total_task_crownium"`
	TasksCompletedCount int        `db:"tasks_completed_count"`
	ReferrerID          *int64     `db:"referrer_id"`
	ReferredAt          *time.Time `db:"referred_at"`
	ReferralCount       int        `db:"referral_count"`
	ClickStreakDays     int        `db:"click_streak_days"`
	IsEligibleForPayout bool       `db:"is_eligible_for_payout"`
	LastClickAt         *time.Time `db:"last_click_at"`
	Locale              string     `db:"locale"`
	Timezone            *string    `db:"timezone"`
}

type referrer struct {
	TelegramID    int64   `db:"telegram_id"`
	Username      *string `db:"username"`
	FirstName     *string `db:"first_name"`
	ReferralCount int     `db:"referral_count"`
}

var userColumns = []string{
	"telegram_id",
	"username",
	"first_name",
	"last_name",
	"joined_at",
	"daily_click_count",
	"total_click_crownium",
	"total_task_crownium",
	"tasks_completed_count",
	"referrer_id",
	"referred_at",
	"referral_count",
	"click_streak_days",
	"is_eligible_for_payout",
	"last_click_at",
	"locale",
	"timezone",
}

func (u *User) toModel() *model.User {
	return &model.User{
		TelegramID:          u.TelegramID,
		Username:            u.Username,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		JoinedAt:            u.JoinedAt,
		DailyClickCount:     u.DailyClickCount,
		TotalClickCrownium:  u.TotalClickCrownium,
		TotalTaskCrownium:   u.TotalTaskCrownium,
		TasksCompletedCount: u.TasksCompletedCount,
		ReferrerID:          u.ReferrerID,
		ReferredAt:          u.ReferredAt,
		ReferralCount:       u.ReferralCount,
		ClickStreakDays:     u.ClickStreakDays,
		IsEligibleForPayout: u.IsEligibleForPayout,
		LastClickAt:         u.LastClickAt,
		Locale:              u.Locale,
		Timezone:            u.Timezone,
	}
}

// CreateUser inserts a new record and, when the record carries a referrer,
// bumps the referrer's referral_count in the same transaction. It reports
// false without touching the referrer if the user already existed.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) (bool, error) {
	created := false

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("users").
			SetMap(map[string]interface{}{
				"telegram_id":            user.TelegramID,
				"username":               user.Username,
				"first_name":             user.FirstName,
				"last_name":              user.LastName,
				"joined_at":              user.JoinedAt,
				"daily_click_count":      user.DailyClickCount,
				"total_click_crownium":   user.TotalClickCrownium,
				"total_task_crownium":    user.TotalTaskCrownium,
				"tasks_completed_count":  user.TasksCompletedCount,
				"referrer_id":            user.ReferrerID,
				"referred_at":            user.ReferredAt,
				"referral_count":         user.ReferralCount,
				"click_streak_days":      user.ClickStreakDays,
				"is_eligible_for_payout": user.IsEligibleForPayout,
				"locale":                 user.Locale,
				"timezone":               user.Timezone,
			}).
			Suffix("ON CONFLICT (telegram_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build user insert query: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		created = true

		if user.ReferrerID != nil {
			updateQuery, updateArgs, err := squirrel.
				Update("users").
				Set("referral_count", squirrel.Expr("referral_count + 1")).
				Where(squirrel.Eq{"telegram_id": *user.ReferrerID}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build referrer update query: %w", err)
			}

			_, err = tx.ExecContext(ctx, updateQuery, updateArgs...)
			if err != nil {
				return fmt.Errorf("failed to update referrer: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) UpdateUserIdentity(ctx context.Context, identity model.Identity) error {
	query, args, err := squirrel.
		Update("users").
		SetMap(map[string]interface{}{
			"username":   nullable(identity.Username),
			"first_name": nullable(identity.FirstName),
		}).
		Where(squirrel.Eq{"telegram_id": identity.TelegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return r.execOne(ctx, query, args)
}

// RecordClick credits a click reward and returns the new daily click count.
// The increment only applies while daily_click_count is below limit.
func (r *Repository) RecordClick(ctx context.Context, telegramID int64, reward int64, at time.Time, limit int) (int, error) {
	query, args, err := squirrel.
		Update("users").
		Set("total_click_crownium", squirrel.Expr("total_click_crownium + ?", reward)).
		Set("daily_click_count", squirrel.Expr("daily_click_count + 1")).
		Set("last_click_at", at).
		Where(squirrel.Eq{"telegram_id": telegramID}).
		Where(squirrel.Lt{"daily_click_count": limit}).
		Suffix("RETURNING daily_click_count").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.QueryRowxContext(ctx, query, args...).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrLimitReached
		}
		return 0, err
	}

	return count, nil
}

func (r *Repository) MarkPayoutEligible(ctx context.Context, telegramID int64) error {
	query, args, err := squirrel.
		Update("users").
		Set("is_eligible_for_payout", true).
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return r.execOne(ctx, query, args)
}

// CreditTask adds task crownium and counts one completed task in a single
// statement.
func (r *Repository) CreditTask(ctx context.Context, telegramID int64, amount int64) error {
	query, args, err := squirrel.
		Update("users").
		Set("total_task_crownium", squirrel.Expr("total_task_crownium + ?", amount)).
		Set("tasks_completed_count", squirrel.Expr("tasks_completed_count + 1")).
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return r.execOne(ctx, query, args)
}

func (r *Repository) ResetDailyClicks(ctx context.Context) (int64, error) {
	query, args, err := squirrel.
		Update("users").
		Set("daily_click_count", 0).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to reset daily clicks: %w", err)
	}

	return result.RowsAffected()
}

func (r *Repository) GetTopReferrers(ctx context.Context, limit int) ([]*model.Referrer, error) {
	query, args, err := squirrel.
		Select("telegram_id", "username", "first_name", "referral_count").
		From("users").
		OrderBy("referral_count DESC", "telegram_id ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []referrer
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top referrers: %w", err)
	}

	out := make([]*model.Referrer, len(rows))
	for i, row := range rows {
		out[i] = &model.Referrer{
			TelegramID:    row.TelegramID,
			Username:      row.Username,
			FirstName:     row.FirstName,
			ReferralCount: row.ReferralCount,
		}
	}

	return out, nil
}

func (r *Repository) execOne(ctx context.Context, query string, args []interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
