package repository

import (
	"context"
	"fmt"

	"crownium_bot/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		telegram_id            BIGINT PRIMARY KEY,
		username               TEXT,
		first_name             TEXT,
		last_name              TEXT,
		joined_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
		daily_click_count      INTEGER NOT NULL DEFAULT 0,
		total_click_crownium   BIGINT NOT NULL DEFAULT 0,
		total_task_crownium    BIGINT NOT NULL DEFAULT 0,
		tasks_completed_count  INTEGER NOT NULL DEFAULT 0,
		referrer_id            BIGINT,
		referred_at            TIMESTAMPTZ,
		referral_count         INTEGER NOT NULL DEFAULT 0,
		click_streak_days      INTEGER NOT NULL DEFAULT 0,
		is_eligible_for_payout BOOLEAN NOT NULL DEFAULT false,
		last_click_at          TIMESTAMPTZ,
		locale                 TEXT NOT NULL DEFAULT 'en',
		timezone               TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_referral_count ON users (referral_count DESC, telegram_id)`,
}

// Migrate creates the users table when it does not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	logger.Logger().Info("database schema is up to date")
	return nil
}
