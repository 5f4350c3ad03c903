package scheduler

import (
	"context"
	"fmt"
	"time"

	"crownium_bot/internal/metrics"
	"crownium_bot/internal/service"
	"crownium_bot/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultDailyReset = "0 22 * * *"

type Config struct {
	DailyReset string `json:"dailyReset"`
	Timezone   string `json:"timezone"`
}

// ResetJob zeroes every user's daily click counter on a cron schedule.
type ResetJob struct {
	resets  service.ResetServiceI
	metrics *metrics.Metrics
	cron    *cron.Cron
	timeout time.Duration
}

func NewResetJob(cfg Config, resets service.ResetServiceI, m *metrics.Metrics) (*ResetJob, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	schedule := cfg.DailyReset
	if schedule == "" {
		schedule = DefaultDailyReset
	}

	j := &ResetJob{
		resets:  resets,
		metrics: m,
		cron:    cron.New(cron.WithLocation(loc)),
		timeout: time.Minute,
	}

	if _, err := j.cron.AddFunc(schedule, func() { j.Run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid daily reset schedule %q: %w", schedule, err)
	}

	return j, nil
}

func (j *ResetJob) Start() {
	j.cron.Start()
	logger.Named("scheduler").Info("daily click reset scheduled",
		zap.Time("next_run", j.NextRun()))
}

// Stop halts the scheduler and waits for a running reset until ctx is done.
func (j *ResetJob) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (j *ResetJob) NextRun() time.Time {
	entries := j.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Run performs one reset. Running it twice in a window only rewrites zeros.
func (j *ResetJob) Run(ctx context.Context) {
	log := logger.Named("scheduler")

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	n, err := j.resets.ResetDailyClicks(ctx)
	if err != nil {
		log.Error("failed to reset daily clicks", zap.Error(err))
		j.metrics.RecordReset("error")
		return
	}

	j.metrics.RecordReset("ok")
	log.Info("daily clicks reset", zap.Int64("users", n))
}
