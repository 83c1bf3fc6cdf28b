package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/internal/config"
)

// Scheduler fires a task on a fixed interval, or once a day at a wall-clock
// time when schedule.at is set. Task failures are logged and the loop keeps
// going; only context cancellation stops it.
type Scheduler struct {
	cfg    config.ScheduleConfig
	logger *logrus.Logger
}

func New(cfg config.ScheduleConfig, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		logger: logger,
	}
}

// Run blocks until ctx is cancelled. The first task run happens after the
// first wait, not immediately; `paperfuse run` covers the immediate case.
func (s *Scheduler) Run(ctx context.Context, task func(context.Context) error) error {
	for {
		wait, err := s.nextWait(time.Now())
		if err != nil {
			return err
		}

		s.logger.WithField("next_run_in", wait.Round(time.Second)).Info("Waiting for next scheduled pass")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		if err := task(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled pass failed")
		}
	}
}

// nextWait computes the duration until the next firing. With schedule.at set
// the next firing is today's HH:MM if still ahead, otherwise tomorrow's.
func (s *Scheduler) nextWait(now time.Time) (time.Duration, error) {
	if s.cfg.At != "" {
		at, err := time.Parse("15:04", s.cfg.At)
		if err != nil {
			return 0, fmt.Errorf("parse schedule.at %q: %w", s.cfg.At, err)
		}

		next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		return next.Sub(now), nil
	}

	interval := s.cfg.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return interval, nil
}
