// Package scheduler runs the periodic background jobs of the progression service.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// RankingWarmer rebuilds cached leaderboards.
type RankingWarmer interface {
	WarmGlobalRanking(ctx context.Context) error
}

// Scheduler wraps a gocron scheduler.
type Scheduler struct {
	sched  gocron.Scheduler
	logger zerolog.Logger
}

// New registers the ranking refresh job. The job fires once on Start and then every interval.
func New(warmer RankingWarmer, interval time.Duration, logger zerolog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		interval = time.Minute
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{
		sched:  sched,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()

			if err := warmer.WarmGlobalRanking(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("ranking refresh failed")
				return
			}
			s.logger.Debug().Msg("ranking refreshed")
		}),
		gocron.WithName("ranking-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to register ranking refresh job: %w", err)
	}

	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Shutdown stops the scheduler and waits for running jobs.
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
