package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ReconcileScheduler periodically re-attempts stage progression so that a
// transition blocked by a failed write, or made possible by a direct database
// fix, is eventually applied.
type ReconcileScheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

func NewReconcileScheduler(tournament TournamentService, interval time.Duration, timeout time.Duration, logger *slog.Logger) (*ReconcileScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	logger = logger.With(slog.String("job", "reconcile"))

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			applied, err := tournament.Reconcile(ctx)
			if err != nil {
				logger.Error("reconcile run failed", slog.Any("error", err))
				return
			}
			if len(applied) > 0 {
				logger.Info("reconcile applied transitions", slog.Int("count", len(applied)))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to register reconcile job: %w", err)
	}
	return &ReconcileScheduler{scheduler: s, logger: logger}, nil
}

func (r *ReconcileScheduler) Start() {
	r.scheduler.Start()
	r.logger.Info("reconcile scheduler started")
}

func (r *ReconcileScheduler) Shutdown() error {
	return r.scheduler.Shutdown()
}
