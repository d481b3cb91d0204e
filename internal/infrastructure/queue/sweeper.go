package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sirpyerre/file-manager/internal/api/metrics"
)

const defaultSweepInterval = 5 * time.Minute

// StaleSweeper is implemented by service.Reconciler.
type StaleSweeper interface {
	SweepStale(ctx context.Context) (int, error)
}

// Sweeper runs a StaleSweeper on a fixed interval.
type Sweeper struct {
	target   StaleSweeper
	interval time.Duration
	log      zerolog.Logger
}

func NewSweeper(target StaleSweeper, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{target: target, interval: interval, log: log}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.target.SweepStale(ctx)
	if removed > 0 {
		metrics.ReconcileRemovedTotal.WithLabelValues("stale_entry").Add(float64(removed))
		s.log.Info().Int("removed", removed).Msg("stale file entries reconciled")
	}
	if err != nil && ctx.Err() == nil {
		s.log.Error().Err(err).Msg("reconciliation sweep failed")
	}
}
