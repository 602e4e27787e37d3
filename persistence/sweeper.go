package persistence

import (
	"context"
	"time"
)

// DefaultRetentionHorizon is the default age (90 days) past which
// reports are eligible for deletion.
const DefaultRetentionHorizon = 90 * 24 * time.Hour

// DefaultSweepInterval is the default cadence (daily) the sweeper runs at.
const DefaultSweepInterval = 24 * time.Hour

// Sweeper periodically deletes reports older than a retention horizon.
type Sweeper struct {
	store    *Store
	horizon  time.Duration
	interval time.Duration
}

// NewSweeper builds a sweeper against store, defaulting horizon/interval
// to the documented defaults when zero.
func NewSweeper(store *Store, horizon, interval time.Duration) *Sweeper {
	if horizon <= 0 {
		horizon = DefaultRetentionHorizon
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{store: store, horizon: horizon, interval: interval}
}

// Run blocks, sweeping on a ticker until ctx is cancelled. Intended to be
// launched on its own goroutine by the caller.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	cutoff := time.Now().Add(-s.horizon)
	n, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.WithError(err).Warn("retention sweep failed")
		return
	}
	if n > 0 {
		log.WithField("deleted", n).Info("retention sweep removed expired reports")
	}
}
