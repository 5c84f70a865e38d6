package sched

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"shop-seo-console/internal/domain/ports/repository"
)

const staleMessage = "job stalled: no progress recorded, worker presumed gone"

// Reaper periodically fails running jobs that stopped making progress,
// typically after a redeploy killed their worker. Jobs are never resumed;
// failing them lets pollers converge on a terminal state.
type Reaper struct {
	interval   time.Duration
	staleAfter time.Duration
	tm         repository.TransactionManager
	jobs       repository.ResolutionJobRepository
	log        *zerolog.Logger
}

func NewReaper(interval, staleAfter time.Duration, tm repository.TransactionManager, jobs repository.ResolutionJobRepository, logger *zerolog.Logger) *Reaper {
	reapLog := logger.With().Str("component", "Reaper").Logger()
	return &Reaper{
		interval:   interval,
		staleAfter: staleAfter,
		tm:         tm,
		jobs:       jobs,
		log:        &reapLog,
	}
}

func (w *Reaper) Run(ctx context.Context) error {
	w.log.Info().Dur("stale_after", w.staleAfter).Msg("Starting stale-job reaper")
	// Sweep once on startup, then on every tick
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stale-job reaper")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Reaper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	var n int
	err := w.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		n, err = w.jobs.FailStale(ctx, tx, cutoff, staleMessage)
		return err
	})
	if err != nil {
		w.log.Error().Err(err).Msg("stale sweep failed")
		return
	}
	if n > 0 {
		w.log.Warn().Int("count", n).Msg("stale running jobs marked failed")
	}
}
