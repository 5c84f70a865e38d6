package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Runner tracks long-running job goroutines so the process can drain them on
// shutdown. Every submitted task runs; there is no queue and no drop path,
// because an accepted job must execute exactly once.
type Runner struct {
	ctx context.Context
	wg  sync.WaitGroup
	log *zerolog.Logger
}

// NewRunner binds tasks to ctx. The context is only consulted by the tasks
// themselves; cancellation does not kill a task that chooses to run on.
func NewRunner(ctx context.Context, logger *zerolog.Logger) *Runner {
	runLog := logger.With().Str("component", "Runner").Logger()
	return &Runner{ctx: ctx, log: &runLog}
}

func (r *Runner) Go(name string, task func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error().Str("task", name).Interface("panic", rec).Msg("task panicked")
			}
		}()
		task(r.ctx)
	}()
}

// Wait blocks until every submitted task has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}
