// Package status implements the client-side polling loop that the console
// uses to observe a resolution job. Observation is cancellable; the job
// itself is not: stopping a poller has no effect on the server-side worker,
// and reopening the same job id later reports accurate current state.
package status

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"shop-seo-console/internal/domain/model"
)

const defaultInterval = 3 * time.Second

// Fetcher retrieves one job record snapshot.
type Fetcher interface {
	FetchJob(ctx context.Context, id string) (*model.ResolutionJob, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, id string) (*model.ResolutionJob, error)

func (f FetcherFunc) FetchJob(ctx context.Context, id string) (*model.ResolutionJob, error) {
	return f(ctx, id)
}

// Callbacks drive the observer. OnUpdate fires on every successful fetch,
// including the final one; OnDone fires once after the terminal OnUpdate;
// OnError fires once on a fetch failure, after which polling stops (a fetch
// error is poller-local and says nothing about the job itself).
type Callbacks struct {
	OnUpdate func(job *model.ResolutionJob)
	OnDone   func(job *model.ResolutionJob)
	OnError  func(err error)
}

// Poller runs at most one polling loop per job id. Starting a second loop
// for the same id replaces the first instead of duplicating its timer.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	log      *zerolog.Logger

	mu    sync.Mutex
	loops map[string]*loop
}

type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(fetcher Fetcher, interval time.Duration, logger *zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	pollLog := logger.With().Str("component", "Poller").Logger()
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		log:      &pollLog,
		loops:    make(map[string]*loop),
	}
}

// Start begins polling jobID immediately and then on every interval tick.
// The loop stops itself on a terminal status, on a fetch error, or when ctx
// or Stop cancels it.
func (p *Poller) Start(ctx context.Context, jobID string, cb Callbacks) {
	loopCtx, cancel := context.WithCancel(ctx)
	l := &loop{cancel: cancel, done: make(chan struct{})}

	p.mu.Lock()
	if prev, ok := p.loops[jobID]; ok {
		prev.cancel()
	}
	p.loops[jobID] = l
	p.mu.Unlock()

	go p.run(loopCtx, jobID, l, cb)
}

// Stop cancels the local polling loop for jobID, if any, and waits for it to
// wind down. The server-side worker keeps running to completion.
func (p *Poller) Stop(jobID string) {
	p.mu.Lock()
	l, ok := p.loops[jobID]
	if ok {
		delete(p.loops, jobID)
	}
	p.mu.Unlock()
	if ok {
		l.cancel()
		<-l.done
	}
}

// StopAll cancels every active loop.
func (p *Poller) StopAll() {
	p.mu.Lock()
	loops := p.loops
	p.loops = make(map[string]*loop)
	p.mu.Unlock()
	for _, l := range loops {
		l.cancel()
		<-l.done
	}
}

func (p *Poller) run(ctx context.Context, jobID string, self *loop, cb Callbacks) {
	defer close(self.done)
	defer p.forget(jobID, self)

	// Immediate first fetch; a job that is already terminal never schedules
	// a tick.
	if done := p.tick(ctx, jobID, cb); done {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := p.tick(ctx, jobID, cb); done {
				return
			}
		}
	}
}

// tick fetches once and reports whether the loop should stop.
func (p *Poller) tick(ctx context.Context, jobID string, cb Callbacks) bool {
	job, err := p.fetcher.FetchJob(ctx, jobID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		p.log.Warn().Err(err).Str("job_id", jobID).Msg("status fetch failed")
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return true
	}

	if cb.OnUpdate != nil {
		cb.OnUpdate(job)
	}
	if job.Status.Terminal() {
		if cb.OnDone != nil {
			cb.OnDone(job)
		}
		return true
	}
	return false
}

// forget removes the registry entry unless a replacement already took it.
func (p *Poller) forget(jobID string, self *loop) {
	p.mu.Lock()
	if cur, ok := p.loops[jobID]; ok && cur == self {
		delete(p.loops, jobID)
	}
	p.mu.Unlock()
}
