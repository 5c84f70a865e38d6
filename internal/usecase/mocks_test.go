package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shop-seo-console/internal/domain"
	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/domain/ports/adapter"
	"shop-seo-console/internal/domain/ports/repository"
)

// memJobRepo is a small in-memory job store used by unit tests. It enforces
// the same active-owner uniqueness the real store enforces with its partial
// unique index, and checks the counter invariant on every write.
type memJobRepo struct {
	mu        sync.Mutex
	store     map[string]*model.ResolutionJob
	updateErr error // simulate a persistence failure

	// updateErrAfter fails the Nth update (1-based) when > 0.
	updateErrAfter int
	updates        int

	violations []string
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{store: make(map[string]*model.ResolutionJob)}
}

func (m *memJobRepo) Create(ctx context.Context, _ repository.Tx, job *model.ResolutionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.store {
		if j.Owner == job.Owner && !j.Status.Terminal() {
			return domain.ErrAlreadyInProgress
		}
	}
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%d", len(m.store)+1)
	}
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	cp := *job
	m.store[job.ID] = &cp
	return nil
}

func (m *memJobRepo) Update(ctx context.Context, _ repository.Tx, job *model.ResolutionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.updateErrAfter > 0 && m.updates >= m.updateErrAfter {
		return fmt.Errorf("simulated write failure on update %d", m.updates)
	}
	prev, ok := m.store[job.ID]
	if !ok {
		return domain.ErrNotFound
	}
	// Terminal records refuse further writes, matching the store's guarded
	// UPDATE.
	if prev.Status.Terminal() {
		return domain.ErrNotFound
	}
	if !job.CountersConsistent() {
		m.violations = append(m.violations, fmt.Sprintf(
			"inconsistent counters on update %d: processed=%d success=%d failed=%d skipped=%d total=%d",
			m.updates, job.ProcessedItems, job.SuccessCount, job.FailedCount, job.SkippedCount, job.TotalItems))
	}
	if job.ProcessedItems < prev.ProcessedItems {
		m.violations = append(m.violations, fmt.Sprintf(
			"processed went backwards: %d -> %d", prev.ProcessedItems, job.ProcessedItems))
	}
	job.UpdatedAt = time.Now()
	cp := *job
	m.store[job.ID] = &cp
	return nil
}

func (m *memJobRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.ResolutionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) FailStale(ctx context.Context, _ repository.Tx, cutoff time.Time, message string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, j := range m.store {
		if j.Status == model.JobStatusRunning && j.UpdatedAt.Before(cutoff) {
			j.Status = model.JobStatusFailed
			j.ErrorMessage = message
			j.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

// reapingRepo finalizes the stored job out from under the worker right
// before the Nth update (1-based), the way the stale sweep can between two
// worker writes.
type reapingRepo struct {
	*memJobRepo
	reapBefore int
	reapMsg    string
	calls      int
}

func (r *reapingRepo) Update(ctx context.Context, tx repository.Tx, job *model.ResolutionJob) error {
	r.calls++
	if r.calls == r.reapBefore {
		r.memJobRepo.mu.Lock()
		if stored, ok := r.memJobRepo.store[job.ID]; ok {
			stored.Status = model.JobStatusFailed
			stored.ErrorMessage = r.reapMsg
			stored.CurrentItem = ""
			stored.UpdatedAt = time.Now()
		}
		r.memJobRepo.mu.Unlock()
	}
	return r.memJobRepo.Update(ctx, tx, job)
}

// syncRunner executes tasks inline so tests observe final job state as soon
// as Submit returns.
type syncRunner struct{}

func (syncRunner) Go(_ string, task func(ctx context.Context)) {
	task(context.Background())
}

// asyncRunner runs tasks in goroutines and lets tests wait for them.
type asyncRunner struct{ wg sync.WaitGroup }

func (r *asyncRunner) Go(_ string, task func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		task(context.Background())
	}()
}

func (r *asyncRunner) wait() { r.wg.Wait() }

// stubResolver returns scripted outcomes per item ID.
type stubResolver struct {
	category model.IssueCategory
	outcomes map[string]adapter.Outcome // item ID -> outcome
	fallback adapter.Outcome
	throttle time.Duration

	mu       sync.Mutex
	resolved []string
}

func newStubResolver(cat model.IssueCategory) *stubResolver {
	return &stubResolver{
		category: cat,
		outcomes: make(map[string]adapter.Outcome),
		fallback: adapter.Success(),
	}
}

func (s *stubResolver) Category() model.IssueCategory { return s.category }
func (s *stubResolver) Throttle() time.Duration       { return s.throttle }

func (s *stubResolver) Resolve(_ context.Context, item model.AffectedItem) adapter.Outcome {
	s.mu.Lock()
	s.resolved = append(s.resolved, item.ID)
	s.mu.Unlock()
	if out, ok := s.outcomes[item.ID]; ok {
		return out
	}
	return s.fallback
}

// panicResolver blows up on a chosen item.
type panicResolver struct {
	category model.IssueCategory
	panicOn  string
}

func (p *panicResolver) Category() model.IssueCategory { return p.category }
func (p *panicResolver) Throttle() time.Duration       { return 0 }

func (p *panicResolver) Resolve(_ context.Context, item model.AffectedItem) adapter.Outcome {
	if item.ID == p.panicOn {
		panic("resolver exploded on " + item.ID)
	}
	return adapter.Success()
}
