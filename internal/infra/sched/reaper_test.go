package sched

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"shop-seo-console/internal/domain"
	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/domain/ports/repository"
)

var testLogger = zerolog.Nop()

// passTxManager invokes the callback without a real transaction.
type passTxManager struct{}

func (passTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

type memJobRepo struct {
	mu    sync.Mutex
	jobs  map[string]*model.ResolutionJob
	calls int
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]*model.ResolutionJob)}
}

func (m *memJobRepo) Create(_ context.Context, _ repository.Tx, job *model.ResolutionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobRepo) Update(_ context.Context, _ repository.Tx, job *model.ResolutionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.ResolutionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) FailStale(_ context.Context, _ repository.Tx, cutoff time.Time, message string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	n := 0
	for _, j := range m.jobs {
		if j.Status == model.JobStatusRunning && j.UpdatedAt.Before(cutoff) {
			j.Status = model.JobStatusFailed
			j.ErrorMessage = message
			n++
		}
	}
	return n, nil
}

func TestReaper_FailsOnlyStaleRunningJobs(t *testing.T) {
	t.Parallel()

	repo := newMemJobRepo()
	old := time.Now().Add(-time.Hour)
	repo.jobs["stale"] = &model.ResolutionJob{ID: "stale", Status: model.JobStatusRunning, UpdatedAt: old}
	repo.jobs["fresh"] = &model.ResolutionJob{ID: "fresh", Status: model.JobStatusRunning, UpdatedAt: time.Now()}
	repo.jobs["done"] = &model.ResolutionJob{ID: "done", Status: model.JobStatusCompleted, UpdatedAt: old}

	w := NewReaper(time.Minute, 15*time.Minute, passTxManager{}, repo, &testLogger)
	w.sweep(context.Background())

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if got := repo.jobs["stale"].Status; got != model.JobStatusFailed {
		t.Fatalf("stale running job should be failed, got %s", got)
	}
	if repo.jobs["stale"].ErrorMessage == "" {
		t.Fatal("reaped job must carry an error message")
	}
	if got := repo.jobs["fresh"].Status; got != model.JobStatusRunning {
		t.Fatalf("fresh job must be untouched, got %s", got)
	}
	if got := repo.jobs["done"].Status; got != model.JobStatusCompleted {
		t.Fatalf("terminal job must be untouched, got %s", got)
	}
}

func TestReaper_RunSweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	repo := newMemJobRepo()
	ctx, cancel := context.WithCancel(context.Background())
	w := NewReaper(time.Hour, 15*time.Minute, passTxManager{}, repo, &testLogger)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(time.Second)
	for {
		repo.mu.Lock()
		calls := repo.calls
		repo.mu.Unlock()
		if calls >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("startup sweep never happened")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
