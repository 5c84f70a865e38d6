package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"shop-seo-console/internal/domain"
	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/domain/ports/repository"
)

// fakeRedis is an in-memory RedisClient that records the TTL of every Set.
type fakeRedis struct {
	mu   sync.Mutex
	vals map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{vals: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Ping(context.Context) error { return nil }
func (f *fakeRedis) Close() error               { return nil }

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vals[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vals[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.vals, k)
		delete(f.ttls, k)
	}
	return nil
}

// countingRepo counts how often the inner store is read.
type countingRepo struct {
	mu    sync.Mutex
	jobs  map[string]*model.ResolutionJob
	finds int
}

func newCountingRepo() *countingRepo {
	return &countingRepo{jobs: make(map[string]*model.ResolutionJob)}
}

func (r *countingRepo) Create(_ context.Context, _ repository.Tx, job *model.ResolutionJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *countingRepo) Update(_ context.Context, _ repository.Tx, job *model.ResolutionJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *countingRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.ResolutionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *countingRepo) FailStale(context.Context, repository.Tx, time.Time, string) (int, error) {
	return 0, nil
}

func testJob(id string, status model.JobStatus) *model.ResolutionJob {
	return &model.ResolutionJob{
		ID:         id,
		Owner:      model.OwnerKey{ShopID: "s", DiagnosticID: "d", Category: model.IssueCategoryImages},
		Status:     status,
		TotalItems: 2,
	}
}

func TestJobCache_SecondReadServedFromCache(t *testing.T) {
	t.Parallel()

	inner := newCountingRepo()
	cache := newFakeRedis()
	repo := NewJobRepoCacheDecorator(inner, cache, time.Hour)
	ctx := context.Background()

	if err := repo.Create(ctx, nil, testJob("j1", model.JobStatusRunning)); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := repo.FindByID(ctx, nil, "j1"); err != nil {
			t.Fatal(err)
		}
	}
	if inner.finds != 1 {
		t.Fatalf("expected one store read, got %d", inner.finds)
	}
}

func TestJobCache_WriteInvalidates(t *testing.T) {
	t.Parallel()

	inner := newCountingRepo()
	cache := newFakeRedis()
	repo := NewJobRepoCacheDecorator(inner, cache, time.Hour)
	ctx := context.Background()

	job := testJob("j1", model.JobStatusRunning)
	if err := repo.Create(ctx, nil, job); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindByID(ctx, nil, "j1"); err != nil {
		t.Fatal(err)
	}

	job.ProcessedItems = 1
	job.SuccessCount = 1
	if err := repo.Update(ctx, nil, job); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FindByID(ctx, nil, "j1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ProcessedItems != 1 {
		t.Fatalf("read a stale snapshot after write: %+v", got)
	}
	if inner.finds != 2 {
		t.Fatalf("expected a fresh store read after invalidation, finds=%d", inner.finds)
	}
}

func TestJobCache_TTLByStatus(t *testing.T) {
	t.Parallel()

	inner := newCountingRepo()
	cache := newFakeRedis()
	terminalTTL := time.Hour
	repo := NewJobRepoCacheDecorator(inner, cache, terminalTTL)
	ctx := context.Background()

	if err := repo.Create(ctx, nil, testJob("active", model.JobStatusRunning)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, nil, testJob("done", model.JobStatusCompleted)); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindByID(ctx, nil, "active"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindByID(ctx, nil, "done"); err != nil {
		t.Fatal(err)
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if got := cache.ttls[jobKey("active")]; got != activeSnapshotTTL {
		t.Fatalf("active snapshot TTL = %v, want %v", got, activeSnapshotTTL)
	}
	if got := cache.ttls[jobKey("done")]; got != terminalTTL {
		t.Fatalf("terminal snapshot TTL = %v, want %v", got, terminalTTL)
	}
}

func TestJobCache_MissFallsThrough(t *testing.T) {
	t.Parallel()

	repo := NewJobRepoCacheDecorator(newCountingRepo(), newFakeRedis(), time.Hour)
	if _, err := repo.FindByID(context.Background(), nil, "absent"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
