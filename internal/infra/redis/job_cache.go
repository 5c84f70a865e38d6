package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/domain/ports/repository"
	"shop-seo-console/internal/infra/metrics"
)

var _ repository.ResolutionJobRepository = (*jobRepoCacheDecorator)(nil)

// activeSnapshotTTL bounds how stale a cached in-flight snapshot can be.
// It must stay well under the poll interval so pollers see fresh counters.
const activeSnapshotTTL = 2 * time.Second

// jobRepoCacheDecorator absorbs poller fan-in on FindByID. Terminal records
// never change again and get the long TTL; active ones a very short one.
// Every write invalidates the key.
type jobRepoCacheDecorator struct {
	inner       repository.ResolutionJobRepository
	cache       RedisClient
	terminalTTL time.Duration
}

func NewJobRepoCacheDecorator(inner repository.ResolutionJobRepository, cache RedisClient, terminalTTL time.Duration) repository.ResolutionJobRepository {
	return &jobRepoCacheDecorator{
		inner:       inner,
		cache:       cache,
		terminalTTL: terminalTTL,
	}
}

func jobKey(id string) string { return "resolution_job:" + id }

func (d *jobRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, job *model.ResolutionJob) error {
	if err := d.inner.Create(ctx, tx, job); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, jobKey(job.ID))
	return nil
}

func (d *jobRepoCacheDecorator) Update(ctx context.Context, tx repository.Tx, job *model.ResolutionJob) error {
	if err := d.inner.Update(ctx, tx, job); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, jobKey(job.ID))
	return nil
}

func (d *jobRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ResolutionJob, error) {
	key := jobKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var job model.ResolutionJob
		if json.Unmarshal([]byte(val), &job) == nil {
			metrics.IncCacheRequest("resolution_job", "hit")
			return &job, nil
		}
	} else if err != redis.Nil {
		// Redis being down must not break status reads; fall through.
	}

	metrics.IncCacheRequest("resolution_job", "miss")
	job, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	ttl := activeSnapshotTTL
	if job.Status.Terminal() {
		ttl = d.terminalTTL
	}
	if bytes, err := json.Marshal(job); err == nil {
		_ = d.cache.Set(ctx, key, bytes, ttl)
	}
	return job, nil
}

func (d *jobRepoCacheDecorator) FailStale(ctx context.Context, tx repository.Tx, cutoff time.Time, message string) (int, error) {
	// Stale records were last written before cutoff, so any cached active
	// snapshot has long expired; no targeted invalidation needed.
	return d.inner.FailStale(ctx, tx, cutoff, message)
}
