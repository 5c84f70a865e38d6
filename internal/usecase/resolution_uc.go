package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"shop-seo-console/internal/domain"
	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/domain/ports/adapter"
	"shop-seo-console/internal/domain/ports/repository"
	"shop-seo-console/internal/infra/logging"
	"shop-seo-console/internal/infra/metrics"
)

// Runner executes one accepted job asynchronously.
type Runner interface {
	Go(name string, task func(ctx context.Context))
}

// ResolutionUseCase is the submission gate and the resolution worker.
// Submit performs the atomic create-or-reject; the worker then owns the job
// record exclusively until it reaches a terminal state.
type ResolutionUseCase struct {
	jobs      repository.ResolutionJobRepository
	resolvers map[model.IssueCategory]adapter.ItemResolver
	runner    Runner
	log       *zerolog.Logger
}

func NewResolutionUseCase(
	jobs repository.ResolutionJobRepository,
	resolvers []adapter.ItemResolver,
	runner Runner,
	logger *zerolog.Logger,
) *ResolutionUseCase {
	byCategory := make(map[model.IssueCategory]adapter.ItemResolver, len(resolvers))
	for _, res := range resolvers {
		byCategory[res.Category()] = res
	}
	ucLog := logger.With().Str("component", "ResolutionUseCase").Logger()
	return &ResolutionUseCase{
		jobs:      jobs,
		resolvers: byCategory,
		runner:    runner,
		log:       &ucLog,
	}
}

// Submit accepts a resolution request for the given owner key.
// It returns domain.ErrAlreadyInProgress when a queued or running job exists
// for the same key; the rejection leaves no side effects. On acceptance
// exactly one worker invocation is started.
func (uc *ResolutionUseCase) Submit(ctx context.Context, owner model.OwnerKey, items []model.AffectedItem) (string, error) {
	if len(items) == 0 {
		return "", domain.ErrEmptyItemList
	}
	if owner.ShopID == "" || owner.DiagnosticID == "" || !owner.Category.Valid() {
		return "", domain.ErrInvalidArgument
	}
	for _, it := range items {
		if it.ID == "" {
			return "", domain.ErrInvalidArgument
		}
	}
	resolver, ok := uc.resolvers[owner.Category]
	if !ok {
		return "", fmt.Errorf("no resolver for category %q: %w", owner.Category, domain.ErrInvalidArgument)
	}

	job := &model.ResolutionJob{
		Owner:      owner,
		Status:     model.JobStatusQueued,
		TotalItems: len(items),
	}
	// Create is the gate: the store's uniqueness invariant on the active
	// owner key decides races between near-simultaneous submissions.
	if err := uc.jobs.Create(ctx, nil, job); err != nil {
		return "", err
	}

	uc.log.Info().
		Str("job_id", job.ID).
		Str("shop_id", owner.ShopID).
		Str("category", string(owner.Category)).
		Int("items", len(items)).
		Msg("resolution job accepted")

	batch := make([]model.AffectedItem, len(items))
	copy(batch, items)
	uc.runner.Go("resolution-job-"+job.ID, func(ctx context.Context) {
		uc.runJob(ctx, job, batch, resolver)
	})
	return job.ID, nil
}

// runJob processes the batch sequentially. Per-item failures are counted,
// never propagated; only a failure to persist the job record is fatal.
func (uc *ResolutionUseCase) runJob(ctx context.Context, job *model.ResolutionJob, items []model.AffectedItem, resolver adapter.ItemResolver) {
	ctx = logging.WithJobID(ctx, job.ID)
	log := logging.With(ctx, uc.log)
	start := time.Now()

	job.Status = model.JobStatusRunning
	if err := uc.jobs.Update(ctx, nil, job); err != nil {
		uc.abortJob(job, fmt.Errorf("mark running: %w", err), log)
		return
	}

	for _, item := range items {
		job.CurrentItem = item.Label
		if err := uc.jobs.Update(ctx, nil, job); err != nil {
			uc.abortJob(job, fmt.Errorf("persist current item: %w", err), log)
			return
		}

		itemStart := time.Now()
		outcome := resolveItem(ctx, resolver, item)
		metrics.ObserveItemResolution(string(job.Owner.Category), string(outcome.Status), time.Since(itemStart))

		switch outcome.Status {
		case adapter.OutcomeSuccess:
			job.SuccessCount++
		case adapter.OutcomeSkipped:
			job.SkippedCount++
			log.Debug().Str("item_id", item.ID).Str("reason", outcome.Reason).Msg("item skipped")
		default:
			job.FailedCount++
			log.Warn().Str("item_id", item.ID).Str("reason", outcome.Reason).Msg("item resolution failed")
		}
		job.ProcessedItems++

		// One write covers the whole counter set, so observers never see
		// processed_items ahead of the outcome buckets.
		if err := uc.jobs.Update(ctx, nil, job); err != nil {
			uc.abortJob(job, fmt.Errorf("persist counters: %w", err), log)
			return
		}

		if d := resolver.Throttle(); d > 0 && job.ProcessedItems < job.TotalItems {
			time.Sleep(d)
		}
	}

	job.Status = model.JobStatusCompleted
	job.CurrentItem = ""
	if err := uc.jobs.Update(context.Background(), nil, job); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Msg("job record already finalized, dropping late results")
			return
		}
		log.Error().Err(err).Msg("could not persist terminal state")
	}
	metrics.IncResolutionJob(string(model.JobStatusCompleted))
	log.Info().
		Int("success", job.SuccessCount).
		Int("failed", job.FailedCount).
		Int("skipped", job.SkippedCount).
		Dur("duration", time.Since(start)).
		Msg("resolution job completed")
}

// abortJob ends the worker after a record write was refused. ErrNotFound
// means the store no longer holds an active record for this job: another
// writer (the stale sweep) already finalized it, and a terminal record never
// changes again. The worker releases the job rather than overwrite the
// verdict.
func (uc *ResolutionUseCase) abortJob(job *model.ResolutionJob, cause error, log *zerolog.Logger) {
	if errors.Is(cause, domain.ErrNotFound) {
		log.Warn().Err(cause).Msg("job record already finalized, releasing worker")
		return
	}
	uc.failJob(job, cause, log)
}

// failJob records a fatal worker error. Counters stay at the last durably
// committed values.
func (uc *ResolutionUseCase) failJob(job *model.ResolutionJob, cause error, log *zerolog.Logger) {
	job.Status = model.JobStatusFailed
	job.CurrentItem = ""
	job.ErrorMessage = cause.Error()
	if err := uc.jobs.Update(context.Background(), nil, job); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(cause).Msg("job record already finalized, dropping failure write")
			return
		}
		log.Error().Err(err).Msg("could not persist job failure")
	}
	metrics.IncResolutionJob(string(model.JobStatusFailed))
	log.Error().Err(cause).Msg("resolution job failed")
}

// Get returns the current job record snapshot.
func (uc *ResolutionUseCase) Get(ctx context.Context, id string) (*model.ResolutionJob, error) {
	return uc.jobs.FindByID(ctx, nil, id)
}

// resolveItem shields the worker from a misbehaving strategy: a panic or a
// malformed outcome surfaces as a counted failure, not an aborted batch.
func resolveItem(ctx context.Context, resolver adapter.ItemResolver, item model.AffectedItem) (out adapter.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = adapter.Failed(fmt.Sprintf("resolver panic: %v", rec))
		}
	}()
	out = resolver.Resolve(ctx, item)
	switch out.Status {
	case adapter.OutcomeSuccess, adapter.OutcomeFailed, adapter.OutcomeSkipped:
	default:
		out = adapter.Failed(fmt.Sprintf("resolver returned unknown outcome %q", out.Status))
	}
	return out
}
