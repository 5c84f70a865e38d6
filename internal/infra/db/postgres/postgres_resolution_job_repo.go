package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"shop-seo-console/internal/domain"
	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/domain/ports/repository"
)

var _ repository.ResolutionJobRepository = (*resolutionJobRepo)(nil)

const uniqueViolation = "23505"

type resolutionJobRepo struct {
	pool *pgxpool.Pool
}

func NewResolutionJobRepo(pool *pgxpool.Pool) *resolutionJobRepo {
	return &resolutionJobRepo{pool: pool}
}

// Create inserts the job record. The partial unique index on
// (shop_id, diagnostic_id, issue_category) over active statuses makes the
// insert itself the dedup gate; a violation maps to ErrAlreadyInProgress.
func (r *resolutionJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.ResolutionJob) error {
	if job.ID == "" {
		job.ID = ulid.Make().String()
	}
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	const q = `
INSERT INTO resolution_jobs (
  id, shop_id, diagnostic_id, issue_category, status,
  total_items, processed_items, success_count, failed_count, skipped_count,
  current_item, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14);`

	_, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.Owner.ShopID, job.Owner.DiagnosticID, string(job.Owner.Category), string(job.Status),
		job.TotalItems, job.ProcessedItems, job.SuccessCount, job.FailedCount, job.SkippedCount,
		job.CurrentItem, job.ErrorMessage, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyInProgress
		}
		return err
	}
	return nil
}

// Update writes the record only while it is still active. A terminal record
// never changes again, so a worker whose job was failed underneath it (stale
// sweep) cannot resurrect it; that write affects zero rows and surfaces as
// ErrNotFound.
func (r *resolutionJobRepo) Update(ctx context.Context, tx repository.Tx, job *model.ResolutionJob) error {
	job.UpdatedAt = time.Now()

	const q = `
UPDATE resolution_jobs SET
  status = $2,
  processed_items = $3,
  success_count = $4,
  failed_count = $5,
  skipped_count = $6,
  current_item = $7,
  error_message = $8,
  updated_at = $9
WHERE id = $1 AND status NOT IN ('completed','failed');`

	tag, err := execSQL(ctx, r.pool, tx, q,
		job.ID, string(job.Status),
		job.ProcessedItems, job.SuccessCount, job.FailedCount, job.SkippedCount,
		job.CurrentItem, job.ErrorMessage, job.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *resolutionJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ResolutionJob, error) {
	const q = `
SELECT id, shop_id, diagnostic_id, issue_category, status,
       total_items, processed_items, success_count, failed_count, skipped_count,
       current_item, error_message, created_at, updated_at
  FROM resolution_jobs WHERE id = $1;`

	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	var j model.ResolutionJob
	var category, status string
	err = row.Scan(
		&j.ID, &j.Owner.ShopID, &j.Owner.DiagnosticID, &category, &status,
		&j.TotalItems, &j.ProcessedItems, &j.SuccessCount, &j.FailedCount, &j.SkippedCount,
		&j.CurrentItem, &j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	j.Owner.Category = model.IssueCategory(category)
	j.Status = model.JobStatus(status)
	return &j, nil
}

func (r *resolutionJobRepo) FailStale(ctx context.Context, tx repository.Tx, cutoff time.Time, message string) (int, error) {
	const q = `
UPDATE resolution_jobs SET
  status = 'failed',
  error_message = $2,
  current_item = '',
  updated_at = now()
WHERE status = 'running' AND updated_at < $1;`

	tag, err := execSQL(ctx, r.pool, tx, q, cutoff, message)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
