package repository

import (
	"context"
	"time"

	"shop-seo-console/internal/domain/model"
)

// ResolutionJobRepository is the durable store for job records.
type ResolutionJobRepository interface {
	// Create inserts a new job record. Creation is the submission gate's
	// atomic primitive: if a queued or running job already exists for the
	// same owner key, Create returns domain.ErrAlreadyInProgress and has no
	// side effects. Implementations must not use a separate read-then-write.
	Create(ctx context.Context, tx Tx, job *model.ResolutionJob) error

	// Update persists status, counters, current item and error message as
	// one atomic write, advancing updated_at.
	Update(ctx context.Context, tx Tx, job *model.ResolutionJob) error

	FindByID(ctx context.Context, tx Tx, id string) (*model.ResolutionJob, error)

	// FailStale marks running jobs whose updated_at is older than the cutoff
	// as failed with the given message, returning how many were touched.
	FailStale(ctx context.Context, tx Tx, cutoff time.Time, message string) (int, error)
}
