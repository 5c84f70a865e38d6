package adapter

import (
	"context"
	"time"

	"shop-seo-console/internal/domain/model"
)

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Outcome is the result of resolving one item. Failures and skips carry a
// human-readable reason for the end-of-job summary.
type Outcome struct {
	Status OutcomeStatus
	Reason string
}

func Success() Outcome              { return Outcome{Status: OutcomeSuccess} }
func Failed(reason string) Outcome  { return Outcome{Status: OutcomeFailed, Reason: reason} }
func Skipped(reason string) Outcome { return Outcome{Status: OutcomeSkipped, Reason: reason} }

// ItemResolver is the per-category strategy that attempts to fix one item.
// Resolve never returns a Go error: every failure path, including panics in
// downstream calls, must fold into the failed outcome so one bad item cannot
// abort a batch.
type ItemResolver interface {
	Category() model.IssueCategory
	Resolve(ctx context.Context, item model.AffectedItem) Outcome

	// Throttle is the pause the worker inserts after each item, sized to the
	// rate limits of whatever external service the strategy calls. Zero
	// means no pause.
	Throttle() time.Duration
}
