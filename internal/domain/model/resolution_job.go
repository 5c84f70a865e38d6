package model

import "time"

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further mutation of a job in this status occurs.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type IssueCategory string

const (
	IssueCategoryImages    IssueCategory = "images"
	IssueCategoryContent   IssueCategory = "content"
	IssueCategoryMetadata  IssueCategory = "metadata"
	IssueCategoryStructure IssueCategory = "structure"
	IssueCategoryLinking   IssueCategory = "linking"
)

// Categories lists the closed set of issue categories a job can target.
func Categories() []IssueCategory {
	return []IssueCategory{
		IssueCategoryImages,
		IssueCategoryContent,
		IssueCategoryMetadata,
		IssueCategoryStructure,
		IssueCategoryLinking,
	}
}

func (c IssueCategory) Valid() bool {
	switch c {
	case IssueCategoryImages, IssueCategoryContent, IssueCategoryMetadata,
		IssueCategoryStructure, IssueCategoryLinking:
		return true
	}
	return false
}

// OwnerKey identifies which jobs are mutually exclusive: at most one
// queued-or-running job may exist per key.
type OwnerKey struct {
	ShopID       string        `json:"shopId"`
	DiagnosticID string        `json:"diagnosticId"`
	Category     IssueCategory `json:"issueCategory"`
}

// AffectedItem is one content entity targeted by a job. It originates from
// the diagnostic report and is never persisted by this subsystem.
type AffectedItem struct {
	ID    string `json:"id"`
	Type  string `json:"type"` // product | collection | post
	Label string `json:"label"`
}

// ResolutionJob is the durable record of one bulk resolution run. It has
// exactly one writer (the worker that owns it) and any number of readers.
type ResolutionJob struct {
	ID             string    `json:"id"`
	Owner          OwnerKey  `json:"owner"`
	Status         JobStatus `json:"status"`
	TotalItems     int       `json:"totalItems"`
	ProcessedItems int       `json:"processedItems"`
	SuccessCount   int       `json:"successCount"`
	FailedCount    int       `json:"failedCount"`
	SkippedCount   int       `json:"skippedCount"`
	CurrentItem    string    `json:"currentItemLabel,omitempty"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Progress derives the completion percentage. Zero-item jobs are rejected at
// submission, so the zero guard only matters for uninitialized records.
func (j *ResolutionJob) Progress() float64 {
	if j.TotalItems <= 0 {
		return 0
	}
	return float64(j.ProcessedItems) / float64(j.TotalItems) * 100
}

// CountersConsistent checks the record invariant
// processed == success+failed+skipped && processed <= total.
func (j *ResolutionJob) CountersConsistent() bool {
	return j.ProcessedItems == j.SuccessCount+j.FailedCount+j.SkippedCount &&
		j.ProcessedItems <= j.TotalItems
}
