package model

import "time"

// JobSnapshot is the flat wire form of a job record served by the status
// endpoint and consumed by pollers. Progress is derived at snapshot time so
// readers never compute it themselves.
type JobSnapshot struct {
	ID              string    `json:"id"`
	ShopID          string    `json:"shopId"`
	DiagnosticID    string    `json:"diagnosticId"`
	IssueCategory   string    `json:"issueCategory"`
	Status          JobStatus `json:"status"`
	TotalItems      int       `json:"totalItems"`
	ProcessedItems  int       `json:"processedItems"`
	SuccessCount    int       `json:"successCount"`
	FailedCount     int       `json:"failedCount"`
	SkippedCount    int       `json:"skippedCount"`
	CurrentItem     string    `json:"currentItemLabel,omitempty"`
	ProgressPercent float64   `json:"progressPercent"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (j *ResolutionJob) Snapshot() JobSnapshot {
	return JobSnapshot{
		ID:              j.ID,
		ShopID:          j.Owner.ShopID,
		DiagnosticID:    j.Owner.DiagnosticID,
		IssueCategory:   string(j.Owner.Category),
		Status:          j.Status,
		TotalItems:      j.TotalItems,
		ProcessedItems:  j.ProcessedItems,
		SuccessCount:    j.SuccessCount,
		FailedCount:     j.FailedCount,
		SkippedCount:    j.SkippedCount,
		CurrentItem:     j.CurrentItem,
		ProgressPercent: j.Progress(),
		ErrorMessage:    j.ErrorMessage,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}

func (s JobSnapshot) Job() *ResolutionJob {
	return &ResolutionJob{
		ID: s.ID,
		Owner: OwnerKey{
			ShopID:       s.ShopID,
			DiagnosticID: s.DiagnosticID,
			Category:     IssueCategory(s.IssueCategory),
		},
		Status:         s.Status,
		TotalItems:     s.TotalItems,
		ProcessedItems: s.ProcessedItems,
		SuccessCount:   s.SuccessCount,
		FailedCount:    s.FailedCount,
		SkippedCount:   s.SkippedCount,
		CurrentItem:    s.CurrentItem,
		ErrorMessage:   s.ErrorMessage,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
