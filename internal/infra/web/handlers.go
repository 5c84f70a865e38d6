package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shop-seo-console/internal/domain"
	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/usecase"
)

type ctxKey string

const shopIDKey ctxKey = "shop_id"

func withShopID(ctx context.Context, shopID string) context.Context {
	return context.WithValue(ctx, shopIDKey, shopID)
}

func shopIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(shopIDKey).(string)
	return id
}

type submitRequest struct {
	ShopID        string `json:"shopId"`
	DiagnosticID  string `json:"diagnosticId"`
	IssueCategory string `json:"issueCategory"`
	Items         []struct {
		ID    string `json:"id"`
		Type  string `json:"type"`
		Label string `json:"label"`
	} `json:"items"`
}

// submitHandler accepts a bulk resolution request. A duplicate active job for
// the same owner key answers 409 without side effects.
func submitHandler(resolutionUC *usecase.ResolutionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ShopID != shopIDFrom(ctx) {
			writeError(w, http.StatusForbidden, "token does not match shop")
			return
		}

		items := make([]model.AffectedItem, len(req.Items))
		for i, it := range req.Items {
			items[i] = model.AffectedItem{ID: it.ID, Type: it.Type, Label: it.Label}
		}
		owner := model.OwnerKey{
			ShopID:       req.ShopID,
			DiagnosticID: req.DiagnosticID,
			Category:     model.IssueCategory(req.IssueCategory),
		}

		jobID, err := resolutionUC.Submit(ctx, owner, items)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrAlreadyInProgress):
				writeError(w, http.StatusConflict, "AlreadyInProgress")
			case errors.Is(err, domain.ErrEmptyItemList), errors.Is(err, domain.ErrInvalidArgument):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "failed to submit resolution")
			}
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID})
	}
}

// statusHandler returns the current job record in its flat wire form.
func statusHandler(resolutionUC *usecase.ResolutionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		jobID := chi.URLParam(r, "jobID")
		if jobID == "" {
			writeError(w, http.StatusBadRequest, "job ID is required")
			return
		}

		job, err := resolutionUC.Get(ctx, jobID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "job not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to get job")
			return
		}
		if job.Owner.ShopID != shopIDFrom(ctx) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}

		writeJSON(w, http.StatusOK, job.Snapshot())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
