package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shop-seo-console/internal/domain"
	"shop-seo-console/internal/domain/model"
)

var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher reads job snapshots from the console API, for pollers running
// outside the service process.
type HTTPFetcher struct {
	base   string
	token  string
	client *http.Client
}

func NewHTTPFetcher(baseURL, token string) *HTTPFetcher {
	return &HTTPFetcher{
		base:   strings.TrimRight(baseURL, "/"),
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *HTTPFetcher) FetchJob(ctx context.Context, id string) (*model.ResolutionJob, error) {
	url := f.base + "/api/v1/resolutions/" + id
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		return nil, fmt.Errorf("status fetch: unexpected HTTP %d", resp.StatusCode)
	}

	var snap model.JobSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("status fetch: decode: %w", err)
	}
	return snap.Job(), nil
}
