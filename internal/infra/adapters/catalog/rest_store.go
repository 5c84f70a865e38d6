package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shop-seo-console/internal/domain"
	"shop-seo-console/internal/domain/ports/adapter"
)

var _ adapter.ContentStore = (*RestStore)(nil)

// RestStore talks to the hosted data service holding products, collections
// and posts. The service owns the entities; this client only reads and
// writes the SEO-relevant slices of them.
type RestStore struct {
	base   string
	token  string
	client *http.Client
}

func NewRestStore(baseURL, token string) (*RestStore, error) {
	if baseURL == "" {
		return nil, errors.New("catalog base url empty")
	}
	return &RestStore{
		base:   strings.TrimRight(baseURL, "/"),
		token:  token,
		client: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (s *RestStore) Get(ctx context.Context, itemType, id string) (*adapter.ItemContent, error) {
	var item adapter.ItemContent
	if err := s.do(ctx, http.MethodGet, s.itemPath(itemType, id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *RestStore) SetAltTexts(ctx context.Context, itemType, id string, alts []string) error {
	body := map[string]interface{}{"altTexts": alts}
	return s.do(ctx, http.MethodPatch, s.itemPath(itemType, id), body, nil)
}

func (s *RestStore) SetDescription(ctx context.Context, itemType, id, description string) error {
	body := map[string]interface{}{"description": description}
	return s.do(ctx, http.MethodPatch, s.itemPath(itemType, id), body, nil)
}

func (s *RestStore) SetMeta(ctx context.Context, itemType, id string, meta adapter.MetaFields) error {
	body := map[string]interface{}{"metaTitle": meta.Title, "metaDescription": meta.Description}
	return s.do(ctx, http.MethodPatch, s.itemPath(itemType, id), body, nil)
}

func (s *RestStore) SetHeadings(ctx context.Context, itemType, id string, headings []string) error {
	body := map[string]interface{}{"headings": headings}
	return s.do(ctx, http.MethodPatch, s.itemPath(itemType, id), body, nil)
}

func (s *RestStore) SetInternalLink(ctx context.Context, itemType, id, targetID, anchor string) error {
	body := map[string]interface{}{"targetId": targetID, "anchorText": anchor}
	return s.do(ctx, http.MethodPost, s.itemPath(itemType, id)+"/links", body, nil)
}

func (s *RestStore) SuggestLinkTarget(ctx context.Context, itemType, id string) (string, error) {
	var out struct {
		TargetID string `json:"targetId"`
	}
	if err := s.do(ctx, http.MethodGet, s.itemPath(itemType, id)+"/related", nil, &out); err != nil {
		return "", err
	}
	if out.TargetID == "" {
		return "", domain.ErrNotFound
	}
	return out.TargetID, nil
}

func (s *RestStore) itemPath(itemType, id string) string {
	return fmt.Sprintf("%s/v1/%ss/%s", s.base, itemType, id)
}

func (s *RestStore) do(ctx context.Context, method, url string, body, out interface{}) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("catalog %s %s: HTTP %d: %s", method, url, resp.StatusCode, snippet)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
