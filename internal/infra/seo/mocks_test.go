package seo

import (
	"context"
	"errors"

	"shop-seo-console/internal/domain"
	"shop-seo-console/internal/domain/ports/adapter"
)

// memStore is an in-memory content store recording writes.
type memStore struct {
	items map[string]*adapter.ItemContent // keyed by type+"/"+id

	getErr   error
	writeErr error

	linkTarget    string
	linkTargetErr error

	savedAlts     []string
	savedDesc     string
	savedMeta     adapter.MetaFields
	savedHeadings []string
	savedLinkTo   string
	savedAnchor   string
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]*adapter.ItemContent)}
}

func (m *memStore) put(c *adapter.ItemContent) { m.items[c.Type+"/"+c.ID] = c }

func (m *memStore) Get(_ context.Context, itemType, id string) (*adapter.ItemContent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.items[itemType+"/"+id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) SetAltTexts(_ context.Context, _, _ string, alts []string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.savedAlts = alts
	return nil
}

func (m *memStore) SetDescription(_ context.Context, _, _, description string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.savedDesc = description
	return nil
}

func (m *memStore) SetMeta(_ context.Context, _, _ string, meta adapter.MetaFields) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.savedMeta = meta
	return nil
}

func (m *memStore) SetHeadings(_ context.Context, _, _ string, headings []string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.savedHeadings = headings
	return nil
}

func (m *memStore) SetInternalLink(_ context.Context, _, _, targetID, anchor string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.savedLinkTo = targetID
	m.savedAnchor = anchor
	return nil
}

func (m *memStore) SuggestLinkTarget(_ context.Context, _, _ string) (string, error) {
	if m.linkTargetErr != nil {
		return "", m.linkTargetErr
	}
	if m.linkTarget == "" {
		return "", domain.ErrNotFound
	}
	return m.linkTarget, nil
}

// cannedGen returns fixed copy, or an error when armed.
type cannedGen struct {
	err   error
	calls int
}

func (g *cannedGen) AltText(context.Context, adapter.GenerationInput) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return "generated alt text", nil
}

func (g *cannedGen) Description(context.Context, adapter.GenerationInput) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return "generated description", nil
}

func (g *cannedGen) Meta(context.Context, adapter.GenerationInput) (adapter.MetaFields, error) {
	g.calls++
	if g.err != nil {
		return adapter.MetaFields{}, g.err
	}
	return adapter.MetaFields{Title: "generated title", Description: "generated meta"}, nil
}

func (g *cannedGen) AnchorText(context.Context, adapter.GenerationInput, string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return "generated anchor", nil
}

var errStoreDown = errors.New("store unavailable")
