package ai

import (
	"context"
	"fmt"

	"shop-seo-console/internal/domain/ports/adapter"
)

var _ adapter.ContentGenerator = (*NoopGenerator)(nil)

// NoopGenerator returns canned copy for dev mode and tests.
type NoopGenerator struct{}

func NewNoopGenerator() *NoopGenerator { return &NoopGenerator{} }

func (NoopGenerator) AltText(_ context.Context, in adapter.GenerationInput) (string, error) {
	return fmt.Sprintf("Photo of %s", in.Label), nil
}

func (NoopGenerator) Description(_ context.Context, in adapter.GenerationInput) (string, error) {
	return fmt.Sprintf("%s is a quality %s available in our store.", in.Label, in.ItemType), nil
}

func (NoopGenerator) Meta(_ context.Context, in adapter.GenerationInput) (adapter.MetaFields, error) {
	return adapter.MetaFields{
		Title:       in.Label,
		Description: fmt.Sprintf("Shop %s online.", in.Label),
	}, nil
}

func (NoopGenerator) AnchorText(_ context.Context, in adapter.GenerationInput, target string) (string, error) {
	return fmt.Sprintf("see %s", target), nil
}
