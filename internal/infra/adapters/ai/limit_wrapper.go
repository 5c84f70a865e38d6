package ai

import (
	"context"

	"shop-seo-console/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.ContentGenerator = (*limitedGenerator)(nil)

type limitedGenerator struct {
	inner adapter.ContentGenerator
	sem   chan struct{}
}

// NewLimitedGenerator caps concurrent generation calls across all jobs.
func NewLimitedGenerator(inner adapter.ContentGenerator, maxConcurrent int) adapter.ContentGenerator {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedGenerator{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedGenerator) AltText(ctx context.Context, in adapter.GenerationInput) (string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.AltText(ctx, in)
}

func (l *limitedGenerator) Description(ctx context.Context, in adapter.GenerationInput) (string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Description(ctx, in)
}

func (l *limitedGenerator) Meta(ctx context.Context, in adapter.GenerationInput) (adapter.MetaFields, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Meta(ctx, in)
}

func (l *limitedGenerator) AnchorText(ctx context.Context, in adapter.GenerationInput, target string) (string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.AnchorText(ctx, in, target)
}
