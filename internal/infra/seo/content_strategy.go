package seo

import (
	"context"
	"time"

	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/domain/ports/adapter"
)

var _ adapter.ItemResolver = (*ContentStrategy)(nil)

// minDescriptionRunes is the threshold below which a description counts as
// thin and gets regenerated.
const minDescriptionRunes = 120

// ContentStrategy regenerates thin or missing descriptions.
type ContentStrategy struct {
	gen      adapter.ContentGenerator
	store    adapter.ContentStore
	throttle time.Duration
}

func NewContentStrategy(gen adapter.ContentGenerator, store adapter.ContentStore, throttle time.Duration) *ContentStrategy {
	return &ContentStrategy{gen: gen, store: store, throttle: throttle}
}

func (s *ContentStrategy) Category() model.IssueCategory { return model.IssueCategoryContent }
func (s *ContentStrategy) Throttle() time.Duration       { return s.throttle }

func (s *ContentStrategy) Resolve(ctx context.Context, item model.AffectedItem) adapter.Outcome {
	content, out, ok := fetch(ctx, s.store, item)
	if !ok {
		return out
	}
	if len([]rune(content.Description)) >= minDescriptionRunes {
		return adapter.Skipped("description already sufficient")
	}

	desc, err := s.gen.Description(ctx, genInput(item, content))
	if err != nil {
		return adapter.Failed("generate description: " + err.Error())
	}
	if err := s.store.SetDescription(ctx, item.Type, item.ID, desc); err != nil {
		return adapter.Failed("save description: " + err.Error())
	}
	return adapter.Success()
}
