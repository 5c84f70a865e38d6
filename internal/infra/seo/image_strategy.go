package seo

import (
	"context"
	"time"

	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/domain/ports/adapter"
)

var _ adapter.ItemResolver = (*ImageStrategy)(nil)

// ImageStrategy fills in missing image alt texts.
type ImageStrategy struct {
	gen      adapter.ContentGenerator
	store    adapter.ContentStore
	throttle time.Duration
}

func NewImageStrategy(gen adapter.ContentGenerator, store adapter.ContentStore, throttle time.Duration) *ImageStrategy {
	return &ImageStrategy{gen: gen, store: store, throttle: throttle}
}

func (s *ImageStrategy) Category() model.IssueCategory { return model.IssueCategoryImages }
func (s *ImageStrategy) Throttle() time.Duration       { return s.throttle }

func (s *ImageStrategy) Resolve(ctx context.Context, item model.AffectedItem) adapter.Outcome {
	content, out, ok := fetch(ctx, s.store, item)
	if !ok {
		return out
	}

	if len(content.AltTexts) == 0 {
		return adapter.Skipped("no images on item")
	}
	missing := 0
	for _, alt := range content.AltTexts {
		if alt == "" {
			missing++
		}
	}
	if missing == 0 {
		return adapter.Skipped("alt text already present")
	}

	alt, err := s.gen.AltText(ctx, genInput(item, content))
	if err != nil {
		return adapter.Failed("generate alt text: " + err.Error())
	}

	alts := make([]string, len(content.AltTexts))
	copy(alts, content.AltTexts)
	for i, a := range alts {
		if a == "" {
			alts[i] = alt
		}
	}
	if err := s.store.SetAltTexts(ctx, item.Type, item.ID, alts); err != nil {
		return adapter.Failed("save alt text: " + err.Error())
	}
	return adapter.Success()
}
