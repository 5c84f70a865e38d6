package seo

import (
	"context"
	"time"

	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/domain/ports/adapter"
)

var _ adapter.ItemResolver = (*MetadataStrategy)(nil)

// MetadataStrategy regenerates missing SEO title / meta description pairs.
type MetadataStrategy struct {
	gen      adapter.ContentGenerator
	store    adapter.ContentStore
	throttle time.Duration
}

func NewMetadataStrategy(gen adapter.ContentGenerator, store adapter.ContentStore, throttle time.Duration) *MetadataStrategy {
	return &MetadataStrategy{gen: gen, store: store, throttle: throttle}
}

func (s *MetadataStrategy) Category() model.IssueCategory { return model.IssueCategoryMetadata }
func (s *MetadataStrategy) Throttle() time.Duration       { return s.throttle }

func (s *MetadataStrategy) Resolve(ctx context.Context, item model.AffectedItem) adapter.Outcome {
	content, out, ok := fetch(ctx, s.store, item)
	if !ok {
		return out
	}
	if content.MetaTitle != "" && content.MetaDesc != "" {
		return adapter.Skipped("metadata already present")
	}

	meta, err := s.gen.Meta(ctx, genInput(item, content))
	if err != nil {
		return adapter.Failed("generate metadata: " + err.Error())
	}
	// Keep whichever field the merchant already wrote.
	if content.MetaTitle != "" {
		meta.Title = content.MetaTitle
	}
	if content.MetaDesc != "" {
		meta.Description = content.MetaDesc
	}
	if err := s.store.SetMeta(ctx, item.Type, item.ID, meta); err != nil {
		return adapter.Failed("save metadata: " + err.Error())
	}
	return adapter.Success()
}
