package seo

import (
	"context"
	"errors"
	"time"

	"shop-seo-console/internal/domain"
	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/domain/ports/adapter"
)

var _ adapter.ItemResolver = (*LinkingStrategy)(nil)

// LinkingStrategy inserts one internal link to a related page.
type LinkingStrategy struct {
	gen      adapter.ContentGenerator
	store    adapter.ContentStore
	throttle time.Duration
}

func NewLinkingStrategy(gen adapter.ContentGenerator, store adapter.ContentStore, throttle time.Duration) *LinkingStrategy {
	return &LinkingStrategy{gen: gen, store: store, throttle: throttle}
}

func (s *LinkingStrategy) Category() model.IssueCategory { return model.IssueCategoryLinking }
func (s *LinkingStrategy) Throttle() time.Duration       { return s.throttle }

func (s *LinkingStrategy) Resolve(ctx context.Context, item model.AffectedItem) adapter.Outcome {
	content, out, ok := fetch(ctx, s.store, item)
	if !ok {
		return out
	}
	if content.InternalLink != "" {
		return adapter.Skipped("internal link already present")
	}

	target, err := s.store.SuggestLinkTarget(ctx, item.Type, item.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return adapter.Skipped("no related page to link to")
		}
		return adapter.Failed("find link target: " + err.Error())
	}

	anchor, err := s.gen.AnchorText(ctx, genInput(item, content), target)
	if err != nil {
		return adapter.Failed("generate anchor text: " + err.Error())
	}
	if err := s.store.SetInternalLink(ctx, item.Type, item.ID, target, anchor); err != nil {
		return adapter.Failed("save internal link: " + err.Error())
	}
	return adapter.Success()
}
