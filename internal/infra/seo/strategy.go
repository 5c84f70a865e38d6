// Package seo holds one resolution strategy per issue category. Strategies
// are the only place that knows how to fix an item; the worker just
// dispatches and counts. A strategy never returns a Go error: everything
// folds into a success/failed/skipped outcome.
package seo

import (
	"context"
	"errors"
	"time"

	"shop-seo-console/internal/domain"
	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/domain/ports/adapter"
)

// All returns one resolver per issue category, wired to the given
// generator and content store. throttle applies to the AI-backed strategies;
// the structure strategy only touches the content store and runs unthrottled.
func All(gen adapter.ContentGenerator, store adapter.ContentStore, throttle time.Duration) []adapter.ItemResolver {
	return []adapter.ItemResolver{
		NewImageStrategy(gen, store, throttle),
		NewContentStrategy(gen, store, throttle),
		NewMetadataStrategy(gen, store, throttle),
		NewStructureStrategy(store),
		NewLinkingStrategy(gen, store, throttle),
	}
}

// fetch loads the item's content slice, mapping a vanished item to a skip:
// an entity deleted since the diagnostic ran no longer needs correction.
func fetch(ctx context.Context, store adapter.ContentStore, item model.AffectedItem) (*adapter.ItemContent, adapter.Outcome, bool) {
	content, err := store.Get(ctx, item.Type, item.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, adapter.Skipped("item no longer exists"), false
		}
		return nil, adapter.Failed("load item: " + err.Error()), false
	}
	return content, adapter.Outcome{}, true
}

func genInput(item model.AffectedItem, content *adapter.ItemContent) adapter.GenerationInput {
	return adapter.GenerationInput{
		ItemType: item.Type,
		Label:    item.Label,
		Source:   content.Description,
	}
}
