package seo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shop-seo-console/internal/domain/model"
	"shop-seo-console/internal/domain/ports/adapter"
)

var _ adapter.ItemResolver = (*StructureStrategy)(nil)

// StructureStrategy repairs heading hierarchy. Headings arrive from the
// content store encoded as "h<level>:<text>". The repair rebases the
// hierarchy so it starts at h1 and never jumps by more than one level.
// No generator involved, so no throttle.
type StructureStrategy struct {
	store adapter.ContentStore
}

func NewStructureStrategy(store adapter.ContentStore) *StructureStrategy {
	return &StructureStrategy{store: store}
}

func (s *StructureStrategy) Category() model.IssueCategory { return model.IssueCategoryStructure }
func (s *StructureStrategy) Throttle() time.Duration       { return 0 }

func (s *StructureStrategy) Resolve(ctx context.Context, item model.AffectedItem) adapter.Outcome {
	content, out, ok := fetch(ctx, s.store, item)
	if !ok {
		return out
	}
	if len(content.Headings) == 0 {
		return adapter.Skipped("page has no headings")
	}

	fixed, changed, err := normalizeHeadings(content.Headings)
	if err != nil {
		return adapter.Failed("parse headings: " + err.Error())
	}
	if !changed {
		return adapter.Skipped("heading structure already valid")
	}
	if err := s.store.SetHeadings(ctx, item.Type, item.ID, fixed); err != nil {
		return adapter.Failed("save headings: " + err.Error())
	}
	return adapter.Success()
}

// normalizeHeadings rebases levels so the document starts at h1 and each
// step down descends at most one level.
func normalizeHeadings(headings []string) ([]string, bool, error) {
	levels := make([]int, len(headings))
	texts := make([]string, len(headings))
	for i, h := range headings {
		lvl, text, err := parseHeading(h)
		if err != nil {
			return nil, false, err
		}
		levels[i] = lvl
		texts[i] = text
	}

	changed := false
	prev := 0
	for i := range levels {
		want := levels[i]
		if i == 0 {
			want = 1
		} else if want > prev+1 {
			want = prev + 1
		}
		if want != levels[i] {
			levels[i] = want
			changed = true
		}
		prev = levels[i]
	}
	if !changed {
		return headings, false, nil
	}

	out := make([]string, len(headings))
	for i := range headings {
		out[i] = fmt.Sprintf("h%d:%s", levels[i], texts[i])
	}
	return out, true, nil
}

func parseHeading(h string) (int, string, error) {
	rest, ok := strings.CutPrefix(h, "h")
	if !ok {
		return 0, "", fmt.Errorf("malformed heading %q", h)
	}
	lvlStr, text, ok := strings.Cut(rest, ":")
	if !ok {
		return 0, "", fmt.Errorf("malformed heading %q", h)
	}
	lvl, err := strconv.Atoi(lvlStr)
	if err != nil || lvl < 1 || lvl > 6 {
		return 0, "", fmt.Errorf("malformed heading level in %q", h)
	}
	return lvl, text, nil
}
