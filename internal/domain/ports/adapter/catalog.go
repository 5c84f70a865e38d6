package adapter

import "context"

// ItemContent is the slice of a content entity the resolution strategies
// read and write. The hosted data service owns the entity itself.
type ItemContent struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Label        string   `json:"label"`
	Description  string   `json:"description"`
	AltTexts     []string `json:"altTexts"`
	MetaTitle    string   `json:"metaTitle"`
	MetaDesc     string   `json:"metaDescription"`
	Headings     []string `json:"headings"`
	InternalLink string   `json:"internalLink"`
}

// ContentStore is the port to the hosted data service holding products,
// collections and posts. Reads return domain.ErrNotFound for missing items.
type ContentStore interface {
	Get(ctx context.Context, itemType, id string) (*ItemContent, error)
	SetAltTexts(ctx context.Context, itemType, id string, alts []string) error
	SetDescription(ctx context.Context, itemType, id, description string) error
	SetMeta(ctx context.Context, itemType, id string, meta MetaFields) error
	SetHeadings(ctx context.Context, itemType, id string, headings []string) error
	SetInternalLink(ctx context.Context, itemType, id, targetID, anchor string) error

	// SuggestLinkTarget returns the id of a related entity worth linking to,
	// or domain.ErrNotFound when the service has no candidate.
	SuggestLinkTarget(ctx context.Context, itemType, id string) (string, error)
}
