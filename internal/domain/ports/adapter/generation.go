package adapter

import "context"

// GenerationInput carries everything a generator may use to produce copy for
// one content entity. Source is existing page text (may be empty).
type GenerationInput struct {
	ItemType string
	Label    string
	Source   string
}

// MetaFields is the SEO metadata pair written back to an entity.
type MetaFields struct {
	Title       string
	Description string
}

// ContentGenerator is the port for AI copy generation. Implementations call
// an external model provider; best-effort quality, deterministic contract.
type ContentGenerator interface {
	// AltText returns a short image alt description.
	AltText(ctx context.Context, in GenerationInput) (string, error)

	// Description returns body copy for a thin or missing description.
	Description(ctx context.Context, in GenerationInput) (string, error)

	// Meta returns an SEO title and meta description.
	Meta(ctx context.Context, in GenerationInput) (MetaFields, error)

	// AnchorText returns link copy for an internal link pointing at target.
	AnchorText(ctx context.Context, in GenerationInput, target string) (string, error)
}
