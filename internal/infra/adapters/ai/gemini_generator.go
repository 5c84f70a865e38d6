package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"shop-seo-console/internal/domain/ports/adapter"
	"shop-seo-console/internal/infra/metrics"
)

var _ adapter.ContentGenerator = (*GeminiGenerator)(nil)

// GeminiGenerator produces SEO copy through the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key empty")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) AltText(ctx context.Context, in adapter.GenerationInput) (string, error) {
	return g.generate(ctx, "alt_text", fmt.Sprintf(
		"Write a concise, descriptive image alt text (max 125 characters) for the %s %q.%s",
		in.ItemType, in.Label, sourceBlock(in.Source)))
}

func (g *GeminiGenerator) Description(ctx context.Context, in adapter.GenerationInput) (string, error) {
	return g.generate(ctx, "description", fmt.Sprintf(
		"Write a compelling, SEO-friendly description (2-3 short paragraphs) for the %s %q.%s",
		in.ItemType, in.Label, sourceBlock(in.Source)))
}

func (g *GeminiGenerator) Meta(ctx context.Context, in adapter.GenerationInput) (adapter.MetaFields, error) {
	out, err := g.generate(ctx, "meta", fmt.Sprintf(
		"Write an SEO title (max 60 characters) and a meta description (max 155 characters) for the %s %q. "+
			"Reply with the title on the first line and the meta description on the second line, nothing else.%s",
		in.ItemType, in.Label, sourceBlock(in.Source)))
	if err != nil {
		return adapter.MetaFields{}, err
	}
	lines := strings.SplitN(strings.TrimSpace(out), "\n", 2)
	meta := adapter.MetaFields{Title: strings.TrimSpace(lines[0])}
	if len(lines) > 1 {
		meta.Description = strings.TrimSpace(lines[1])
	}
	if meta.Title == "" || meta.Description == "" {
		return adapter.MetaFields{}, errors.New("model returned incomplete meta fields")
	}
	return meta, nil
}

func (g *GeminiGenerator) AnchorText(ctx context.Context, in adapter.GenerationInput, target string) (string, error) {
	return g.generate(ctx, "anchor_text", fmt.Sprintf(
		"Write short, natural anchor text (2-5 words) for an internal link from the %s %q to the related page %q.%s",
		in.ItemType, in.Label, target, sourceBlock(in.Source)))
}

func (g *GeminiGenerator) generate(ctx context.Context, kind, prompt string) (string, error) {
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	latency := int(time.Since(start) / time.Millisecond)
	if err != nil {
		metrics.ObserveGeneration("gemini", g.model, kind, latency, false)
		return "", fmt.Errorf("gemini %s: %w", kind, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		metrics.ObserveGeneration("gemini", g.model, kind, latency, false)
		return "", errors.New("gemini returned empty response")
	}
	metrics.ObserveGeneration("gemini", g.model, kind, latency, true)
	return text, nil
}

// sourceBlock appends existing page text to a prompt, truncated by runes.
// Gemini counts tokens server-side, so a simple length clamp is enough here.
func sourceBlock(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	const maxRunes = 6000
	if runes := []rune(source); len(runes) > maxRunes {
		source = string(runes[:maxRunes])
	}
	return "\n\nExisting page text for context:\n" + source
}
