package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"shop-seo-console/internal/domain/ports/adapter"
	"shop-seo-console/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ContentGenerator = (*OpenAIGenerator)(nil)

// maxSourceTokens caps how much existing page text is fed into a prompt.
const maxSourceTokens = 1500

// OpenAIGenerator produces SEO copy through the Chat Completions API.
type OpenAIGenerator struct {
	client openai.Client
	model  string
	enc    *tiktoken.Tiktoken
}

func NewOpenAIGenerator(apiKey, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load token encoding: %w", err)
	}
	return &OpenAIGenerator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		enc:    enc,
	}, nil
}

func (g *OpenAIGenerator) AltText(ctx context.Context, in adapter.GenerationInput) (string, error) {
	prompt := fmt.Sprintf(
		"Write a concise, descriptive image alt text (max 125 characters) for the %s %q.%s",
		in.ItemType, in.Label, g.sourceBlock(in.Source))
	return g.generate(ctx, "alt_text", prompt)
}

func (g *OpenAIGenerator) Description(ctx context.Context, in adapter.GenerationInput) (string, error) {
	prompt := fmt.Sprintf(
		"Write a compelling, SEO-friendly description (2-3 short paragraphs) for the %s %q.%s",
		in.ItemType, in.Label, g.sourceBlock(in.Source))
	return g.generate(ctx, "description", prompt)
}

func (g *OpenAIGenerator) Meta(ctx context.Context, in adapter.GenerationInput) (adapter.MetaFields, error) {
	prompt := fmt.Sprintf(
		"Write an SEO title (max 60 characters) and a meta description (max 155 characters) for the %s %q. "+
			"Reply with the title on the first line and the meta description on the second line, nothing else.%s",
		in.ItemType, in.Label, g.sourceBlock(in.Source))
	out, err := g.generate(ctx, "meta", prompt)
	if err != nil {
		return adapter.MetaFields{}, err
	}
	lines := strings.SplitN(strings.TrimSpace(out), "\n", 2)
	meta := adapter.MetaFields{Title: strings.TrimSpace(lines[0])}
	if len(lines) > 1 {
		meta.Description = strings.TrimSpace(lines[1])
	}
	if meta.Title == "" || meta.Description == "" {
		return adapter.MetaFields{}, fmt.Errorf("model returned incomplete meta fields")
	}
	return meta, nil
}

func (g *OpenAIGenerator) AnchorText(ctx context.Context, in adapter.GenerationInput, target string) (string, error) {
	prompt := fmt.Sprintf(
		"Write short, natural anchor text (2-5 words) for an internal link from the %s %q to the related page %q.%s",
		in.ItemType, in.Label, target, g.sourceBlock(in.Source))
	return g.generate(ctx, "anchor_text", prompt)
}

func (g *OpenAIGenerator) generate(ctx context.Context, kind, prompt string) (string, error) {
	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an e-commerce SEO copywriter. Reply with the requested text only, no preamble."),
			openai.UserMessage(prompt),
		},
	})
	latency := int(time.Since(start) / time.Millisecond)
	if err != nil {
		metrics.ObserveGeneration("openai", g.model, kind, latency, false)
		return "", fmt.Errorf("openai %s: %w", kind, err)
	}
	if len(resp.Choices) == 0 {
		metrics.ObserveGeneration("openai", g.model, kind, latency, false)
		return "", errors.New("openai returned no choices")
	}
	metrics.ObserveGeneration("openai", g.model, kind, latency, true)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// sourceBlock appends existing page text, clamped to a token budget so one
// oversized description cannot blow the prompt.
func (g *OpenAIGenerator) sourceBlock(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	tokens := g.enc.Encode(source, nil, nil)
	if len(tokens) > maxSourceTokens {
		source = g.enc.Decode(tokens[:maxSourceTokens])
	}
	return "\n\nExisting page text for context:\n" + source
}
