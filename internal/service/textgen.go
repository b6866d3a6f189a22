package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/timmy/tubevault/internal/config"
	"github.com/timmy/tubevault/internal/domain"
	"github.com/timmy/tubevault/internal/prompts"
)

// Substituted by callers when generation fails.
const (
	FallbackTitle       = "Failed to generate title"
	FallbackDescription = "Failed to generate description"
)

// TextGenerator writes titles and descriptions from transcripts.
type TextGenerator interface {
	GenerateTitle(ctx context.Context, transcript string) (string, error)
	GenerateDescription(ctx context.Context, transcript string) (string, error)
}

// ChatTextGenerator talks to an OpenAI-compatible chat completions API
// (Gemini by default).
type ChatTextGenerator struct {
	client *openai.Client
	model  string
}

// NewChatTextGenerator creates a generator. Calls are never retried.
func NewChatTextGenerator(cfg *config.LLMConfig) (*ChatTextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)
	return &ChatTextGenerator{client: &client, model: cfg.Model}, nil
}

func (g *ChatTextGenerator) GenerateTitle(ctx context.Context, transcript string) (string, error) {
	return g.complete(ctx, prompts.Title(transcript))
}

func (g *ChatTextGenerator) GenerateDescription(ctx context.Context, transcript string) (string, error) {
	return g.complete(ctx, prompts.Description(transcript))
}

func (g *ChatTextGenerator) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion failed: %v", domain.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices", domain.ErrUpstream)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateWithFallback runs both prompts, substituting the fallback text
// for any that fails. Failures are returned for logging only.
func GenerateWithFallback(ctx context.Context, gen TextGenerator, transcript string) (title, description string, errs []error) {
	title, err := gen.GenerateTitle(ctx, transcript)
	if err != nil {
		title = FallbackTitle
		errs = append(errs, err)
	}
	description, err = gen.GenerateDescription(ctx, transcript)
	if err != nil {
		description = FallbackDescription
		errs = append(errs, err)
	}
	return title, description, errs
}
