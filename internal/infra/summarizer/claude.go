// Package summarizer provides AI-powered digest summarization implementations.
// It includes adapters for Claude (Anthropic) and OpenAI APIs with circuit
// breaking and client-side request pacing; retry policy belongs to the
// enrichment orchestrator, not to these clients.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"feed-digest/internal/domain/entity"
	"feed-digest/internal/resilience/circuitbreaker"
)

const defaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Claude implements the enrichment Summarizer interface using
// Anthropic's Claude API.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	limiter        *rate.Limiter
	config         Config
}

// NewClaude creates a new Claude summarizer with the given API key and
// configuration.
func NewClaude(apiKey string, cfg Config) *Claude {
	if cfg.Model == "" {
		cfg.Model = defaultClaudeModel
	}

	slog.Info("initialized Claude summarizer",
		slog.String("model", cfg.Model),
		slog.Int("max_tokens", cfg.MaxTokens))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.SummarizerConfig("claude-api")),
		limiter:        newLimiter(cfg.RequestsPerMinute),
		config:         cfg,
	}
}

// Summarize sends the prompt to Claude and parses the structured
// payload out of the response. Failures are returned to the caller;
// the orchestrator decides whether to retry.
func (c *Claude) Summarize(ctx context.Context, prompt string) (*entity.SummaryPayload, error) {
	if err := waitLimiter(ctx, c.limiter); err != nil {
		return nil, err
	}

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.doSummarize(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("claude api circuit breaker open, request rejected",
				slog.String("state", c.circuitBreaker.State().String()))
			return nil, fmt.Errorf("claude api unavailable: circuit breaker open")
		}
		return nil, err
	}

	return result.(*entity.SummaryPayload), nil
}

// doSummarize performs the actual API call without the circuit breaker.
func (c *Claude) doSummarize(ctx context.Context, prompt string) (*entity.SummaryPayload, error) {
	requestID := uuid.New().String()

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	slog.InfoContext(ctx, "starting summarization",
		slog.String("request_id", requestID),
		slog.String("provider", "claude"),
		slog.Int("prompt_length", len(prompt)))

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "summarization failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return nil, fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return nil, fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return nil, fmt.Errorf("claude api returned unexpected response type")
	}

	payload, err := ParsePayload(textBlock.Text)
	if err != nil {
		slog.WarnContext(ctx, "summarization response not parseable",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return nil, err
	}

	slog.InfoContext(ctx, "summarization completed",
		slog.String("request_id", requestID),
		slog.Int("highlights", len(payload.Highlights)),
		slog.Duration("duration", duration))

	return payload, nil
}

// newLimiter builds a per-minute pacer; n <= 0 disables pacing.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

func waitLimiter(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}
