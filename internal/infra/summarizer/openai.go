package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"feed-digest/internal/domain/entity"
	"feed-digest/internal/resilience/circuitbreaker"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAI implements the enrichment Summarizer interface using OpenAI's
// chat completion API.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	limiter        *rate.Limiter
	config         Config
}

// NewOpenAI creates a new OpenAI summarizer with the given API key and
// configuration.
func NewOpenAI(apiKey string, cfg Config) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}

	slog.Info("initialized OpenAI summarizer",
		slog.String("model", cfg.Model),
		slog.Int("max_tokens", cfg.MaxTokens))

	return &OpenAI{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.SummarizerConfig("openai-api")),
		limiter:        newLimiter(cfg.RequestsPerMinute),
		config:         cfg,
	}
}

// Summarize sends the prompt to the chat completion API and parses the
// structured payload out of the response.
func (o *OpenAI) Summarize(ctx context.Context, prompt string) (*entity.SummaryPayload, error) {
	if err := waitLimiter(ctx, o.limiter); err != nil {
		return nil, err
	}

	result, err := o.circuitBreaker.Execute(func() (interface{}, error) {
		return o.doSummarize(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("openai api circuit breaker open, request rejected",
				slog.String("state", o.circuitBreaker.State().String()))
			return nil, fmt.Errorf("openai api unavailable: circuit breaker open")
		}
		return nil, err
	}

	return result.(*entity.SummaryPayload), nil
}

// doSummarize performs the actual API call without the circuit breaker.
func (o *OpenAI) doSummarize(ctx context.Context, prompt string) (*entity.SummaryPayload, error) {
	requestID := uuid.New().String()

	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	slog.InfoContext(ctx, "starting summarization",
		slog.String("request_id", requestID),
		slog.String("provider", "openai"),
		slog.Int("prompt_length", len(prompt)))

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "summarization failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api returned no choices")
	}

	payload, err := ParsePayload(resp.Choices[0].Message.Content)
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
