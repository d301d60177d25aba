package summarizer

import (
	"context"
	"fmt"

	"feed-digest/internal/domain/entity"
)

// NoOp is a summarizer that produces a fixed overview without calling
// any external service. It is used when summaries are disabled and in
// tests.
type NoOp struct{}

// NewNoOp creates a new NoOp summarizer.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Summarize returns a placeholder payload describing the prompt size.
// It never fails.
func (n *NoOp) Summarize(_ context.Context, prompt string) (*entity.SummaryPayload, error) {
	return &entity.SummaryPayload{
		Overview:   fmt.Sprintf("Summarization disabled; see the article list below. (%d characters of source material)", len(prompt)),
		Highlights: []string{},
	}, nil
}
