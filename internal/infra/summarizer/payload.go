package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"feed-digest/internal/domain/entity"
)

// ParsePayload decodes the structured payload from a model response.
// Models sometimes wrap JSON in a markdown code fence or surround it
// with prose; both are tolerated. A response with no decodable JSON
// object is an error, which the orchestrator treats as a transient
// failure and retries.
func ParsePayload(raw string) (*entity.SummaryPayload, error) {
	s := strings.TrimSpace(raw)

	if fenced, ok := stripCodeFence(s); ok {
		s = fenced
	}

	// Tolerate prose around the object by slicing from the first '{'
	// to the last '}'.
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("response contains no JSON object: %q", truncateForError(raw))
	}

	var payload entity.SummaryPayload
	if err := json.Unmarshal([]byte(s[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("decode summary payload: %w", err)
	}

	return &payload, nil
}

func stripCodeFence(s string) (string, bool) {
	if !strings.HasPrefix(s, "```") {
		return s, false
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s), true
}

func truncateForError(s string) string {
	const limit = 120
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
