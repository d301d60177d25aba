package summarizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-digest/internal/infra/summarizer"
)

func TestParsePayloadPlainJSON(t *testing.T) {
	payload, err := summarizer.ParsePayload(`{"overview": "the gist", "highlights": ["a", "b"]}`)
	require.NoError(t, err)

	assert.Equal(t, "the gist", payload.Overview)
	assert.Equal(t, []string{"a", "b"}, payload.Highlights)
}

func TestParsePayloadStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"overview\": \"fenced\", \"highlights\": []}\n```"
	payload, err := summarizer.ParsePayload(raw)
	require.NoError(t, err)

	assert.Equal(t, "fenced", payload.Overview)
}

func TestParsePayloadToleratesSurroundingProse(t *testing.T) {
	raw := `Here is your summary:
{"overview": "buried", "highlights": ["x"]}
Hope that helps!`
	payload, err := summarizer.ParsePayload(raw)
	require.NoError(t, err)

	assert.Equal(t, "buried", payload.Overview)
}

func TestParsePayloadMissingFieldsAreZeroValues(t *testing.T) {
	payload, err := summarizer.ParsePayload(`{"overview": "only overview"}`)
	require.NoError(t, err)

	assert.Equal(t, "only overview", payload.Overview)
	assert.Nil(t, payload.Highlights)
}

func TestParsePayloadRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no json at all", raw: "I could not produce a summary."},
		{name: "broken json", raw: `{"overview": "unterminated`},
		{name: "empty", raw: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := summarizer.ParsePayload(tt.raw)
			assert.Error(t, err)
		})
	}
}
