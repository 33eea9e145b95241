package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON untouched",
			input:    `{"style": "modern"}`,
			expected: `{"style": "modern"}`,
		},
		{
			name:     "json fenced block",
			input:    "```json\n{\"style\": \"modern\"}\n```",
			expected: `{"style": "modern"}`,
		},
		{
			name:     "generic fenced block",
			input:    "```\n{\"style\": \"modern\"}\n```",
			expected: `{"style": "modern"}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"a\": 1}\n  ",
			expected: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestBuildSuggestionPrompt(t *testing.T) {
	prompt, err := buildSuggestionPrompt(SuggestionRequest{
		TemplateName: "Kitchen Renovation",
		StepName:     "Choose Countertops",
		StepData:     map[string]interface{}{"material": "quartz"},
		Notes:        "prefers light colors",
	})
	assert.NoError(t, err)
	assert.Contains(t, prompt, "Kitchen Renovation")
	assert.Contains(t, prompt, "Choose Countertops")
	assert.Contains(t, prompt, "quartz")
	assert.Contains(t, prompt, "prefers light colors")
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(t.Context(), "", DefaultModel)
	assert.Error(t, err)
}
