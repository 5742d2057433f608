package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModelLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  ModelRef
	}{
		{
			name:  "gemini with call sign",
			label: "Gemini - 2.0 Flash (gemini-2.0-flash-001)",
			want:  ModelRef{Provider: ProviderGemini, ModelID: "gemini-2.0-flash-001"},
		},
		{
			name:  "gemini without call sign",
			label: "Gemini Pro",
			want:  ModelRef{Provider: ProviderGemini, ModelID: DefaultGeminiModel},
		},
		{
			name:  "anthropic with call sign",
			label: "Anthropic - Claude 3.5 Sonnet (claude-3-5-sonnet-20241022)",
			want:  ModelRef{Provider: ProviderAnthropic, ModelID: "claude-3-5-sonnet-20241022"},
		},
		{
			name:  "bare claude routes to anthropic",
			label: "Claude 3 Opus (claude-3-opus-20240229)",
			want:  ModelRef{Provider: ProviderAnthropic, ModelID: "claude-3-opus-20240229"},
		},
		{
			name:  "openai",
			label: "OpenAI - GPT-4o (gpt-4o)",
			want:  ModelRef{Provider: ProviderOpenAI, ModelID: "gpt-4o"},
		},
		{
			name:  "vertex claude reroutes to anthropic",
			label: "Vertex AI - Claude 3.5 Sonnet (claude-3-5-sonnet-20241022)",
			want:  ModelRef{Provider: ProviderAnthropic, ModelID: "claude-3-5-sonnet-20241022"},
		},
		{
			name:  "vertex gpt reroutes to openai",
			label: "Vertex AI - GPT-4o (gpt-4o)",
			want:  ModelRef{Provider: ProviderOpenAI, ModelID: "gpt-4o"},
		},
		{
			name:  "vertex gemini stays on vertex",
			label: "Vertex AI - Gemini (gemini-1.5-pro-001)",
			want:  ModelRef{Provider: ProviderVertex, ModelID: "gemini-1.5-pro-001"},
		},
		{
			name:  "perplexity",
			label: "Perplexity - 70B Online (pplx-70b-online)",
			want:  ModelRef{Provider: ProviderPerplexity, ModelID: "pplx-70b-online"},
		},
		{
			name:  "unknown label falls back to default gemini",
			label: "Mystery Model X",
			want:  ModelRef{Provider: ProviderGemini, ModelID: DefaultGeminiModel},
		},
		{
			name:  "empty label falls back to default gemini",
			label: "",
			want:  ModelRef{Provider: ProviderGemini, ModelID: DefaultGeminiModel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseModelLabel(tt.label))
		})
	}
}

func TestModelOptionsAllParse(t *testing.T) {
	for _, label := range ModelOptions {
		ref := ParseModelLabel(label)
		assert.NotEmpty(t, ref.ModelID, "label %q produced an empty model id", label)
	}
}
