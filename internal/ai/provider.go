package ai

import (
	"regexp"
	"strings"

	"ai-chat-studio/internal/model"
)

type Provider int

const (
	ProviderGemini Provider = iota
	ProviderVertex
	ProviderOpenAI
	ProviderAnthropic
	ProviderPerplexity
)

func (p Provider) String() string {
	switch p {
	case ProviderGemini:
		return "gemini"
	case ProviderVertex:
		return "vertex"
	case ProviderOpenAI:
		return "openai"
	case ProviderAnthropic:
		return "anthropic"
	case ProviderPerplexity:
		return "perplexity"
	default:
		return "unknown"
	}
}

const (
	DefaultGeminiModel     = "gemini-1.5-pro"
	DefaultOpenAIModel     = "gpt-4o"
	DefaultAnthropicModel  = "claude-3-5-sonnet-20241022"
	DefaultPerplexityModel = "pplx-70b-online"
)

// ModelRef is a decoded model selection. Labels are parsed exactly once, at
// selection time; everything downstream routes on this pair.
type ModelRef struct {
	Provider Provider
	ModelID  string
}

// ModelOptions is the catalog of selectable display labels, each carrying
// its concrete call sign in parentheses.
var ModelOptions = []string{
	"Gemini - 2.5 Pro (gemini-2.5-pro-preview-03-25)",
	"Gemini - 2.0 Flash (gemini-2.0-flash-001)",
	"Gemini - 2.0 Flash-Lite (gemini-2.0-flash-lite-001)",
	"Gemini - 1.5 Pro (gemini-1.5-pro-001)",
	"Gemini - 1.5 Flash (gemini-1.5-flash-001)",
	"Gemini - 1.5 Flash-8B (gemini-1.5-flash-8b-001)",
	"Vertex AI - Claude 3.5 Sonnet (claude-3-5-sonnet-20241022)",
	"Vertex AI - Claude 3 Opus (claude-3-opus-20240229)",
	"Vertex AI - GPT-4o (gpt-4o)",
	"OpenAI - GPT-4o (gpt-4o)",
	"Anthropic - Claude 3.5 Sonnet (claude-3-5-sonnet-20241022)",
	"Anthropic - Claude 3 Opus (claude-3-opus-20240229)",
	"Perplexity - 70B Online (pplx-70b-online)",
	"Perplexity - 7B Online (pplx-7b-online)",
	"Perplexity - 70B Chat (pplx-70b-chat)",
}

var callSignPattern = regexp.MustCompile(`\(([^()]+)\)\s*$`)

// ParseModelLabel decodes a free-text model label into a ModelRef. The
// parenthesized call sign, when present, names the concrete model id;
// otherwise the provider default applies. Labels that match no known
// provider fall back to the default Gemini model.
func ParseModelLabel(label string) ModelRef {
	lower := strings.ToLower(label)
	callSign := ""
	if m := callSignPattern.FindStringSubmatch(strings.TrimSpace(label)); m != nil {
		callSign = strings.TrimSpace(m[1])
	}

	pick := func(fallback string) string {
		if callSign != "" {
			return callSign
		}
		return fallback
	}

	switch {
	case strings.Contains(lower, "vertex ai"):
		// Vertex labels can carry Claude or GPT call signs; those route to
		// the native provider clients.
		switch {
		case strings.Contains(lower, "claude"):
			return ModelRef{Provider: ProviderAnthropic, ModelID: pick(DefaultAnthropicModel)}
		case strings.Contains(lower, "gpt"):
			return ModelRef{Provider: ProviderOpenAI, ModelID: pick(DefaultOpenAIModel)}
		default:
			return ModelRef{Provider: ProviderVertex, ModelID: pick(DefaultGeminiModel)}
		}
	case strings.Contains(lower, "gemini"):
		return ModelRef{Provider: ProviderGemini, ModelID: pick(DefaultGeminiModel)}
	case strings.Contains(lower, "openai"), strings.Contains(lower, "gpt"):
		return ModelRef{Provider: ProviderOpenAI, ModelID: pick(DefaultOpenAIModel)}
	case strings.Contains(lower, "anthropic"), strings.Contains(lower, "claude"):
		return ModelRef{Provider: ProviderAnthropic, ModelID: pick(DefaultAnthropicModel)}
	case strings.Contains(lower, "perplexity"):
		return ModelRef{Provider: ProviderPerplexity, ModelID: pick(DefaultPerplexityModel)}
	default:
		return ModelRef{Provider: ProviderGemini, ModelID: pick(DefaultGeminiModel)}
	}
}

// ChatRequest is one dispatch: the current prompt, prior history and
// optional inline attachments. Temperature is forwarded only to providers
// that support it.
type ChatRequest struct {
	Prompt        string
	History       []model.ChatMessage
	ImageData     string // base64
	ImageMimeType string
	AudioData     string // base64
	AudioMimeType string
	Temperature   float64
}
