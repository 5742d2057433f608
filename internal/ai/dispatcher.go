package ai

import (
	"context"
	"fmt"
	"net/http"

	"ai-chat-studio/internal/apperror"
)

// perplexityFallbackModels is tried in order when a Perplexity selection
// carries no call sign.
var perplexityFallbackModels = []string{
	"pplx-70b-online",
	"pplx-7b-online",
	"pplx-70b-chat",
	"pplx-7b-chat",
}

// Dispatcher routes a decoded ModelRef to exactly one provider client.
type Dispatcher struct {
	gemini     *GeminiClient
	openAI     *OpenAICompatibleClient
	anthropic  *AnthropicClient
	perplexity *OpenAICompatibleClient
}

type Keys struct {
	Gemini     string
	OpenAI     string
	Anthropic  string
	Perplexity string
}

func NewDispatcher(keys Keys) *Dispatcher {
	return &Dispatcher{
		gemini:     NewGeminiClient(keys.Gemini),
		openAI:     NewOpenAIClient(keys.OpenAI),
		anthropic:  NewAnthropicClient(keys.Anthropic),
		perplexity: NewPerplexityClient(keys.Perplexity),
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, ref ModelRef, req ChatRequest) (string, error) {
	switch ref.Provider {
	case ProviderGemini:
		return d.gemini.Complete(ctx, ref.ModelID, req)
	case ProviderVertex:
		return d.gemini.CompleteVertex(ctx, ref.ModelID, req)
	case ProviderOpenAI:
		return d.openAI.Complete(ctx, ref.ModelID, req)
	case ProviderAnthropic:
		return d.anthropic.Complete(ctx, ref.ModelID, req)
	case ProviderPerplexity:
		if ref.ModelID == "" {
			return d.perplexity.CompleteWithFallback(ctx, perplexityFallbackModels, req)
		}
		return d.perplexity.Complete(ctx, ref.ModelID, req)
	default:
		return "", fmt.Errorf("unknown provider %d", ref.Provider)
	}
}

// providerStatusError maps an HTTP status to the provider error taxonomy.
// The raw body goes into the wrapped error for logs, never to the user.
func providerStatusError(name string, status int, body []byte) error {
	switch {
	case status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return apperror.Wrap(apperror.KindProviderRateLimited, name+" rate limited the request",
			fmt.Errorf("status %d: %s", status, body))
	case status >= 500:
		return apperror.Wrap(apperror.KindProviderUnavailable, name+" is unavailable",
			fmt.Errorf("status %d: %s", status, body))
	default:
		return apperror.Wrap(apperror.KindProviderInvalidResponse, name+" rejected the request",
			fmt.Errorf("status %d: %s", status, body))
	}
}
