package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-chat-studio/internal/apperror"
	"ai-chat-studio/internal/model"
)

const (
	openAIBaseURL     = "https://api.openai.com/v1"
	perplexityBaseURL = "https://api.perplexity.ai"
)

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
	Temperature *float64                `json:"temperature,omitempty"`
	TopP        *float64                `json:"top_p,omitempty"`
	Stream      bool                    `json:"stream"`
}

// OpenAICompatibleClient speaks the chat-completions dialect shared by
// OpenAI and Perplexity.
type OpenAICompatibleClient struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAICompatibleClient {
	return &OpenAICompatibleClient{
		name:       "openai",
		baseURL:    openAIBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

func NewPerplexityClient(apiKey string) *OpenAICompatibleClient {
	return &OpenAICompatibleClient{
		name:       "perplexity",
		baseURL:    perplexityBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Complete sends the conversation to the given model. Image and audio
// attachments are ignored here; only the Gemini models accept inline media.
func (c *OpenAICompatibleClient) Complete(ctx context.Context, modelID string, req ChatRequest) (string, error) {
	if c.apiKey == "" {
		return "", apperror.New(apperror.KindProviderUnavailable, c.name+" api key is not configured")
	}

	body := chatCompletionRequest{
		Model:     modelID,
		Messages:  c.buildMessages(req),
		MaxTokens: 800,
	}
	if c.name == "perplexity" {
		temp := req.Temperature
		topP := 0.9
		body.MaxTokens = 1000
		body.Temperature = &temp
		body.TopP = &topP
	}
	return c.complete(ctx, body)
}

// CompleteWithFallback tries the given models in order and returns the first
// success. Used by the Perplexity path, where model availability rotates.
func (c *OpenAICompatibleClient) CompleteWithFallback(ctx context.Context, modelIDs []string, req ChatRequest) (string, error) {
	var lastErr error
	for _, id := range modelIDs {
		text, err := c.Complete(ctx, id, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = apperror.New(apperror.KindProviderUnavailable, c.name+" has no models to try")
	}
	return "", lastErr
}

func (c *OpenAICompatibleClient) buildMessages(req ChatRequest) []chatCompletionMessage {
	messages := make([]chatCompletionMessage, 0, len(req.History)+2)
	if c.name == "perplexity" {
		messages = append(messages, chatCompletionMessage{
			Role:    model.RoleSystem,
			Content: "You are a helpful, accurate AI assistant. Provide detailed and informative responses.",
		})
	}
	for _, msg := range req.History {
		role := model.RoleUser
		if msg.Role == model.RoleAssistant {
			role = model.RoleAssistant
		}
		messages = append(messages, chatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, chatCompletionMessage{Role: model.RoleUser, Content: req.Prompt})
	return messages
}

func (c *OpenAICompatibleClient) complete(ctx context.Context, body chatCompletionRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal %s request failed: %w", c.name, err)
	}

	url := strings.TrimRight(c.baseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build %s request failed: %w", c.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperror.Wrap(apperror.KindProviderUnavailable, c.name+" request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperror.Wrap(apperror.KindProviderUnavailable, "read "+c.name+" response failed", err)
	}
	if err := providerStatusError(c.name, resp.StatusCode, raw); err != nil {
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", apperror.Wrap(apperror.KindProviderInvalidResponse, "parse "+c.name+" response failed", err)
	}
	if len(parsed.Choices) == 0 {
		return "", apperror.New(apperror.KindProviderInvalidResponse, c.name+" returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
