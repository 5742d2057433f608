package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-chat-studio/internal/apperror"
	"ai-chat-studio/internal/model"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
)

type AnthropicClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     apiKey,
		baseURL:    anthropicBaseURL,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Complete sends the conversation to the Messages API. Anthropic runs with
// its fixed default sampling; temperature is not forwarded.
func (c *AnthropicClient) Complete(ctx context.Context, modelID string, req ChatRequest) (string, error) {
	if c.apiKey == "" {
		return "", apperror.New(apperror.KindProviderUnavailable, "anthropic api key is not configured")
	}

	messages := make([]chatCompletionMessage, 0, len(req.History)+1)
	for _, msg := range req.History {
		role := model.RoleUser
		if msg.Role == model.RoleAssistant {
			role = model.RoleAssistant
		}
		messages = append(messages, chatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, chatCompletionMessage{Role: model.RoleUser, Content: req.Prompt})

	payload, err := json.Marshal(map[string]any{
		"model":      modelID,
		"messages":   messages,
		"max_tokens": 1000,
	})
	if err != nil {
		return "", fmt.Errorf("marshal anthropic request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build anthropic request failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperror.Wrap(apperror.KindProviderUnavailable, "anthropic request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperror.Wrap(apperror.KindProviderUnavailable, "read anthropic response failed", err)
	}
	if err := providerStatusError("anthropic", resp.StatusCode, raw); err != nil {
		return "", err
	}

	var parsed struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", apperror.Wrap(apperror.KindProviderInvalidResponse, "parse anthropic response failed", err)
	}
	if len(parsed.Content) == 0 {
		return "", apperror.New(apperror.KindProviderInvalidResponse, "anthropic returned no content")
	}
	return parsed.Content[0].Text, nil
}
