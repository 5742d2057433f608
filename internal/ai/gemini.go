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

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Generative Language REST API. The same client
// serves the Vertex AI label, which only differs in its fixed conservative
// generation config.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    geminiBaseURL,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64  `json:"temperature"`
	TopP            *float64 `json:"topP,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []geminiSafetySetting   `json:"safetySettings,omitempty"`
}

// Complete sends the conversation to the given Gemini model and returns the
// response text.
func (c *GeminiClient) Complete(ctx context.Context, modelID string, req ChatRequest) (string, error) {
	if c.apiKey == "" {
		return "", apperror.New(apperror.KindProviderUnavailable, "gemini api key is not configured")
	}

	body := geminiRequest{
		Contents: c.buildContents(req),
		GenerationConfig: &geminiGenerationConfig{
			Temperature: req.Temperature,
		},
	}
	return c.generate(ctx, modelID, body)
}

// CompleteVertex mirrors the legacy Vertex AI path: same endpoint, fixed
// conservative generation config and medium-and-above safety blocking.
func (c *GeminiClient) CompleteVertex(ctx context.Context, modelID string, req ChatRequest) (string, error) {
	if c.apiKey == "" {
		return "", apperror.New(apperror.KindProviderUnavailable, "gemini api key is not configured")
	}

	topP := 0.8
	topK := 40
	maxTokens := 2048
	body := geminiRequest{
		Contents: c.buildContents(req),
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     0.4,
			TopP:            &topP,
			TopK:            &topK,
			MaxOutputTokens: &maxTokens,
		},
		SafetySettings: []geminiSafetySetting{
			{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
			{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
			{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
			{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
		},
	}
	return c.generate(ctx, modelID, body)
}

// buildContents maps chat history to Gemini's content format. Gemini names
// the assistant role "model". Inline image/audio data rides on the final
// user turn.
func (c *GeminiClient) buildContents(req ChatRequest) []geminiContent {
	contents := make([]geminiContent, 0, len(req.History)+1)
	for _, msg := range req.History {
		role := "user"
		if msg.Role == model.RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	parts := []geminiPart{{Text: req.Prompt}}
	if req.ImageData != "" {
		mime := req.ImageMimeType
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: mime, Data: req.ImageData}})
	}
	if req.AudioData != "" {
		mime := req.AudioMimeType
		if mime == "" {
			mime = "audio/wav"
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: mime, Data: req.AudioData}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: parts})
	return contents
}

func (c *GeminiClient) generate(ctx context.Context, modelID string, body geminiRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request failed: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, modelID, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build gemini request failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperror.Wrap(apperror.KindProviderUnavailable, "gemini request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperror.Wrap(apperror.KindProviderUnavailable, "read gemini response failed", err)
	}
	if err := providerStatusError("gemini", resp.StatusCode, raw); err != nil {
		return "", err
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", apperror.Wrap(apperror.KindProviderInvalidResponse, "parse gemini response failed", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", apperror.New(apperror.KindProviderInvalidResponse, "gemini returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
