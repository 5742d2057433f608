// Package tts wraps the ElevenLabs text-to-speech REST API.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-chat-studio/internal/apperror"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM" // Rachel
	DefaultModelID = "eleven_multilingual_v2"

	stability       = 0.5
	similarityBoost = 0.75
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    elevenLabsBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Synthesize converts text to MP3 audio. Empty voiceID/modelID select the
// defaults.
func (c *Client) Synthesize(ctx context.Context, text, voiceID, modelID string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, apperror.New(apperror.KindProviderUnavailable, "elevenlabs api key is not configured")
	}
	if text == "" {
		return nil, apperror.Validation("text is required")
	}
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	if modelID == "" {
		modelID = DefaultModelID
	}

	payload, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": modelID,
		"voice_settings": map[string]any{
			"stability":        stability,
			"similarity_boost": similarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tts request failed: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build tts request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindProviderUnavailable, "tts request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperror.New(apperror.KindProviderRateLimited, "elevenlabs rate limited the request")
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, apperror.Wrap(apperror.KindProviderUnavailable, "elevenlabs rejected the request",
			fmt.Errorf("status %d: %s", resp.StatusCode, raw))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindProviderInvalidResponse, "read tts audio failed", err)
	}
	return audio, nil
}
