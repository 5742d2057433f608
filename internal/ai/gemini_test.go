package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chat-studio/internal/model"
)

func geminiReply(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestGeminiComplete(t *testing.T) {
	var gotReq geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-pro:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(geminiReply("gemini says hi"))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key")
	client.baseURL = server.URL

	text, err := client.Complete(context.Background(), "gemini-1.5-pro", ChatRequest{
		Prompt: "hello",
		History: []model.ChatMessage{
			{Role: model.RoleUser, Content: "q1"},
			{Role: model.RoleAssistant, Content: "a1"},
		},
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "gemini says hi", text)

	require.Len(t, gotReq.Contents, 3)
	assert.Equal(t, "user", gotReq.Contents[0].Role)
	assert.Equal(t, "model", gotReq.Contents[1].Role)
	assert.Equal(t, "hello", gotReq.Contents[2].Parts[0].Text)
	require.NotNil(t, gotReq.GenerationConfig)
	assert.Equal(t, 0.7, gotReq.GenerationConfig.Temperature)
}

func TestGeminiCompleteInlineAttachments(t *testing.T) {
	var gotReq geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(geminiReply("ok"))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key")
	client.baseURL = server.URL

	_, err := client.Complete(context.Background(), "gemini-1.5-pro", ChatRequest{
		Prompt:    "what is in this image",
		ImageData: "aW1hZ2UtYnl0ZXM=",
	})
	require.NoError(t, err)

	require.Len(t, gotReq.Contents, 1)
	parts := gotReq.Contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/jpeg", parts[1].InlineData.MimeType)
	assert.Equal(t, "aW1hZ2UtYnl0ZXM=", parts[1].InlineData.Data)
}

func TestGeminiCompleteVertexConfig(t *testing.T) {
	var gotReq geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(geminiReply("ok"))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key")
	client.baseURL = server.URL

	_, err := client.CompleteVertex(context.Background(), "gemini-1.5-pro", ChatRequest{Prompt: "hi", Temperature: 0.9})
	require.NoError(t, err)

	require.NotNil(t, gotReq.GenerationConfig)
	assert.Equal(t, 0.4, gotReq.GenerationConfig.Temperature)
	require.NotNil(t, gotReq.GenerationConfig.TopP)
	assert.Equal(t, 0.8, *gotReq.GenerationConfig.TopP)
	assert.Len(t, gotReq.SafetySettings, 4)
}
