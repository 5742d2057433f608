package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-chat-studio/internal/transport/http/response"
	"ai-chat-studio/internal/tts"
)

type TTSHandler struct {
	client *tts.Client
}

type SynthesizeRequest struct {
	Text    string `json:"text" binding:"required,max=5000"`
	VoiceID string `json:"voice_id"`
	ModelID string `json:"model_id"`
}

func NewTTSHandler(client *tts.Client) *TTSHandler {
	return &TTSHandler{client: client}
}

// Synthesize returns the spoken text as MP3 bytes, not the JSON envelope.
func (h *TTSHandler) Synthesize(c *gin.Context) {
	if h.client == nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeProviderFailure, "text-to-speech is not configured")
		return
	}

	var req SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	audio, err := h.client.Synthesize(c.Request.Context(), req.Text, req.VoiceID, req.ModelID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", audio)
}
