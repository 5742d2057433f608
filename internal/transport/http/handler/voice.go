package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-chat-studio/internal/transport/http/response"
	"ai-chat-studio/internal/voice"
)

type VoiceHandler struct {
	processor *voice.Processor
}

type VoiceCommandRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

func NewVoiceHandler(processor *voice.Processor) *VoiceHandler {
	return &VoiceHandler{processor: processor}
}

// Command resolves a transcript against the phrase table and enqueues the
// matched command. Unrecognized transcripts are reported, not errors.
func (h *VoiceHandler) Command(c *gin.Context) {
	var req VoiceCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	cmd, ok := voice.Resolve(req.Transcript)
	if !ok {
		response.OK(c, gin.H{"matched": false})
		return
	}

	queued := h.processor.Submit(req.Transcript)
	response.OK(c, gin.H{
		"matched": true,
		"queued":  queued,
		"action":  cmd.Action,
		"payload": cmd.Payload,
	})
}
