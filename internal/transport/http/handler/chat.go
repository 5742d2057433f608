package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ai-chat-studio/internal/ai"
	"ai-chat-studio/internal/app"
	"ai-chat-studio/internal/transport/http/middleware"
	"ai-chat-studio/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type SendMessageRequest struct {
	ConversationID string  `json:"conversation_id"`
	NewChat        bool    `json:"new_chat"`
	Model          string  `json:"model"`
	Message        string  `json:"message"`
	ImageData      string  `json:"image_data"`
	ImageMimeType  string  `json:"image_mime_type"`
	AudioData      string  `json:"audio_data"`
	AudioMimeType  string  `json:"audio_mime_type"`
	Temperature    float64 `json:"temperature"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "not authenticated")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		Username:       user.Username,
		ConversationID: req.ConversationID,
		ForceNew:       req.NewChat,
		ModelLabel:     req.Model,
		Prompt:         req.Message,
		ImageData:      req.ImageData,
		ImageMimeType:  req.ImageMimeType,
		AudioData:      req.AudioData,
		AudioMimeType:  req.AudioMimeType,
		Temperature:    req.Temperature,
	})
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, gin.H{
		"conversation_id": result.ConversationID,
		"model":           result.ModelLabel,
		"reply":           result.Reply,
		"messages":        result.Messages,
	})
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "not authenticated")
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	convs, err := h.chatService.LoadRecent(c.Request.Context(), user.Username, limit)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.OK(c, gin.H{"conversations": convs})
}

func (h *ChatHandler) GetConversation(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "not authenticated")
		return
	}

	conv, err := h.chatService.Get(user.Username, c.Param("id"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.OK(c, conv)
}

// RecentForModel returns the user's latest conversation under the given
// model label, so switching models can resume where the user left off.
func (h *ChatHandler) RecentForModel(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "not authenticated")
		return
	}

	modelLabel := c.Query("model")
	if modelLabel == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "model is required")
		return
	}

	conv, err := h.chatService.MostRecentForModel(user.Username, modelLabel)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.OK(c, gin.H{"conversation": conv})
}

// ListModels returns the model label catalog.
func (h *ChatHandler) ListModels(c *gin.Context) {
	response.OK(c, gin.H{"models": ai.ModelOptions})
}
