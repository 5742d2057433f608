package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ai-chat-studio/internal/ai"
	"ai-chat-studio/internal/apperror"
	"ai-chat-studio/internal/model"
)

// ConversationStore persists conversations for one storage backend.
type ConversationStore interface {
	Save(conv *model.Conversation) error
	Get(username, id string) (*model.Conversation, error)
	LoadRecent(username string, limit int) ([]model.Conversation, error)
	MostRecentForModel(username, modelLabel string) (*model.Conversation, error)
}

// HistoryCache is an optional read-through cache for the recent
// conversation list. A nil cache disables caching.
type HistoryCache interface {
	GetRecent(ctx context.Context, username string) ([]model.Conversation, bool, error)
	SetRecent(ctx context.Context, username string, convs []model.Conversation) error
	Invalidate(ctx context.Context, username string) error
}

// MessageArchiver publishes messages to the async archive pipeline.
// A nil archiver disables archiving.
type MessageArchiver interface {
	Publish(ctx context.Context, msg model.ArchivedMessage) error
}

// ModelDispatcher routes a chat request to the provider behind a model ref.
type ModelDispatcher interface {
	Dispatch(ctx context.Context, ref ai.ModelRef, req ai.ChatRequest) (string, error)
}

type ChatService struct {
	convs      ConversationStore
	cache      HistoryCache
	archiver   MessageArchiver
	dispatcher ModelDispatcher
	logger     *zap.Logger
}

type SendMessageInput struct {
	Username       string
	ConversationID string
	// ForceNew starts a fresh conversation even when a recent one exists
	// for the model.
	ForceNew   bool
	ModelLabel string
	Prompt         string
	ImageData      string // base64
	ImageMimeType  string
	AudioData      string // base64
	AudioMimeType  string
	Temperature    float64
}

type SendMessageResult struct {
	ConversationID string
	ModelLabel     string
	Reply          string
	Messages       []model.ChatMessage
}

func NewChatService(convs ConversationStore, cache HistoryCache, archiver MessageArchiver, dispatcher ModelDispatcher, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		convs:      convs,
		cache:      cache,
		archiver:   archiver,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SendMessage dispatches the prompt to the model named by the label,
// appends both turns to the conversation and saves it synchronously.
// The reply is returned only after the save succeeds.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" && len(input.ImageData) == 0 && len(input.AudioData) == 0 {
		return nil, apperror.Validation("message is empty")
	}
	if input.Username == "" {
		return nil, apperror.Validation("username is required")
	}

	ref := ai.ParseModelLabel(input.ModelLabel)

	conv, history, err := s.resolveConversation(input)
	if err != nil {
		return nil, err
	}

	reply, err := s.dispatcher.Dispatch(ctx, ref, ai.ChatRequest{
		Prompt:        prompt,
		History:       history,
		ImageData:     input.ImageData,
		ImageMimeType: input.ImageMimeType,
		AudioData:     input.AudioData,
		AudioMimeType: input.AudioMimeType,
		Temperature:   input.Temperature,
	})
	if err != nil {
		return nil, err
	}

	userMsg := model.ChatMessage{Role: model.RoleUser, Content: prompt}
	userMsg.Parts = attachmentParts(prompt, input)
	assistantMsg := model.ChatMessage{Role: model.RoleAssistant, Content: reply}
	history = append(history, userMsg, assistantMsg)

	now := time.Now().UTC()
	conv.Model = input.ModelLabel
	conv.LastUpdated = now
	if err := conv.SetMessages(history); err != nil {
		return nil, err
	}
	if err := s.convs.Save(conv); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, input.Username)
	s.archive(ctx, conv, input.Username, userMsg, assistantMsg)

	return &SendMessageResult{
		ConversationID: conv.ID,
		ModelLabel:     conv.Model,
		Reply:          reply,
		Messages:       history,
	}, nil
}

// resolveConversation loads the addressed conversation. With no ID it
// continues the user's most recent conversation for the model, or starts a
// new one when none exists or ForceNew is set.
func (s *ChatService) resolveConversation(input SendMessageInput) (*model.Conversation, []model.ChatMessage, error) {
	var conv *model.Conversation
	var err error

	switch {
	case input.ConversationID != "":
		conv, err = s.convs.Get(input.Username, input.ConversationID)
		if err != nil {
			return nil, nil, err
		}
		if conv == nil {
			return nil, nil, apperror.NotFound("conversation")
		}
	case !input.ForceNew:
		conv, err = s.convs.MostRecentForModel(input.Username, input.ModelLabel)
		if err != nil {
			return nil, nil, err
		}
	}

	if conv == nil {
		now := time.Now().UTC()
		return &model.Conversation{
			ID:        uuid.NewString(),
			Username:  input.Username,
			Model:     input.ModelLabel,
			Timestamp: now,
		}, nil, nil
	}

	history, err := conv.DecodeMessages()
	if err != nil {
		return nil, nil, err
	}
	return conv, history, nil
}

// LoadRecent returns the user's most recent conversations, newest first.
func (s *ChatService) LoadRecent(ctx context.Context, username string, limit int) ([]model.Conversation, error) {
	if s.cache != nil {
		cached, hit, err := s.cache.GetRecent(ctx, username)
		if err != nil {
			s.logger.Warn("history cache read failed", zap.String("username", username), zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	convs, err := s.convs.LoadRecent(username, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetRecent(ctx, username, convs); err != nil {
			s.logger.Warn("history cache write failed", zap.String("username", username), zap.Error(err))
		}
	}
	return convs, nil
}

// Get returns a single conversation with its full message history.
func (s *ChatService) Get(username, id string) (*model.Conversation, error) {
	conv, err := s.convs.Get(username, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperror.NotFound("conversation")
	}
	return conv, nil
}

// MostRecentForModel returns the latest conversation held under the given
// model label, or nil when the user has none.
func (s *ChatService) MostRecentForModel(username, modelLabel string) (*model.Conversation, error) {
	return s.convs.MostRecentForModel(username, modelLabel)
}

func (s *ChatService) invalidateCache(ctx context.Context, username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, username); err != nil {
		s.logger.Warn("history cache invalidate failed", zap.String("username", username), zap.Error(err))
	}
}

// archive publishes both turns to the audit queue. Failures are logged
// and never surface to the caller.
func (s *ChatService) archive(ctx context.Context, conv *model.Conversation, username string, msgs ...model.ChatMessage) {
	if s.archiver == nil {
		return
	}
	for _, msg := range msgs {
		rec := model.ArchivedMessage{
			ConversationID: conv.ID,
			Username:       username,
			Model:          conv.Model,
			Role:           msg.Role,
			Content:        msg.Content,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.archiver.Publish(ctx, rec); err != nil {
			s.logger.Warn("archive publish failed",
				zap.String("conversation_id", conv.ID),
				zap.String("role", msg.Role),
				zap.Error(err))
		}
	}
}

func attachmentParts(prompt string, input SendMessageInput) []model.MessagePart {
	if len(input.ImageData) == 0 && len(input.AudioData) == 0 {
		return nil
	}
	parts := make([]model.MessagePart, 0, 3)
	if prompt != "" {
		parts = append(parts, model.MessagePart{Type: model.PartText, Text: prompt})
	}
	if len(input.ImageData) > 0 {
		parts = append(parts, model.MessagePart{Type: model.PartImage, Data: input.ImageData, MimeType: input.ImageMimeType})
	}
	if len(input.AudioData) > 0 {
		parts = append(parts, model.MessagePart{Type: model.PartAudio, Data: input.AudioData, MimeType: input.AudioMimeType})
	}
	return parts
}
