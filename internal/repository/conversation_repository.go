package repository

import (
	"errors"

	"gorm.io/gorm"

	"ai-chat-studio/internal/apperror"
	"ai-chat-studio/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Save inserts the conversation or overwrites an existing row with the same
// id. The caller owns id generation and the last_updated bump.
func (r *ConversationRepository) Save(conv *model.Conversation) error {
	if err := r.db.Save(conv).Error; err != nil {
		return apperror.Wrap(apperror.KindStorageUnavailable, "save conversation failed", err)
	}
	return nil
}

func (r *ConversationRepository) Get(username, id string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.Where("id = ? AND username = ?", id, username).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, "query conversation failed", err)
	}
	return &conv, nil
}

func (r *ConversationRepository) LoadRecent(username string, limit int) ([]model.Conversation, error) {
	if limit <= 0 {
		limit = 10
	}

	var conversations []model.Conversation
	err := r.db.Where("username = ?", username).
		Order("last_updated DESC").
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, "load recent conversations failed", err)
	}
	return conversations, nil
}

func (r *ConversationRepository) MostRecentForModel(username, modelLabel string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.Where("username = ? AND model = ?", username, modelLabel).
		Order("last_updated DESC").
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, "query most recent conversation failed", err)
	}
	return &conv, nil
}
