package repository

import (
	"errors"

	"gorm.io/gorm"

	"ai-chat-studio/internal/apperror"
	"ai-chat-studio/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *model.AuthSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return apperror.Wrap(apperror.KindStorageUnavailable, "create session failed", err)
	}
	return nil
}

func (r *SessionRepository) GetByToken(token string) (*model.AuthSession, error) {
	var session model.AuthSession
	if err := r.db.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, "query session by token failed", err)
	}
	return &session, nil
}

func (r *SessionRepository) DeleteByToken(token string) error {
	if err := r.db.Where("token = ?", token).Delete(&model.AuthSession{}).Error; err != nil {
		return apperror.Wrap(apperror.KindStorageUnavailable, "delete session failed", err)
	}
	return nil
}

func (r *SessionRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.AuthSession{}).Error; err != nil {
		return apperror.Wrap(apperror.KindStorageUnavailable, "delete user sessions failed", err)
	}
	return nil
}
