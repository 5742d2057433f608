package repository

import (
	"gorm.io/gorm"

	"ai-chat-studio/internal/apperror"
	"ai-chat-studio/internal/model"
)

type ArchiveRepository struct {
	db *gorm.DB
}

func NewArchiveRepository(db *gorm.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

func (r *ArchiveRepository) Create(msg *model.ArchivedMessage) error {
	if err := r.db.Create(msg).Error; err != nil {
		return apperror.Wrap(apperror.KindStorageUnavailable, "archive message failed", err)
	}
	return nil
}
