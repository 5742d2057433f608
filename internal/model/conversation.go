package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Conversation is an ordered message history for one user and one model
// label. The message list is stored as a single JSON value, not normalized
// into rows; nothing queries by message content.
type Conversation struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Username    string         `gorm:"size:128;not null;index:idx_conv_user_model" json:"user"`
	Model       string         `gorm:"size:255;not null;index:idx_conv_user_model" json:"model"`
	Timestamp   time.Time      `gorm:"not null" json:"timestamp"`
	LastUpdated time.Time      `gorm:"not null;index" json:"last_updated"`
	Messages    datatypes.JSON `gorm:"type:jsonb" json:"messages"`
}

// DecodeMessages returns the parsed message list; nil on empty payload.
func (c *Conversation) DecodeMessages() ([]ChatMessage, error) {
	if len(c.Messages) == 0 {
		return nil, nil
	}
	var messages []ChatMessage
	if err := json.Unmarshal(c.Messages, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Conversation) SetMessages(messages []ChatMessage) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	c.Messages = datatypes.JSON(payload)
	return nil
}
