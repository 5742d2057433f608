package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

const (
	PartText  = "text"
	PartImage = "image"
	PartAudio = "audio"
)

// ChatMessage is one turn in a conversation. Content covers the common
// text-only case; multimodal turns carry typed parts instead.
type ChatMessage struct {
	Role    string        `json:"role"`
	Content string        `json:"content"`
	Parts   []MessagePart `json:"parts,omitempty"`
}

// MessagePart is one typed segment of a multimodal message. Data holds the
// base64 payload for image and audio parts.
type MessagePart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// ArchivedMessage is a flattened per-message audit row. Rows are written
// asynchronously by the archive worker and never read back by the
// application.
type ArchivedMessage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"size:36;not null;index" json:"conversation_id"`
	Username       string    `gorm:"size:128;not null;index" json:"username"`
	Model          string    `gorm:"size:255;not null" json:"model"`
	Role           string    `gorm:"size:16;not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
