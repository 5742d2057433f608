package model

import "time"

// AuthSession is an opaque bearer credential. The token itself carries no
// claims; it is only a lookup key into this table.
type AuthSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"size:255;not null;uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

func (s *AuthSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// UserSummary is the identity resolved from a valid session token.
type UserSummary struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
}
