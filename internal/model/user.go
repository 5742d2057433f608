package model

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:128;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:255;index" json:"email"`
	DisplayName  string    `gorm:"size:255" json:"display_name"`
	AvatarURL    string    `gorm:"type:text" json:"avatar_url,omitempty"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
