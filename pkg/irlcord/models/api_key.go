package models

import "time"

// APIKey represents a key used by chat adapters and tools to call the HTTP API
type APIKey struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	KeyHash     string     `gorm:"not null" json:"-"`
	KeyPrefix   string     `gorm:"not null;index" json:"key_prefix"` // First few chars for lookup
	Description string     `json:"description"`
	LastUsedAt  *time.Time `json:"last_used_at"`
}
