package models

import "time"

// User represents a chat-platform user known to the bot.
// Users are created lazily the first time they join or create a group.
type User struct {
	UserID              string    `gorm:"primaryKey;size:32" json:"user_id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	PaymentHandle       string    `json:"payment_handle"`
	DietaryRestrictions string    `json:"dietary_restrictions"`
	Email               string    `json:"email"`

	// Relationships
	GroupMemberships []GroupMember `gorm:"foreignKey:UserID" json:"group_memberships,omitempty"`
}
