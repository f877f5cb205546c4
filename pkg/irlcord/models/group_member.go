package models

import "time"

// GroupMember represents the membership of a user in a group
type GroupMember struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"updated_at"`
	GroupID   uint      `gorm:"not null;uniqueIndex:idx_group_user" json:"group_id"`
	UserID    string    `gorm:"not null;size:32;uniqueIndex:idx_group_user" json:"user_id"`
	IsLeader  bool      `gorm:"default:false" json:"is_leader"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}
