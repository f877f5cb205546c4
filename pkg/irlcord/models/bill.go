package models

import "time"

// Bill is one user's share of an event's costs
type Bill struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	UserID    string    `gorm:"not null;size:32" json:"user_id"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Paid      bool      `gorm:"default:false" json:"paid"`

	// Relationships
	User User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}
