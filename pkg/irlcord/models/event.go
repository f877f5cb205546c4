package models

import "time"

// EventStatus is the approval state of an event
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// Event represents a scheduled meetup owned by a group and bound to a discussion thread
type Event struct {
	ID              uint        `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	GroupID         uint        `gorm:"not null;index" json:"group_id"`
	HostID          string      `gorm:"not null;size:32" json:"host_id"`
	Name            string      `gorm:"not null" json:"name"`
	Description     string      `json:"description"`
	DateTime        time.Time   `gorm:"not null;index" json:"date_time"`
	LocationName    string      `json:"location_name"`
	LocationAddress string      `json:"location_address"`
	MaxAttendees    *int        `json:"max_attendees,omitempty"`
	IsPublic        bool        `json:"is_public"`
	Status          EventStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ThreadID        string      `gorm:"index" json:"thread_id"`

	// Relationships
	Group     Group           `gorm:"foreignKey:GroupID" json:"-"`
	Attendees []EventAttendee `gorm:"foreignKey:EventID" json:"attendees,omitempty"`
}
