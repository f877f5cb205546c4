package models

import "time"

// RSVPStatus is an attendee's response to an event
type RSVPStatus string

const (
	RSVPStatusAttending RSVPStatus = "ATTENDING"
	RSVPStatusWaitlist  RSVPStatus = "WAITLIST"
	RSVPStatusDeclined  RSVPStatus = "DECLINED"
)

// EventAttendee records one user's RSVP to one event.
// The (event, user) pair is unique; re-adding a user updates the status.
type EventAttendee struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time  `json:"rsvp_time"`
	UpdatedAt  time.Time  `json:"updated_at"`
	EventID    uint       `gorm:"not null;uniqueIndex:idx_event_user" json:"event_id"`
	UserID     string     `gorm:"not null;size:32;uniqueIndex:idx_event_user" json:"user_id"`
	RSVPStatus RSVPStatus `gorm:"column:rsvp_status;type:varchar(20);not null;default:'ATTENDING'" json:"rsvp_status"`

	// Relationships
	User User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}
