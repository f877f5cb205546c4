package models

import "time"

// ApprovalMode governs whether new events start pending or approved
type ApprovalMode string

const (
	ApprovalModeNone   ApprovalMode = "none"
	ApprovalModePublic ApprovalMode = "public"
	ApprovalModeAll    ApprovalMode = "all"
)

// AttendeeMode governs who manages an event's attendee list
type AttendeeMode string

const (
	AttendeeModeHost AttendeeMode = "host"
	AttendeeModeSelf AttendeeMode = "self"
)

// ApprovalModes lists the accepted approval modes in display order
var ApprovalModes = []ApprovalMode{ApprovalModeNone, ApprovalModePublic, ApprovalModeAll}

// AttendeeModes lists the accepted attendee management modes in display order
var AttendeeModes = []AttendeeMode{AttendeeModeHost, AttendeeModeSelf}

// Group represents a sub-community bound to one chat channel
type Group struct {
	ID                          uint         `gorm:"primarykey" json:"id"`
	CreatedAt                   time.Time    `json:"created_at"`
	UpdatedAt                   time.Time    `json:"updated_at"`
	Name                        string       `gorm:"uniqueIndex;not null" json:"name"`
	Description                 string       `json:"description"`
	ChannelID                   string       `gorm:"index" json:"channel_id"`
	IsOpen                      bool         `json:"is_open"`
	NewMembersCanCreateEvents   bool         `json:"new_members_can_create_events"`
	EventApprovalMode           ApprovalMode `gorm:"type:varchar(20);default:'public'" json:"event_approval_mode"`
	EventAttendeeManagementMode AttendeeMode `gorm:"type:varchar(20);default:'host'" json:"event_attendee_management_mode"`
	ContributorEventsRequired   *int         `json:"contributor_events_required,omitempty"`

	// Relationships
	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Events  []Event       `gorm:"foreignKey:GroupID" json:"events,omitempty"`
}
