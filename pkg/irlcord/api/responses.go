package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/azlyth/irlcord/pkg/irlcord/errs"
	"github.com/azlyth/irlcord/pkg/irlcord/models"
)

const timestampLayout = time.RFC3339

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID                          uint   `json:"id"`
	Name                        string `json:"name"`
	Description                 string `json:"description"`
	ChannelID                   string `json:"channel_id"`
	IsOpen                      bool   `json:"is_open"`
	NewMembersCanCreateEvents   bool   `json:"new_members_can_create_events"`
	EventApprovalMode           string `json:"event_approval_mode"`
	EventAttendeeManagementMode string `json:"event_attendee_management_mode"`
	ContributorEventsRequired   *int   `json:"contributor_events_required,omitempty"`
	CreatedAt                   string `json:"created_at"`
}

// MemberResponse represents a group member in API responses
type MemberResponse struct {
	UserID   string `json:"user_id"`
	IsLeader bool   `json:"is_leader"`
	JoinedAt string `json:"joined_at"`
}

// GroupDetailResponse is a group with its members
type GroupDetailResponse struct {
	GroupResponse
	Members []MemberResponse `json:"members"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID              uint   `json:"id"`
	GroupID         uint   `json:"group_id"`
	HostID          string `json:"host_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DateTime        string `json:"date_time"`
	LocationName    string `json:"location_name"`
	LocationAddress string `json:"location_address"`
	MaxAttendees    *int   `json:"max_attendees,omitempty"`
	IsPublic        bool   `json:"is_public"`
	Status          string `json:"status"`
	ThreadID        string `json:"thread_id"`
}

// AttendeeResponse represents an RSVP in API responses
type AttendeeResponse struct {
	UserID     string `json:"user_id"`
	RSVPStatus string `json:"rsvp_status"`
	RSVPTime   string `json:"rsvp_time"`
}

// EventDetailResponse is an event with its attendees
type EventDetailResponse struct {
	EventResponse
	Attendees []AttendeeResponse `json:"attendees"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID            uint    `json:"id"`
	EventID       uint    `json:"event_id"`
	UserID        string  `json:"user_id"`
	Amount        float64 `json:"amount"`
	Paid          bool    `json:"paid"`
	PaymentHandle string  `json:"payment_handle,omitempty"`
}

func groupToResponse(g models.Group) GroupResponse {
	return GroupResponse{
		ID:                          g.ID,
		Name:                        g.Name,
		Description:                 g.Description,
		ChannelID:                   g.ChannelID,
		IsOpen:                      g.IsOpen,
		NewMembersCanCreateEvents:   g.NewMembersCanCreateEvents,
		EventApprovalMode:           string(g.EventApprovalMode),
		EventAttendeeManagementMode: string(g.EventAttendeeManagementMode),
		ContributorEventsRequired:   g.ContributorEventsRequired,
		CreatedAt:                   g.CreatedAt.UTC().Format(timestampLayout),
	}
}

func memberToResponse(m models.GroupMember) MemberResponse {
	return MemberResponse{
		UserID:   m.UserID,
		IsLeader: m.IsLeader,
		JoinedAt: m.CreatedAt.UTC().Format(timestampLayout),
	}
}

func (h *Handler) eventToResponse(e models.Event) EventResponse {
	return EventResponse{
		ID:              e.ID,
		GroupID:         e.GroupID,
		HostID:          e.HostID,
		Name:            e.Name,
		Description:     e.Description,
		DateTime:        e.DateTime.In(h.loc).Format(timestampLayout),
		LocationName:    e.LocationName,
		LocationAddress: e.LocationAddress,
		MaxAttendees:    e.MaxAttendees,
		IsPublic:        e.IsPublic,
		Status:          string(e.Status),
		ThreadID:        e.ThreadID,
	}
}

func attendeeToResponse(a models.EventAttendee) AttendeeResponse {
	return AttendeeResponse{
		UserID:     a.UserID,
		RSVPStatus: string(a.RSVPStatus),
		RSVPTime:   a.CreatedAt.UTC().Format(timestampLayout),
	}
}

func billToResponse(b models.Bill) BillResponse {
	return BillResponse{
		ID:            b.ID,
		EventID:       b.EventID,
		UserID:        b.UserID,
		Amount:        b.Amount,
		Paid:          b.Paid,
		PaymentHandle: b.User.PaymentHandle,
	}
}

// statusFor maps an error code to an HTTP status
func statusFor(code errs.Code) int {
	switch code {
	case errs.CodeNotFound:
		return http.StatusNotFound
	case errs.CodePermissionDenied, errs.CodeForbidden:
		return http.StatusForbidden
	case errs.CodeRepositoryFailure, errs.CodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// respondError writes err as a JSON error body. Internal failures are logged
// and hidden from the caller.
func (h *Handler) respondError(c *gin.Context, err error) {
	code := errs.GetCode(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Internal server error", "code": code})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
