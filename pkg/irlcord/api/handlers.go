// Package api serves the bot over HTTP: message ingestion for chat adapters
// other than Discord, and read and bill endpoints for groups and events.
package api

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/azlyth/irlcord/pkg/irlcord/auth"
	"github.com/azlyth/irlcord/pkg/irlcord/commands"
	"github.com/azlyth/irlcord/pkg/irlcord/models"
	"github.com/azlyth/irlcord/pkg/irlcord/store"
)

// Handler handles API requests
type Handler struct {
	repo       store.Repository
	dispatcher *commands.Dispatcher
	loc        *time.Location
	logger     *slog.Logger
}

// NewHandler creates a new API handler. Event times are rendered in loc.
func NewHandler(repo store.Repository, dispatcher *commands.Dispatcher, loc *time.Location, logger *slog.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{repo: repo, dispatcher: dispatcher, loc: loc, logger: logger}
}

// MessagesResponse holds the replies produced by a message
type MessagesResponse struct {
	Replies []commands.Reply `json:"replies"`
}

// CreateBillRequest represents the request to create a bill
type CreateBillRequest struct {
	UserID string  `json:"user_id" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// UpdateBillRequest represents the request to mark a bill paid or unpaid
type UpdateBillRequest struct {
	Paid *bool `json:"paid" binding:"required"`
}

func parseID(c *gin.Context, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID"})
		return 0, false
	}
	return uint(id), true
}

// PostMessage dispatches a chat message exactly as the bot would and returns
// the replies for the caller to send.
func (h *Handler) PostMessage(c *gin.Context) {
	var msg commands.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subject, _ := auth.GetSubject(c)
	h.logger.Debug("message received over HTTP", "subject", subject, "author", msg.AuthorID)

	replies := h.dispatcher.Handle(c.Request.Context(), msg)
	if replies == nil {
		replies = []commands.Reply{}
	}
	c.JSON(http.StatusOK, MessagesResponse{Replies: replies})
}

// ListGroups returns every group by name
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.repo.ListGroups(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	responses := make([]GroupResponse, len(groups))
	for i, g := range groups {
		responses[i] = groupToResponse(g)
	}
	c.JSON(http.StatusOK, responses)
}

// GetGroup returns a group with its members
func (h *Handler) GetGroup(c *gin.Context) {
	id, ok := parseID(c, "group")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	group, err := h.repo.GetGroup(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	members, err := h.repo.ListGroupMembers(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := GroupDetailResponse{GroupResponse: groupToResponse(*group), Members: make([]MemberResponse, len(members))}
	for i, m := range members {
		resp.Members[i] = memberToResponse(m)
	}
	c.JSON(http.StatusOK, resp)
}

// ListGroupEvents returns a group's events, optionally filtered by ?status=
func (h *Handler) ListGroupEvents(c *gin.Context) {
	id, ok := parseID(c, "group")
	if !ok {
		return
	}
	status := models.EventStatus(c.Query("status"))
	valid := []models.EventStatus{"", models.EventStatusPending, models.EventStatusApproved, models.EventStatusRejected}
	if !slices.Contains(valid, status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}
	ctx := c.Request.Context()

	if _, err := h.repo.GetGroup(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	events, err := h.repo.ListGroupEvents(ctx, id, status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	responses := make([]EventResponse, len(events))
	for i, e := range events {
		responses[i] = h.eventToResponse(e)
	}
	c.JSON(http.StatusOK, responses)
}

// GetEvent returns an event with its attendees
func (h *Handler) GetEvent(c *gin.Context) {
	id, ok := parseID(c, "event")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	event, err := h.repo.GetEvent(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	attendees, err := h.repo.ListEventAttendees(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := EventDetailResponse{EventResponse: h.eventToResponse(*event), Attendees: make([]AttendeeResponse, len(attendees))}
	for i, a := range attendees {
		resp.Attendees[i] = attendeeToResponse(a)
	}
	c.JSON(http.StatusOK, resp)
}

// ListBills returns an event's bills
func (h *Handler) ListBills(c *gin.Context) {
	id, ok := parseID(c, "event")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.repo.GetEvent(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	bills, err := h.repo.ListEventBills(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	responses := make([]BillResponse, len(bills))
	for i, b := range bills {
		responses[i] = billToResponse(b)
	}
	c.JSON(http.StatusOK, responses)
}

// CreateBill adds an unpaid bill to an event
func (h *Handler) CreateBill(c *gin.Context) {
	id, ok := parseID(c, "event")
	if !ok {
		return
	}

	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	if _, err := h.repo.GetEvent(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}

	bill := &models.Bill{EventID: id, UserID: req.UserID, Amount: req.Amount}
	if err := h.repo.CreateBill(ctx, bill); err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("bill created", "bill_id", bill.ID, "event_id", id, "user_id", req.UserID)
	c.JSON(http.StatusCreated, billToResponse(*bill))
}

// UpdateBill marks a bill paid or unpaid
func (h *Handler) UpdateBill(c *gin.Context) {
	id, ok := parseID(c, "bill")
	if !ok {
		return
	}

	var req UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bill, err := h.repo.UpdateBillStatus(c.Request.Context(), id, *req.Paid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, billToResponse(*bill))
}

// RegisterRoutes registers the authenticated API routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/messages", h.PostMessage)

	rg.GET("/groups", h.ListGroups)
	rg.GET("/groups/:id", h.GetGroup)
	rg.GET("/groups/:id/events", h.ListGroupEvents)

	rg.GET("/events/:id", h.GetEvent)
	rg.GET("/events/:id/bills", h.ListBills)
	rg.POST("/events/:id/bills", h.CreateBill)

	rg.PUT("/bills/:id", h.UpdateBill)
}
