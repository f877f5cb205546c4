// Package events implements the event lifecycle: creation, modification,
// host changes, and the RSVP state machine with capacity and waitlist.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/azlyth/irlcord/pkg/irlcord/args"
	"github.com/azlyth/irlcord/pkg/irlcord/errs"
	"github.com/azlyth/irlcord/pkg/irlcord/models"
	"github.com/azlyth/irlcord/pkg/irlcord/store"
)

// Input layouts for the date and time arguments
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ThreadProvisioner creates and deletes the discussion thread bound to an event.
type ThreadProvisioner interface {
	CreateThread(ctx context.Context, channelID, name string) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
}

// Engine applies event lifecycle rules on top of a Repository.
type Engine struct {
	repo    store.Repository
	threads ThreadProvisioner
	logger  *slog.Logger
	loc     *time.Location
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the time zone that date and time arguments are read in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClock replaces the wall clock used for the future-only check.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an event lifecycle engine
func NewEngine(repo store.Repository, threads ThreadProvisioner, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		repo:    repo,
		threads: threads,
		logger:  logger,
		loc:     time.Local,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the engine's time zone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Snapshot is an event as persisted after an operation, with its attendees
// in RSVP order.
type Snapshot struct {
	Event     *models.Event
	Attendees []models.EventAttendee
}

// ThreadName derives a discussion thread name for an event.
func ThreadName(name string, at time.Time) string {
	return name + "-" + at.Format(DateLayout)
}

func (e *Engine) snapshot(ctx context.Context, eventID uint) (*Snapshot, error) {
	event, err := e.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	event.DateTime = event.DateTime.In(e.loc)
	attendees, err := e.repo.ListEventAttendees(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Event: event, Attendees: attendees}, nil
}

// canManage reports whether userID is the event host or a leader of its group.
func (e *Engine) canManage(ctx context.Context, event *models.Event, userID string) (bool, error) {
	if event.HostID == userID {
		return true, nil
	}
	return e.repo.IsGroupLeader(ctx, event.GroupID, userID)
}

func (e *Engine) ensureFuture(at time.Time) error {
	if !at.After(e.now()) {
		return errs.WithMetadata(errs.CodeInvalidDateTime, "event time is not in the future",
			map[string]string{"Reason": "past"})
	}
	return nil
}

func invalidFormat(cause error) error {
	err := errs.Wrap(errs.CodeInvalidDateTime, "invalid date or time", cause)
	err.Metadata = map[string]string{"Reason": "format"}
	return err
}

// CreateEvent schedules an event in group hosted by the requester and opens
// its discussion thread. fields holds the parsed command arguments: name, date
// and time are required; location, address, description, max and public are
// optional.
func (e *Engine) CreateEvent(ctx context.Context, group *models.Group, requesterID string, fields map[string]string) (*Snapshot, error) {
	if !group.NewMembersCanCreateEvents {
		leader, err := e.repo.IsGroupLeader(ctx, group.ID, requesterID)
		if err != nil {
			return nil, err
		}
		if !leader {
			return nil, errs.WithMetadata(errs.CodeForbidden, "event creation requires leader",
				map[string]string{"Op": "create"})
		}
	}

	name := fields["name"]
	if name == "" {
		return nil, errs.WithMetadata(errs.CodeMissingField, "event name is required",
			map[string]string{"Field": "name", "Entity": "event"})
	}
	if fields["date"] == "" || fields["time"] == "" {
		return nil, errs.WithMetadata(errs.CodeMissingField, "event date and time are required",
			map[string]string{"Field": "date_time"})
	}

	at, err := time.ParseInLocation(DateLayout+" "+TimeLayout, fields["date"]+" "+fields["time"], e.loc)
	if err != nil {
		return nil, invalidFormat(err)
	}
	if err := e.ensureFuture(at); err != nil {
		return nil, err
	}

	event := &models.Event{
		GroupID:         group.ID,
		HostID:          requesterID,
		Name:            name,
		Description:     fields["description"],
		DateTime:        at,
		LocationName:    fields["location"],
		LocationAddress: fields["address"],
		IsPublic:        true,
		Status:          models.EventStatusPending,
	}
	if v := fields["max"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errs.WithMetadata(errs.CodeInvalidNumber, "max is not a number",
				map[string]string{"Field": "max"})
		}
		event.MaxAttendees = &n
	}
	if v, ok := fields["public"]; ok {
		event.IsPublic = args.Bool(v)
	}
	if group.EventApprovalMode == models.ApprovalModeNone {
		event.Status = models.EventStatusApproved
	}

	threadID, err := e.threads.CreateThread(ctx, group.ChannelID, ThreadName(name, at))
	if err != nil {
		return nil, fmt.Errorf("error creating event thread: %w", err)
	}
	event.ThreadID = threadID

	if err := e.repo.CreateEventWithHost(ctx, event); err != nil {
		if derr := e.threads.DeleteChannel(ctx, threadID); derr != nil {
			e.logger.Error("failed to delete orphaned event thread", "thread_id", threadID, "error", derr)
		}
		return nil, errs.Wrap(errs.CodeRepositoryFailure, "failed to persist event", err)
	}

	e.logger.Info("event created", "event_id", event.ID, "group_id", group.ID, "host", requesterID, "status", event.Status)
	return e.snapshot(ctx, event.ID)
}

// Modified is the result of ModifyEvent.
type Modified struct {
	Snapshot

	// Set when the thread name should follow the event.
	NameChanged bool
}

// ModifyEvent applies a partial update from parsed command arguments. A date
// or time given alone keeps the other half of the current date-time.
func (e *Engine) ModifyEvent(ctx context.Context, event *models.Event, requesterID string, fields map[string]string) (*Modified, error) {
	ok, err := e.canManage(ctx, event, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.WithMetadata(errs.CodeForbidden, "event modification requires host or leader",
			map[string]string{"Op": "modify"})
	}

	p, err := ParseEventPatch(fields, e.loc)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, errs.WithMetadata(errs.CodeMissingField, "no settings provided", map[string]string{
			"Field":   "settings",
			"Example": `event modify description="New description"`,
		})
	}

	err = e.repo.WithTx(ctx, func(tx store.Repository) error {
		current, err := tx.GetEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		current.DateTime = current.DateTime.In(e.loc)
		p.Apply(current)
		if p.Reschedules() {
			if err := e.ensureFuture(current.DateTime); err != nil {
				return err
			}
		}
		return tx.UpdateEvent(ctx, current)
	})
	if err != nil {
		return nil, err
	}

	snap, err := e.snapshot(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	e.logger.Info("event modified", "event_id", event.ID, "by", requesterID)
	return &Modified{Snapshot: *snap, NameChanged: p.Name.Present()}, nil
}

// ensureAttendable checks the event is approved and userID belongs to its group.
func (e *Engine) ensureAttendable(ctx context.Context, tx store.Repository, event *models.Event, userID, op string) error {
	if event.Status != models.EventStatusApproved {
		return errs.New(errs.CodeNotApproved, "event is not approved")
	}
	member, err := tx.IsGroupMember(ctx, event.GroupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return errs.WithMetadata(errs.CodeNotGroupMember, "requester is not in the event's group",
			map[string]string{"Op": op})
	}
	return nil
}

// RSVP is the result of Rsvp: the status the requester ended up with.
type RSVP struct {
	Snapshot
	Status models.RSVPStatus
}

// Rsvp confirms the requester's attendance. When the event has a capacity
// and it is already reached, the requester is waitlisted instead.
func (e *Engine) Rsvp(ctx context.Context, event *models.Event, requesterID string) (*RSVP, error) {
	var status models.RSVPStatus
	err := e.repo.WithTx(ctx, func(tx store.Repository) error {
		current, err := tx.GetEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		if err := e.ensureAttendable(ctx, tx, current, requesterID, "confirm"); err != nil {
			return err
		}

		attendees, err := tx.ListEventAttendees(ctx, current.ID)
		if err != nil {
			return err
		}
		attending := 0
		for _, a := range attendees {
			if a.RSVPStatus == models.RSVPStatusAttending {
				attending++
			}
		}

		status = models.RSVPStatusAttending
		if current.MaxAttendees != nil && *current.MaxAttendees > 0 && attending >= *current.MaxAttendees {
			status = models.RSVPStatusWaitlist
		}
		return tx.UpsertEventAttendee(ctx, current.ID, requesterID, status)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("rsvp recorded", "event_id", event.ID, "user_id", requesterID, "status", status)
	snap, err := e.snapshot(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	return &RSVP{Snapshot: *snap, Status: status}, nil
}

// Unconfirmed is the result of Unconfirm.
type Unconfirmed struct {
	Snapshot

	// Promoted is the user moved off the waitlist, if any.
	Promoted string
}

// Unconfirm deletes the requester's RSVP and promotes the earliest waitlisted
// attendee, if there is one.
func (e *Engine) Unconfirm(ctx context.Context, event *models.Event, requesterID string) (*Unconfirmed, error) {
	var promoted string
	err := e.repo.WithTx(ctx, func(tx store.Repository) error {
		if err := tx.RemoveEventAttendee(ctx, event.ID, requesterID); err != nil {
			return err
		}
		attendees, err := tx.ListEventAttendees(ctx, event.ID)
		if err != nil {
			return err
		}
		for _, a := range attendees {
			if a.RSVPStatus == models.RSVPStatusWaitlist {
				promoted = a.UserID
				return tx.UpsertEventAttendee(ctx, event.ID, a.UserID, models.RSVPStatusAttending)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("rsvp withdrawn", "event_id", event.ID, "user_id", requesterID, "promoted", promoted)
	snap, err := e.snapshot(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	return &Unconfirmed{Snapshot: *snap, Promoted: promoted}, nil
}

// JoinWaitlist puts the requester on the waitlist regardless of capacity.
func (e *Engine) JoinWaitlist(ctx context.Context, event *models.Event, requesterID string) (*Snapshot, error) {
	err := e.repo.WithTx(ctx, func(tx store.Repository) error {
		current, err := tx.GetEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		if err := e.ensureAttendable(ctx, tx, current, requesterID, "waitlist"); err != nil {
			return err
		}
		return tx.UpsertEventAttendee(ctx, current.ID, requesterID, models.RSVPStatusWaitlist)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("waitlist joined", "event_id", event.ID, "user_id", requesterID)
	return e.snapshot(ctx, event.ID)
}

// ChangeHost hands the event to newHostID, who must belong to the event's
// group. Attendance records are left exactly as they are.
func (e *Engine) ChangeHost(ctx context.Context, event *models.Event, requesterID, newHostID string) (*Snapshot, error) {
	ok, err := e.canManage(ctx, event, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.WithMetadata(errs.CodeForbidden, "host change requires host or leader",
			map[string]string{"Op": "change_host"})
	}
	if newHostID == "" {
		return nil, errs.WithMetadata(errs.CodeMissingField, "new host is required",
			map[string]string{"Field": "user"})
	}

	err = e.repo.WithTx(ctx, func(tx store.Repository) error {
		member, err := tx.IsGroupMember(ctx, event.GroupID, newHostID)
		if err != nil {
			return err
		}
		if !member {
			return errs.WithMetadata(errs.CodeNotGroupMember, "new host is not in the event's group",
				map[string]string{"Subject": "new_host"})
		}
		current, err := tx.GetEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		current.HostID = newHostID
		return tx.UpdateEvent(ctx, current)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("event host changed", "event_id", event.ID, "host", newHostID, "by", requesterID)
	return e.snapshot(ctx, event.ID)
}

// Info returns the event with its current attendees
func (e *Engine) Info(ctx context.Context, event *models.Event) (*Snapshot, error) {
	return e.snapshot(ctx, event.ID)
}
