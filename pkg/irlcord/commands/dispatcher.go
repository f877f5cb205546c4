// Package commands routes inbound chat messages to the group and event
// engines and turns their results into replies.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/azlyth/irlcord/pkg/irlcord/args"
	"github.com/azlyth/irlcord/pkg/irlcord/circles"
	"github.com/azlyth/irlcord/pkg/irlcord/errs"
	"github.com/azlyth/irlcord/pkg/irlcord/events"
	"github.com/azlyth/irlcord/pkg/irlcord/models"
	"github.com/azlyth/irlcord/pkg/irlcord/present"
	"github.com/azlyth/irlcord/pkg/irlcord/store"
)

// Message is an inbound chat message.
type Message struct {
	AuthorID      string `json:"author_id" binding:"required"`
	AuthorIsAdmin bool   `json:"author_is_admin"`
	AuthorIsBot   bool   `json:"author_is_bot"`
	// ChannelID is the channel the message was posted in. For messages in a
	// thread it is the thread's parent channel.
	ChannelID string `json:"channel_id"`
	ThreadID  string `json:"thread_id"`
	Content   string `json:"content"`
}

// Origin is where replies to the message go.
func (m Message) Origin() string {
	if m.ThreadID != "" {
		return m.ThreadID
	}
	return m.ChannelID
}

// Reply is an outbound chat message.
type Reply struct {
	ChannelID string        `json:"channel_id"`
	Content   string        `json:"content,omitempty"`
	Card      *present.Card `json:"card,omitempty"`
	Pin       bool          `json:"pin,omitempty"`
}

// Request is a matched command ready to run.
type Request struct {
	Message
	Command string
	Admin   bool
	Args    map[string]string
	Logger  *slog.Logger
}

// Platform is the chat platform the bot runs on.
type Platform interface {
	// Send posts a reply and returns the new message's id.
	Send(ctx context.Context, channelID string, reply Reply) (string, error)
	CreateGroupChannel(ctx context.Context, name, topic, ownerID string) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
	// EditChannel renames a channel or sets its topic. Empty values are left unchanged.
	EditChannel(ctx context.Context, channelID, name, topic string) error
	GrantAccess(ctx context.Context, channelID, userID string) error
	RevokeAccess(ctx context.Context, channelID, userID string) error
	CreateThread(ctx context.Context, channelID, name string) (string, error)
	PinMessage(ctx context.Context, channelID, messageID string) error
}

// Options configures a Dispatcher.
type Options struct {
	// Phrases maps command names to trigger phrases. Missing names use
	// DefaultPhrases.
	Phrases map[string]string
	Terms   present.Terminology
	// Admins may create groups regardless of platform permissions.
	Admins []string
}

// DefaultPhrases are the trigger phrases used when none are configured.
var DefaultPhrases = map[string]string{
	EventCreate:     "event new",
	EventModify:     "event modify",
	EventConfirm:    "event confirm",
	EventUnconfirm:  "event unconfirm",
	EventWaitlist:   "event waitlist",
	EventInfo:       "event info",
	EventChangeHost: "event change host",
	GroupCreate:     "circle new",
	GroupJoin:       "circle join",
	GroupLeave:      "circle leave",
	GroupInfo:       "circle info",
	GroupModify:     "circle modify",
	ProfileUpdate:   "profile update",
	Help:            "help",
}

// Dispatcher matches messages against the command table and runs them.
type Dispatcher struct {
	repo     store.Repository
	platform Platform
	circles  *circles.Engine
	events   *events.Engine
	table    *Table
	terms    present.Terminology
	words    map[string]string
	catalog  *errs.Catalog
	admins   []string
	logger   *slog.Logger
}

// NewDispatcher wires the command table.
func NewDispatcher(repo store.Repository, platform Platform, groupEngine *circles.Engine, eventEngine *events.Engine, opts Options, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	terms := opts.Terms
	if terms == (present.Terminology{}) {
		terms = present.DefaultTerminology
	}

	d := &Dispatcher{
		repo:     repo,
		platform: platform,
		circles:  groupEngine,
		events:   eventEngine,
		table:    NewTable(),
		terms:    terms,
		words:    terms.Map(),
		catalog:  errs.NewCatalog(),
		admins:   opts.Admins,
		logger:   logger,
	}

	handlers := map[string]HandlerFunc{
		EventCreate:     d.eventCreate,
		EventModify:     d.eventModify,
		EventConfirm:    d.eventConfirm,
		EventUnconfirm:  d.eventUnconfirm,
		EventWaitlist:   d.eventWaitlist,
		EventInfo:       d.eventInfo,
		EventChangeHost: d.eventChangeHost,
		GroupCreate:     d.groupCreate,
		GroupJoin:       d.groupJoin,
		GroupLeave:      d.groupLeave,
		GroupInfo:       d.groupInfo,
		GroupModify:     d.groupModify,
		ProfileUpdate:   d.profileUpdate,
		Help:            d.help,
	}
	for _, name := range Names {
		phrase, ok := opts.Phrases[name]
		if !ok {
			phrase = DefaultPhrases[name]
		}
		d.table.Register(phrase, name, handlers[name])
	}

	return d
}

// Handle runs the command in msg and returns the replies to send. Messages
// from bots, empty messages and messages matching no command yield nothing.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) []Reply {
	if msg.AuthorIsBot || msg.Content == "" {
		return nil
	}
	m, ok := d.table.Match(msg.Content)
	if !ok {
		return nil
	}

	logger := d.logger.With("request_id", uuid.NewString(), "command", m.Name, "user_id", msg.AuthorID)
	logger.Debug("dispatching command", "channel_id", msg.ChannelID, "thread_id", msg.ThreadID)

	req := &Request{
		Message: msg,
		Command: m.Name,
		Admin:   msg.AuthorIsAdmin || slices.Contains(d.admins, msg.AuthorID),
		Args:    args.Parse(m.Rest),
		Logger:  logger,
	}

	replies, err := m.Handler(ctx, req)
	if err != nil {
		return []Reply{d.failure(logger, msg, err)}
	}
	logger.Info("command handled", "replies", len(replies))
	return replies
}

func (d *Dispatcher) failure(logger *slog.Logger, msg Message, err error) Reply {
	code := errs.GetCode(err)
	switch code {
	case errs.CodeUnknown, errs.CodeRepositoryFailure:
		logger.Error("command failed", "error", err)
	default:
		logger.Info("command rejected", "code", code, "reason", err.Error())
	}
	return Reply{ChannelID: msg.Origin(), Content: d.catalog.Message(err, d.words)}
}

// Deliver sends replies through the platform, pinning those marked for it.
func (d *Dispatcher) Deliver(ctx context.Context, replies []Reply) error {
	var errList []error
	for _, r := range replies {
		id, err := d.platform.Send(ctx, r.ChannelID, r)
		if err != nil {
			errList = append(errList, fmt.Errorf("error sending to %s: %w", r.ChannelID, err))
			continue
		}
		if r.Pin {
			if err := d.platform.PinMessage(ctx, r.ChannelID, id); err != nil {
				errList = append(errList, fmt.Errorf("error pinning %s: %w", id, err))
			}
		}
	}
	return errors.Join(errList...)
}

// MemberRemoved drops a user who left the server from every group and returns
// a notice for each affected group channel.
func (d *Dispatcher) MemberRemoved(ctx context.Context, userID string) ([]Reply, error) {
	groups, err := d.circles.RemoveMemberEverywhere(ctx, userID)
	if err != nil {
		return nil, err
	}

	replies := make([]Reply, 0, len(groups))
	for _, g := range groups {
		if g.ChannelID == "" {
			continue
		}
		replies = append(replies, Reply{
			ChannelID: g.ChannelID,
			Content: fmt.Sprintf("%s has left the server and has been removed from this %s.",
				present.Mention(userID), d.words["group"]),
		})
	}
	return replies, nil
}

// Terms returns the display words in use.
func (d *Dispatcher) Terms() present.Terminology {
	return d.terms
}

func channelMention(channelID string) string {
	return "<#" + channelID + ">"
}

func wrongChannel(entity, alt string) error {
	return errs.WithMetadata(errs.CodeWrongChannel, "command used outside a "+entity+" context",
		map[string]string{"Entity": entity, "Alt": alt})
}

// groupForChannel resolves the group bound to the message's channel.
func (d *Dispatcher) groupForChannel(ctx context.Context, req *Request, alt string) (*models.Group, error) {
	if req.ChannelID == "" {
		return nil, wrongChannel("group", alt)
	}
	group, err := d.repo.GetGroupByChannel(ctx, req.ChannelID)
	if errs.Is(err, errs.CodeNotFound) {
		return nil, wrongChannel("group", alt)
	}
	return group, err
}

// eventForThread resolves the event bound to the message's thread.
func (d *Dispatcher) eventForThread(ctx context.Context, req *Request, alt string) (*models.Event, error) {
	if req.ThreadID == "" {
		return nil, wrongChannel("event", alt)
	}
	event, err := d.repo.GetEventByThread(ctx, req.ThreadID)
	if errs.Is(err, errs.CodeNotFound) {
		return nil, wrongChannel("event", alt)
	}
	return event, err
}
