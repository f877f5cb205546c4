// Package circles enforces group policy: who may create, join, leave and
// modify groups, and the rule that every group keeps at least one leader.
package circles

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/azlyth/irlcord/pkg/irlcord/args"
	"github.com/azlyth/irlcord/pkg/irlcord/errs"
	"github.com/azlyth/irlcord/pkg/irlcord/models"
	"github.com/azlyth/irlcord/pkg/irlcord/store"
)

// Provisioner creates and deletes the chat channel bound to a group.
type Provisioner interface {
	CreateGroupChannel(ctx context.Context, name, topic, ownerID string) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
}

// Engine applies group policy on top of a Repository.
type Engine struct {
	repo        store.Repository
	provisioner Provisioner
	logger      *slog.Logger
}

// NewEngine creates a group policy engine
func NewEngine(repo store.Repository, provisioner Provisioner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{repo: repo, provisioner: provisioner, logger: logger}
}

// Snapshot is a group as persisted after an operation, with its members.
// Leaders come first, then members in join order.
type Snapshot struct {
	Group   *models.Group
	Members []models.GroupMember
}

// ChannelName derives a chat channel name from a group name.
func ChannelName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// ChannelTopic is the channel topic for a group: its description, or a
// placeholder when it has none.
func ChannelTopic(g *models.Group) string {
	if g.Description == "" {
		return "Channel for " + g.Name
	}
	return g.Description
}

func (e *Engine) snapshot(ctx context.Context, groupID uint) (*Snapshot, error) {
	group, err := e.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	members, err := e.repo.ListGroupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(members, func(a, b models.GroupMember) int {
		switch {
		case a.IsLeader == b.IsLeader:
			return 0
		case a.IsLeader:
			return -1
		default:
			return 1
		}
	})
	return &Snapshot{Group: group, Members: members}, nil
}

// CreateGroup creates a group with the requester as its first leader and
// provisions its channel. attrs holds the parsed command arguments.
//
// Mode values are stored as given; only ModifyGroup restricts them.
func (e *Engine) CreateGroup(ctx context.Context, requesterID string, requesterIsAdmin bool, attrs map[string]string) (*Snapshot, error) {
	if !requesterIsAdmin {
		return nil, errs.WithMetadata(errs.CodePermissionDenied, "group creation requires admin",
			map[string]string{"Op": "create"})
	}

	name := attrs["name"]
	if name == "" {
		return nil, errs.WithMetadata(errs.CodeMissingField, "group name is required",
			map[string]string{"Field": "name", "Entity": "group"})
	}

	if _, err := e.repo.GetGroupByName(ctx, name); err == nil {
		return nil, errs.New(errs.CodeDuplicateName, "group name already taken")
	} else if !errs.Is(err, errs.CodeNotFound) {
		return nil, err
	}

	group := &models.Group{
		Name:                        name,
		Description:                 attrs["description"],
		IsOpen:                      boolAttr(attrs, "is_open", true),
		NewMembersCanCreateEvents:   boolAttr(attrs, "new_members_can_create_events", true),
		EventApprovalMode:           models.ApprovalModePublic,
		EventAttendeeManagementMode: models.AttendeeModeHost,
	}
	if v, ok := attrs["event_approval_mode"]; ok {
		group.EventApprovalMode = models.ApprovalMode(v)
		if !slices.Contains(models.ApprovalModes, group.EventApprovalMode) {
			e.logger.Warn("group created with unknown approval mode", "group", name, "mode", v)
		}
	}
	if v, ok := attrs["event_attendee_management_mode"]; ok {
		group.EventAttendeeManagementMode = models.AttendeeMode(v)
		if !slices.Contains(models.AttendeeModes, group.EventAttendeeManagementMode) {
			e.logger.Warn("group created with unknown attendee mode", "group", name, "mode", v)
		}
	}
	if v := attrs["contributor_events_required"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errs.WithMetadata(errs.CodeInvalidNumber, "contributor_events_required is not a number",
				map[string]string{"Field": "contributor_events_required"})
		}
		group.ContributorEventsRequired = &n
	}

	channelID, err := e.provisioner.CreateGroupChannel(ctx, ChannelName(name), ChannelTopic(group), requesterID)
	if err != nil {
		return nil, fmt.Errorf("error creating group channel: %w", err)
	}
	group.ChannelID = channelID

	if err := e.repo.CreateGroupWithLeader(ctx, group, requesterID); err != nil {
		if derr := e.provisioner.DeleteChannel(ctx, channelID); derr != nil {
			e.logger.Error("failed to delete orphaned group channel", "channel_id", channelID, "error", derr)
		}
		return nil, errs.Wrap(errs.CodeRepositoryFailure, "failed to persist group", err)
	}

	e.logger.Info("group created", "group_id", group.ID, "name", name, "leader", requesterID)
	return e.snapshot(ctx, group.ID)
}

// JoinGroup adds the requester to an open group as a regular member
func (e *Engine) JoinGroup(ctx context.Context, group *models.Group, requesterID string) (*Snapshot, error) {
	if !group.IsOpen {
		return nil, errs.New(errs.CodeNotOpen, "group is closed")
	}

	err := e.repo.WithTx(ctx, func(tx store.Repository) error {
		member, err := tx.IsGroupMember(ctx, group.ID, requesterID)
		if err != nil {
			return err
		}
		if member {
			return errs.New(errs.CodeAlreadyMember, "already a member")
		}
		if _, err := tx.EnsureUser(ctx, requesterID); err != nil {
			return err
		}
		return tx.AddGroupMember(ctx, group.ID, requesterID, false)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("member joined group", "group_id", group.ID, "user_id", requesterID)
	return e.snapshot(ctx, group.ID)
}

// LeaveGroup removes the requester from the group. The last leader cannot leave.
func (e *Engine) LeaveGroup(ctx context.Context, group *models.Group, requesterID string) (*Snapshot, error) {
	err := e.repo.WithTx(ctx, func(tx store.Repository) error {
		member, err := tx.IsGroupMember(ctx, group.ID, requesterID)
		if err != nil {
			return err
		}
		if !member {
			return errs.New(errs.CodeNotMember, "not a member")
		}

		leader, err := tx.IsGroupLeader(ctx, group.ID, requesterID)
		if err != nil {
			return err
		}
		if leader {
			count, err := tx.CountGroupLeaders(ctx, group.ID)
			if err != nil {
				return err
			}
			if count == 1 {
				return errs.New(errs.CodeLastLeader, "sole leader cannot leave")
			}
		}

		return tx.RemoveGroupMember(ctx, group.ID, requesterID)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("member left group", "group_id", group.ID, "user_id", requesterID)
	return e.snapshot(ctx, group.ID)
}

// Modified is the result of ModifyGroup.
type Modified struct {
	Snapshot

	// Set when the bound channel's name or topic should follow the group.
	NameChanged        bool
	DescriptionChanged bool
}

// ModifyGroup applies a partial update from parsed command arguments.
// Only leaders may modify a group.
func (e *Engine) ModifyGroup(ctx context.Context, group *models.Group, requesterID string, fields map[string]string) (*Modified, error) {
	leader, err := e.repo.IsGroupLeader(ctx, group.ID, requesterID)
	if err != nil {
		return nil, err
	}
	if !leader {
		return nil, errs.WithMetadata(errs.CodePermissionDenied, "group modification requires leader",
			map[string]string{"Op": "modify"})
	}

	p, err := ParseGroupPatch(fields)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, errs.WithMetadata(errs.CodeMissingField, "no settings provided",
			map[string]string{"Field": "settings", "Example": "circle modify is_open=false"})
	}

	err = e.repo.WithTx(ctx, func(tx store.Repository) error {
		current, err := tx.GetGroup(ctx, group.ID)
		if err != nil {
			return err
		}
		p.Apply(current)
		return tx.UpdateGroup(ctx, current)
	})
	if err != nil {
		return nil, err
	}

	snap, err := e.snapshot(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	e.logger.Info("group modified", "group_id", group.ID, "by", requesterID)
	return &Modified{
		Snapshot:           *snap,
		NameChanged:        p.Name.Present(),
		DescriptionChanged: p.Description.Present(),
	}, nil
}

// RemoveMemberEverywhere drops every membership the user holds, leaders
// included. It returns the groups the user was removed from.
func (e *Engine) RemoveMemberEverywhere(ctx context.Context, userID string) ([]models.Group, error) {
	var groups []models.Group
	err := e.repo.WithTx(ctx, func(tx store.Repository) error {
		var err error
		groups, err = tx.ListUserGroups(ctx, userID)
		if err != nil {
			return err
		}
		for _, g := range groups {
			if err := tx.RemoveGroupMember(ctx, g.ID, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(groups) > 0 {
		e.logger.Info("departed user removed from groups", "user_id", userID, "groups", len(groups))
	}
	return groups, nil
}

// Info returns the group with its current members
func (e *Engine) Info(ctx context.Context, group *models.Group) (*Snapshot, error) {
	return e.snapshot(ctx, group.ID)
}

func boolAttr(attrs map[string]string, key string, def bool) bool {
	v, ok := attrs[key]
	if !ok {
		return def
	}
	return args.Bool(v)
}
