package circles

import (
	"slices"
	"strconv"
	"strings"

	"github.com/azlyth/irlcord/pkg/irlcord/args"
	"github.com/azlyth/irlcord/pkg/irlcord/errs"
	"github.com/azlyth/irlcord/pkg/irlcord/models"
	"github.com/azlyth/irlcord/pkg/irlcord/patch"
)

// GroupPatch is a partial update of a group's settings.
type GroupPatch struct {
	Name                        patch.Field[string]
	Description                 patch.Field[string]
	IsOpen                      patch.Field[bool]
	NewMembersCanCreateEvents   patch.Field[bool]
	EventApprovalMode           patch.Field[models.ApprovalMode]
	EventAttendeeManagementMode patch.Field[models.AttendeeMode]
	ContributorEventsRequired   patch.Field[int]
}

// ParseGroupPatch builds a GroupPatch from command arguments, validating mode
// values (case-insensitive) and the contributor count. Unknown keys are ignored.
// An empty contributor_events_required clears the requirement.
func ParseGroupPatch(fields map[string]string) (GroupPatch, error) {
	var p GroupPatch

	if v, ok := fields["name"]; ok {
		if v == "" {
			return p, errs.WithMetadata(errs.CodeMissingField, "group name cannot be empty",
				map[string]string{"Field": "name", "Entity": "group"})
		}
		p.Name = patch.Set(v)
	}
	p.Description = patch.String(fields, "description")

	if v, ok := fields["is_open"]; ok {
		p.IsOpen = patch.Set(args.Bool(v))
	}
	if v, ok := fields["new_members_can_create_events"]; ok {
		p.NewMembersCanCreateEvents = patch.Set(args.Bool(v))
	}

	if v, ok := fields["event_approval_mode"]; ok {
		mode := models.ApprovalMode(strings.ToLower(v))
		if !slices.Contains(models.ApprovalModes, mode) {
			return p, errs.WithMetadata(errs.CodeInvalidEnum, "invalid approval mode", map[string]string{
				"Field": "event_approval_mode",
				"Valid": joinModes(models.ApprovalModes),
			})
		}
		p.EventApprovalMode = patch.Set(mode)
	}

	if v, ok := fields["event_attendee_management_mode"]; ok {
		mode := models.AttendeeMode(strings.ToLower(v))
		if !slices.Contains(models.AttendeeModes, mode) {
			return p, errs.WithMetadata(errs.CodeInvalidEnum, "invalid attendee mode", map[string]string{
				"Field": "event_attendee_management_mode",
				"Valid": joinModes(models.AttendeeModes),
			})
		}
		p.EventAttendeeManagementMode = patch.Set(mode)
	}

	if v, ok := fields["contributor_events_required"]; ok {
		if v == "" {
			p.ContributorEventsRequired = patch.Clear[int]()
		} else {
			n, err := strconv.Atoi(v)
			if err != nil {
				return p, errs.WithMetadata(errs.CodeInvalidNumber, "contributor_events_required is not a number",
					map[string]string{"Field": "contributor_events_required"})
			}
			p.ContributorEventsRequired = patch.Set(n)
		}
	}

	return p, nil
}

// Empty reports whether the patch touches nothing.
func (p GroupPatch) Empty() bool {
	return !p.Name.Present() &&
		!p.Description.Present() &&
		!p.IsOpen.Present() &&
		!p.NewMembersCanCreateEvents.Present() &&
		!p.EventApprovalMode.Present() &&
		!p.EventAttendeeManagementMode.Present() &&
		!p.ContributorEventsRequired.Present()
}

// Apply writes the present fields onto g.
func (p GroupPatch) Apply(g *models.Group) {
	p.Name.Apply(&g.Name)
	p.Description.Apply(&g.Description)
	p.IsOpen.Apply(&g.IsOpen)
	p.NewMembersCanCreateEvents.Apply(&g.NewMembersCanCreateEvents)
	p.EventApprovalMode.Apply(&g.EventApprovalMode)
	p.EventAttendeeManagementMode.Apply(&g.EventAttendeeManagementMode)
	p.ContributorEventsRequired.ApplyPtr(&g.ContributorEventsRequired)
}

func joinModes[T ~string](modes []T) string {
	s := make([]string, len(modes))
	for i, m := range modes {
		s[i] = string(m)
	}
	return strings.Join(s, ", ")
}
