// Package present renders groups and events as platform-neutral cards.
package present

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/azlyth/irlcord/pkg/irlcord/models"
)

// Card colors
const (
	ColorDefault  = 0x5865F2
	ColorApproved = 0x57F287
	ColorPending  = 0xE67E22
	ColorRejected = 0xED4245
)

// Layouts for rendered dates and times
const (
	DateFormat = "Monday, January 2, 2006"
	TimeFormat = "03:04 PM"
)

// maxListedMembers caps the regular members shown on a group card
const maxListedMembers = 10

// Field is one titled block of a card.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Card is a rich message: a title, a body and a list of fields.
type Card struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      string  `json:"footer,omitempty"`
	Color       int     `json:"color"`
}

// Terminology holds the display words for groups, events and leaders.
type Terminology struct {
	Group   string
	Groups  string
	Event   string
	Events  string
	Leader  string
	Leaders string
}

// DefaultTerminology is used when nothing is configured
var DefaultTerminology = Terminology{
	Group:   "Circle",
	Groups:  "Circles",
	Event:   "Event",
	Events:  "Events",
	Leader:  "Leader",
	Leaders: "Leaders",
}

// Map returns the words keyed for message templates: lower-case keys hold
// lower-case words, capitalised keys the words as configured.
func (t Terminology) Map() map[string]string {
	return map[string]string{
		"group":   strings.ToLower(t.Group),
		"groups":  strings.ToLower(t.Groups),
		"event":   strings.ToLower(t.Event),
		"events":  strings.ToLower(t.Events),
		"leader":  strings.ToLower(t.Leader),
		"leaders": strings.ToLower(t.Leaders),
		"user":    "user",
		"bill":    "bill",
		"Group":   t.Group,
		"Groups":  t.Groups,
		"Event":   t.Event,
		"Events":  t.Events,
		"Leader":  t.Leader,
		"Leaders": t.Leaders,
	}
}

// Mention renders a user reference the chat platform expands.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// title capitalises a stored mode value. Casers keep state, so each call gets its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func mentions(ids []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = Mention(id)
	}
	return strings.Join(parts, "\n")
}

// GroupCard renders a group with its settings, leaders and members.
func GroupCard(g *models.Group, members []models.GroupMember, terms Terminology) Card {
	var b strings.Builder
	if g.Description != "" {
		b.WriteString(g.Description)
	} else {
		b.WriteString("No description provided.")
	}

	b.WriteString("\n\n**Settings:**\n")
	fmt.Fprintf(&b, "Open %s: %s\n", terms.Group, yesNo(g.IsOpen))
	fmt.Fprintf(&b, "New Members Can Create %s: %s\n", terms.Events, yesNo(g.NewMembersCanCreateEvents))
	if g.EventApprovalMode != "" {
		fmt.Fprintf(&b, "%s Approval Mode: %s\n", terms.Event, title(string(g.EventApprovalMode)))
	}
	if g.EventAttendeeManagementMode != "" {
		fmt.Fprintf(&b, "Attendee Management: %s\n", title(string(g.EventAttendeeManagementMode)))
	}
	if g.ContributorEventsRequired != nil {
		fmt.Fprintf(&b, "%s Required for Contributor: %d\n", terms.Events, *g.ContributorEventsRequired)
	}

	var leaders, regular []string
	for _, m := range members {
		if m.IsLeader {
			leaders = append(leaders, m.UserID)
		} else {
			regular = append(regular, m.UserID)
		}
	}

	var fields []Field
	if len(leaders) > 0 {
		fields = append(fields, Field{Name: terms.Leaders, Value: mentions(leaders), Inline: true})
	}
	if len(regular) > 0 {
		shown := regular
		if len(shown) > maxListedMembers {
			shown = shown[:maxListedMembers]
		}
		value := mentions(shown)
		if extra := len(regular) - len(shown); extra > 0 {
			value += fmt.Sprintf("\n... and %d more", extra)
		}
		fields = append(fields, Field{Name: fmt.Sprintf("Members (%d)", len(regular)), Value: value, Inline: true})
	}

	return Card{
		Title:       g.Name,
		Description: strings.TrimRight(b.String(), "\n"),
		Fields:      fields,
		Footer:      fmt.Sprintf("%s ID: %d • Created: %s", terms.Group, g.ID, g.CreatedAt.Format("2006-01-02")),
		Color:       ColorDefault,
	}
}

func statusMarker(status models.EventStatus) (string, int) {
	switch status {
	case models.EventStatusPending:
		return "🟠", ColorPending
	case models.EventStatusRejected:
		return "🔴", ColorRejected
	default:
		return "🟢", ColorApproved
	}
}

// EventCard renders an event with its schedule and attendees grouped by RSVP status.
func EventCard(ev *models.Event, attendees []models.EventAttendee, terms Terminology) Card {
	var b strings.Builder
	fmt.Fprintf(&b, "**Date:** %s\n", ev.DateTime.Format(DateFormat))
	fmt.Fprintf(&b, "**Time:** %s\n", ev.DateTime.Format(TimeFormat))
	if ev.LocationName != "" {
		fmt.Fprintf(&b, "**Location:** %s\n", ev.LocationName)
	}
	if ev.LocationAddress != "" {
		fmt.Fprintf(&b, "**Address:** %s\n", ev.LocationAddress)
	}
	if ev.MaxAttendees != nil && *ev.MaxAttendees > 0 {
		fmt.Fprintf(&b, "**Capacity:** %d\n", *ev.MaxAttendees)
	}
	if ev.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", ev.Description)
	}

	byStatus := map[models.RSVPStatus][]string{}
	for _, a := range attendees {
		byStatus[a.RSVPStatus] = append(byStatus[a.RSVPStatus], a.UserID)
	}

	var fields []Field
	for _, s := range []struct {
		status models.RSVPStatus
		label  string
	}{
		{models.RSVPStatusAttending, "Attending"},
		{models.RSVPStatusWaitlist, "Waitlist"},
		{models.RSVPStatusDeclined, "Declined"},
	} {
		ids := byStatus[s.status]
		if len(ids) == 0 {
			continue
		}
		fields = append(fields, Field{
			Name:   fmt.Sprintf("%s (%d)", s.label, len(ids)),
			Value:  mentions(ids),
			Inline: true,
		})
	}

	marker, color := statusMarker(ev.Status)
	return Card{
		Title:       marker + " " + ev.Name,
		Description: strings.TrimRight(b.String(), "\n"),
		Fields:      fields,
		Footer:      fmt.Sprintf("%s ID: %d • Host: %s", terms.Event, ev.ID, Mention(ev.HostID)),
		Color:       color,
	}
}

// Text renders the card as plain markdown for adapters without rich messages.
func (c Card) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", c.Title)
	if c.Description != "" {
		b.WriteString(c.Description)
		b.WriteString("\n")
	}
	for _, f := range c.Fields {
		fmt.Fprintf(&b, "\n__%s__\n%s\n", f.Name, f.Value)
	}
	if c.Footer != "" {
		fmt.Fprintf(&b, "\n_%s_", c.Footer)
	}
	return strings.TrimRight(b.String(), "\n")
}
