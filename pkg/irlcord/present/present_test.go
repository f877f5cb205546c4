package present

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/azlyth/irlcord/pkg/irlcord/models"
)

func TestEventCard(t *testing.T) {
	max := 4
	ev := &models.Event{
		ID:           7,
		HostID:       "1001",
		Name:         "Game Night",
		DateTime:     time.Date(2024, 3, 20, 19, 0, 0, 0, time.UTC),
		LocationName: "Cafe",
		MaxAttendees: &max,
		Status:       models.EventStatusPending,
	}
	attendees := []models.EventAttendee{
		{UserID: "1001", RSVPStatus: models.RSVPStatusAttending},
		{UserID: "1002", RSVPStatus: models.RSVPStatusWaitlist},
		{UserID: "1003", RSVPStatus: models.RSVPStatusAttending},
	}

	card := EventCard(ev, attendees, DefaultTerminology)

	if card.Title != "🟠 Game Night" {
		t.Errorf("Expected pending marker in title, got %q", card.Title)
	}
	if card.Color != ColorPending {
		t.Errorf("Expected pending color, got %x", card.Color)
	}
	if !strings.Contains(card.Description, "**Date:** Wednesday, March 20, 2024") {
		t.Errorf("Expected formatted date, got %q", card.Description)
	}
	if !strings.Contains(card.Description, "**Time:** 07:00 PM") {
		t.Errorf("Expected formatted time, got %q", card.Description)
	}
	if len(card.Fields) != 2 {
		t.Fatalf("Expected Attending and Waitlist fields, got %+v", card.Fields)
	}
	if card.Fields[0].Name != "Attending (2)" || card.Fields[0].Value != "<@1001>\n<@1003>" {
		t.Errorf("Unexpected attending field: %+v", card.Fields[0])
	}
	if card.Fields[1].Name != "Waitlist (1)" {
		t.Errorf("Expected 'Waitlist (1)', got %q", card.Fields[1].Name)
	}
	if card.Footer != "Event ID: 7 • Host: <@1001>" {
		t.Errorf("Unexpected footer: %q", card.Footer)
	}
}

func TestEventCardApprovedMarker(t *testing.T) {
	card := EventCard(&models.Event{Name: "Hike", Status: models.EventStatusApproved}, nil, DefaultTerminology)
	if !strings.HasPrefix(card.Title, "🟢") || card.Color != ColorApproved {
		t.Errorf("Expected approved marker, got %q (%x)", card.Title, card.Color)
	}
	if len(card.Fields) != 0 {
		t.Errorf("Expected no attendee fields, got %d", len(card.Fields))
	}
}

func TestGroupCard(t *testing.T) {
	required := 2
	g := &models.Group{
		ID:                          3,
		Name:                        "Hiking",
		IsOpen:                      true,
		EventApprovalMode:           models.ApprovalModePublic,
		EventAttendeeManagementMode: models.AttendeeModeSelf,
		ContributorEventsRequired:   &required,
		CreatedAt:                   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	members := []models.GroupMember{{UserID: "1001", IsLeader: true}}
	for i := 0; i < 12; i++ {
		members = append(members, models.GroupMember{UserID: fmt.Sprintf("20%02d", i)})
	}

	terms := DefaultTerminology
	terms.Group = "Crew"
	card := GroupCard(g, members, terms)

	for _, want := range []string{
		"No description provided.",
		"Open Crew: Yes",
		"New Members Can Create Events: No",
		"Event Approval Mode: Public",
		"Attendee Management: Self",
		"Events Required for Contributor: 2",
	} {
		if !strings.Contains(card.Description, want) {
			t.Errorf("Expected description to contain %q, got %q", want, card.Description)
		}
	}

	if len(card.Fields) != 2 {
		t.Fatalf("Expected Leaders and Members fields, got %d", len(card.Fields))
	}
	if card.Fields[0].Name != "Leaders" || card.Fields[0].Value != "<@1001>" {
		t.Errorf("Unexpected leaders field: %+v", card.Fields[0])
	}
	if card.Fields[1].Name != "Members (12)" {
		t.Errorf("Expected 'Members (12)', got %q", card.Fields[1].Name)
	}
	if !strings.HasSuffix(card.Fields[1].Value, "... and 2 more") {
		t.Errorf("Expected overflow note, got %q", card.Fields[1].Value)
	}
	if card.Footer != "Crew ID: 3 • Created: 2024-01-05" {
		t.Errorf("Unexpected footer: %q", card.Footer)
	}
}

func TestTerminologyMap(t *testing.T) {
	m := Terminology{Group: "Guild", Groups: "Guilds", Event: "Raid", Events: "Raids", Leader: "Officer", Leaders: "Officers"}.Map()

	if m["group"] != "guild" || m["Group"] != "Guild" {
		t.Errorf("Expected group words 'guild'/'Guild', got %q/%q", m["group"], m["Group"])
	}
	if m["leaders"] != "officers" {
		t.Errorf("Expected 'officers', got %q", m["leaders"])
	}
}

func TestCardText(t *testing.T) {
	card := Card{
		Title:       "Hiking",
		Description: "Walks",
		Fields:      []Field{{Name: "Leaders", Value: "<@1>"}},
		Footer:      "Circle ID: 1",
	}
	want := "**Hiking**\nWalks\n\n__Leaders__\n<@1>\n\n_Circle ID: 1_"
	if got := card.Text(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
