package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/azlyth/irlcord/pkg/irlcord/database"
	"github.com/azlyth/irlcord/pkg/irlcord/errs"
	"github.com/azlyth/irlcord/pkg/irlcord/models"
)

func setupTestStore(t *testing.T) *Store {
	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return New(db)
}

func createGroup(t *testing.T, s *Store, name, leader string) *models.Group {
	group := &models.Group{Name: name, ChannelID: "chan-" + name, IsOpen: true}
	if err := s.CreateGroupWithLeader(context.Background(), group, leader); err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}
	return group
}

func TestGetMissingEntities(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.GetGroup(ctx, 42); !errs.Is(err, errs.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND for group, got %v", err)
	}
	if _, err := s.GetGroupByChannel(ctx, ""); !errs.Is(err, errs.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND for empty channel, got %v", err)
	}
	if _, err := s.GetEventByThread(ctx, "nope"); !errs.Is(err, errs.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND for event, got %v", err)
	}
	_, err := s.GetUser(ctx, "1001")
	if !errs.Is(err, errs.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND for user, got %v", err)
	}
	if errs.GetMetadata(err)["Entity"] != "user" {
		t.Errorf("Expected entity metadata 'user', got %v", errs.GetMetadata(err))
	}
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	user, err := s.EnsureUser(ctx, "1001")
	if err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	user.PaymentHandle = "@venmo"
	if err := s.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	again, err := s.EnsureUser(ctx, "1001")
	if err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	if again.PaymentHandle != "@venmo" {
		t.Errorf("Expected profile to survive, got %q", again.PaymentHandle)
	}
}

func TestCreateGroupWithLeader(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	group := createGroup(t, s, "Hiking", "1001")

	leader, err := s.IsGroupLeader(ctx, group.ID, "1001")
	if err != nil || !leader {
		t.Errorf("Expected creator to be leader, got %v (%v)", leader, err)
	}
	count, _ := s.CountGroupLeaders(ctx, group.ID)
	if count != 1 {
		t.Errorf("Expected 1 leader, got %d", count)
	}

	byName, err := s.GetGroupByName(ctx, "Hiking")
	if err != nil || byName.ID != group.ID {
		t.Errorf("Expected lookup by name to find group %d, got %v (%v)", group.ID, byName, err)
	}
	byChannel, err := s.GetGroupByChannel(ctx, "chan-Hiking")
	if err != nil || byChannel.ID != group.ID {
		t.Errorf("Expected lookup by channel to find group %d, got %v (%v)", group.ID, byChannel, err)
	}

	dup := &models.Group{Name: "Hiking"}
	err = s.CreateGroupWithLeader(ctx, dup, "1002")
	if !errs.Is(err, errs.CodeRepositoryFailure) {
		t.Errorf("Expected REPOSITORY_FAILURE for duplicate name, got %v", err)
	}
}

func TestMembership(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	group := createGroup(t, s, "Hiking", "1001")
	other := createGroup(t, s, "Chess", "1003")

	if err := s.AddGroupMember(ctx, group.ID, "1002", false); err != nil {
		t.Fatalf("AddGroupMember failed: %v", err)
	}
	if err := s.AddGroupMember(ctx, group.ID, "1002", false); err != nil {
		t.Errorf("Expected re-adding a member to be a no-op, got %v", err)
	}
	if err := s.AddGroupMember(ctx, other.ID, "1002", false); err != nil {
		t.Fatalf("AddGroupMember failed: %v", err)
	}

	members, err := s.ListGroupMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListGroupMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("Expected 2 members, got %d", len(members))
	}
	if members[0].UserID != "1001" || members[1].UserID != "1002" {
		t.Errorf("Expected members in join order, got %s, %s", members[0].UserID, members[1].UserID)
	}

	groups, err := s.ListUserGroups(ctx, "1002")
	if err != nil {
		t.Fatalf("ListUserGroups failed: %v", err)
	}
	if len(groups) != 2 {
		t.Errorf("Expected 2 groups for user, got %d", len(groups))
	}

	if err := s.RemoveGroupMember(ctx, group.ID, "1002"); err != nil {
		t.Fatalf("RemoveGroupMember failed: %v", err)
	}
	member, _ := s.IsGroupMember(ctx, group.ID, "1002")
	if member {
		t.Error("Expected user to no longer be a member")
	}
}

func TestUpdateGroupClearsOptionalFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	group := createGroup(t, s, "Hiking", "1001")

	required := 3
	group.ContributorEventsRequired = &required
	group.Description = "Walks"
	if err := s.UpdateGroup(ctx, group); err != nil {
		t.Fatalf("UpdateGroup failed: %v", err)
	}

	group.ContributorEventsRequired = nil
	group.IsOpen = false
	if err := s.UpdateGroup(ctx, group); err != nil {
		t.Fatalf("UpdateGroup failed: %v", err)
	}

	loaded, _ := s.GetGroup(ctx, group.ID)
	if loaded.ContributorEventsRequired != nil {
		t.Errorf("Expected contributor requirement to be cleared, got %d", *loaded.ContributorEventsRequired)
	}
	if loaded.IsOpen {
		t.Error("Expected group to be closed")
	}
	if loaded.Description != "Walks" {
		t.Errorf("Expected description 'Walks', got %q", loaded.Description)
	}
}

func TestEventAttendees(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	group := createGroup(t, s, "Hiking", "1001")

	event := &models.Event{
		GroupID:  group.ID,
		HostID:   "1001",
		Name:     "Summit",
		DateTime: time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC),
		ThreadID: "thread-1",
		Status:   models.EventStatusApproved,
	}
	if err := s.CreateEventWithHost(ctx, event); err != nil {
		t.Fatalf("CreateEventWithHost failed: %v", err)
	}

	attendees, _ := s.ListEventAttendees(ctx, event.ID)
	if len(attendees) != 1 || attendees[0].UserID != "1001" || attendees[0].RSVPStatus != models.RSVPStatusAttending {
		t.Fatalf("Expected host as sole attendee, got %+v", attendees)
	}

	s.UpsertEventAttendee(ctx, event.ID, "1002", models.RSVPStatusWaitlist)
	s.UpsertEventAttendee(ctx, event.ID, "1002", models.RSVPStatusAttending)

	attendees, _ = s.ListEventAttendees(ctx, event.ID)
	if len(attendees) != 2 {
		t.Fatalf("Expected upsert to keep one row per user, got %d rows", len(attendees))
	}
	if attendees[1].RSVPStatus != models.RSVPStatusAttending {
		t.Errorf("Expected status ATTENDING after upsert, got %s", attendees[1].RSVPStatus)
	}

	byThread, err := s.GetEventByThread(ctx, "thread-1")
	if err != nil || byThread.ID != event.ID {
		t.Errorf("Expected lookup by thread to find event %d, got %v (%v)", event.ID, byThread, err)
	}

	if err := s.RemoveEventAttendee(ctx, event.ID, "1002"); err != nil {
		t.Fatalf("RemoveEventAttendee failed: %v", err)
	}
	attendees, _ = s.ListEventAttendees(ctx, event.ID)
	if len(attendees) != 1 {
		t.Errorf("Expected 1 attendee after removal, got %d", len(attendees))
	}

	pending, _ := s.ListGroupEvents(ctx, group.ID, models.EventStatusPending)
	if len(pending) != 0 {
		t.Errorf("Expected no pending events, got %d", len(pending))
	}
	all, _ := s.ListGroupEvents(ctx, group.ID, "")
	if len(all) != 1 {
		t.Errorf("Expected 1 event, got %d", len(all))
	}
}

func TestBills(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	bill := &models.Bill{EventID: 1, UserID: "1002", Amount: 12.5, Paid: true}
	if err := s.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if bill.Paid {
		t.Error("Expected new bill to start unpaid")
	}

	updated, err := s.UpdateBillStatus(ctx, bill.ID, true)
	if err != nil {
		t.Fatalf("UpdateBillStatus failed: %v", err)
	}
	if !updated.Paid {
		t.Error("Expected bill to be paid")
	}

	bills, _ := s.ListEventBills(ctx, 1)
	if len(bills) != 1 || !bills[0].Paid {
		t.Errorf("Expected one paid bill, got %+v", bills)
	}

	if _, err := s.UpdateBillStatus(ctx, 999, true); !errs.Is(err, errs.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND for missing bill, got %v", err)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	group := createGroup(t, s, "Hiking", "1001")

	boom := errs.New(errs.CodeLastLeader, "boom")
	err := s.WithTx(ctx, func(tx Repository) error {
		if err := tx.AddGroupMember(ctx, group.ID, "1002", false); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected typed error to pass through, got %v", err)
	}

	member, _ := s.IsGroupMember(ctx, group.ID, "1002")
	if member {
		t.Error("Expected membership to be rolled back")
	}
}
