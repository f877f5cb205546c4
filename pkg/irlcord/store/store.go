// Package store is the relational repository behind the bot: users, groups,
// memberships, events, attendees and bills, persisted with GORM.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/azlyth/irlcord/pkg/irlcord/errs"
	"github.com/azlyth/irlcord/pkg/irlcord/models"
)

// Repository is the persistence contract consumed by the policy engines.
//
// Reads of a single entity return an errs.CodeNotFound error when the row is
// absent. Storage failures come back as errs.CodeRepositoryFailure.
type Repository interface {
	// WithTx runs fn against a repository bound to one transaction. Read-then-
	// write sequences that must not interleave with other commands go here.
	WithTx(ctx context.Context, fn func(Repository) error) error

	GetUser(ctx context.Context, userID string) (*models.User, error)
	EnsureUser(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	GetGroup(ctx context.Context, id uint) (*models.Group, error)
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)
	GetGroupByChannel(ctx context.Context, channelID string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	CreateGroupWithLeader(ctx context.Context, group *models.Group, leaderID string) error
	UpdateGroup(ctx context.Context, group *models.Group) error

	AddGroupMember(ctx context.Context, groupID uint, userID string, isLeader bool) error
	RemoveGroupMember(ctx context.Context, groupID uint, userID string) error
	IsGroupMember(ctx context.Context, groupID uint, userID string) (bool, error)
	IsGroupLeader(ctx context.Context, groupID uint, userID string) (bool, error)
	CountGroupLeaders(ctx context.Context, groupID uint) (int64, error)
	ListGroupMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error)
	ListUserGroups(ctx context.Context, userID string) ([]models.Group, error)

	CreateEventWithHost(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	GetEventByThread(ctx context.Context, threadID string) (*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	ListGroupEvents(ctx context.Context, groupID uint, status models.EventStatus) ([]models.Event, error)

	UpsertEventAttendee(ctx context.Context, eventID uint, userID string, status models.RSVPStatus) error
	RemoveEventAttendee(ctx context.Context, eventID uint, userID string) error
	ListEventAttendees(ctx context.Context, eventID uint) ([]models.EventAttendee, error)

	CreateBill(ctx context.Context, bill *models.Bill) error
	UpdateBillStatus(ctx context.Context, billID uint, paid bool) (*models.Bill, error)
	ListEventBills(ctx context.Context, eventID uint) ([]models.Bill, error)
}

// Store implements Repository on a GORM database.
type Store struct {
	db *gorm.DB
}

// New creates a Store on db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ Repository = (*Store)(nil)

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// notFound maps gorm's missing-row error to a typed NotFound for entity.
func notFound(err error, entity, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.WithMetadata(errs.CodeNotFound, message, map[string]string{"Entity": entity})
	}
	return errs.Storage(message, err)
}

// WithTx runs fn inside a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(Repository) error) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
	return errs.Storage("transaction failed", err)
}

// GetUser returns a user by platform id
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err, "user", "user not found")
	}
	return &user, nil
}

// EnsureUser returns the user, creating an empty profile if it does not exist yet
func (s *Store) EnsureUser(ctx context.Context, userID string) (*models.User, error) {
	user := models.User{UserID: userID}
	if err := s.conn(ctx).Where(models.User{UserID: userID}).FirstOrCreate(&user).Error; err != nil {
		return nil, errs.Storage("failed to ensure user", err)
	}
	return &user, nil
}

// UpdateUser saves every profile column of user
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	err := s.conn(ctx).Omit(clause.Associations).Save(user).Error
	return errs.Storage("failed to update user", err)
}

// GetGroup returns a group by id
func (s *Store) GetGroup(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := s.conn(ctx).First(&group, id).Error; err != nil {
		return nil, notFound(err, "group", "group not found")
	}
	return &group, nil
}

// GetGroupByName returns a group by its exact name
func (s *Store) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	var group models.Group
	if err := s.conn(ctx).Where("name = ?", name).First(&group).Error; err != nil {
		return nil, notFound(err, "group", "group not found")
	}
	return &group, nil
}

// GetGroupByChannel returns the group bound to a chat channel
func (s *Store) GetGroupByChannel(ctx context.Context, channelID string) (*models.Group, error) {
	var group models.Group
	if channelID == "" {
		return nil, notFound(gorm.ErrRecordNotFound, "group", "group not found")
	}
	if err := s.conn(ctx).Where("channel_id = ?", channelID).First(&group).Error; err != nil {
		return nil, notFound(err, "group", "group not found")
	}
	return &group, nil
}

// ListGroups returns all groups ordered by name
func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := s.conn(ctx).Order("name").Find(&groups).Error; err != nil {
		return nil, errs.Storage("failed to list groups", err)
	}
	return groups, nil
}

// CreateGroupWithLeader inserts group and enrolls leaderID as its first leader
func (s *Store) CreateGroupWithLeader(ctx context.Context, group *models.Group, leaderID string) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		if err := tx.Where(models.User{UserID: leaderID}).FirstOrCreate(&models.User{UserID: leaderID}).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMember{GroupID: group.ID, UserID: leaderID, IsLeader: true}).Error
	})
	return errs.Storage("failed to create group", err)
}

// UpdateGroup saves every column of group
func (s *Store) UpdateGroup(ctx context.Context, group *models.Group) error {
	err := s.conn(ctx).Omit(clause.Associations).Save(group).Error
	return errs.Storage("failed to update group", err)
}

// AddGroupMember adds userID to a group. Adding an existing member is a no-op.
func (s *Store) AddGroupMember(ctx context.Context, groupID uint, userID string, isLeader bool) error {
	member := models.GroupMember{GroupID: groupID, UserID: userID, IsLeader: isLeader}
	err := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	return errs.Storage("failed to add group member", err)
}

// RemoveGroupMember deletes a membership
func (s *Store) RemoveGroupMember(ctx context.Context, groupID uint, userID string) error {
	err := s.conn(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{}).Error
	return errs.Storage("failed to remove group member", err)
}

// IsGroupMember reports whether userID belongs to the group
func (s *Store) IsGroupMember(ctx context.Context, groupID uint, userID string) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count).Error
	if err != nil {
		return false, errs.Storage("failed to check membership", err)
	}
	return count > 0, nil
}

// IsGroupLeader reports whether userID is a leader of the group
func (s *Store) IsGroupLeader(ctx context.Context, groupID uint, userID string) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND is_leader = ?", groupID, userID, true).Count(&count).Error
	if err != nil {
		return false, errs.Storage("failed to check leadership", err)
	}
	return count > 0, nil
}

// CountGroupLeaders returns the number of leaders in the group
func (s *Store) CountGroupLeaders(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND is_leader = ?", groupID, true).Count(&count).Error
	if err != nil {
		return 0, errs.Storage("failed to count leaders", err)
	}
	return count, nil
}

// ListGroupMembers returns the memberships of a group with their user profiles
func (s *Store) ListGroupMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error) {
	var members []models.GroupMember
	if err := s.conn(ctx).Preload("User").Where("group_id = ?", groupID).Order("id").Find(&members).Error; err != nil {
		return nil, errs.Storage("failed to list group members", err)
	}
	return members, nil
}

// ListUserGroups returns every group userID belongs to
func (s *Store) ListUserGroups(ctx context.Context, userID string) ([]models.Group, error) {
	var groups []models.Group
	memberships := s.conn(ctx).Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)
	err := s.conn(ctx).Where("id IN (?)", memberships).Order("id").Find(&groups).Error
	if err != nil {
		return nil, errs.Storage("failed to list user groups", err)
	}
	return groups, nil
}

// CreateEventWithHost inserts event and records its host as attending
func (s *Store) CreateEventWithHost(ctx context.Context, event *models.Event) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(event).Error; err != nil {
			return err
		}
		host := &Store{db: tx}
		return host.UpsertEventAttendee(ctx, event.ID, event.HostID, models.RSVPStatusAttending)
	})
	return errs.Storage("failed to create event", err)
}

// GetEvent returns an event by id
func (s *Store) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := s.conn(ctx).First(&event, id).Error; err != nil {
		return nil, notFound(err, "event", "event not found")
	}
	return &event, nil
}

// GetEventByThread returns the event bound to a discussion thread
func (s *Store) GetEventByThread(ctx context.Context, threadID string) (*models.Event, error) {
	var event models.Event
	if threadID == "" {
		return nil, notFound(gorm.ErrRecordNotFound, "event", "event not found")
	}
	if err := s.conn(ctx).Where("thread_id = ?", threadID).First(&event).Error; err != nil {
		return nil, notFound(err, "event", "event not found")
	}
	return &event, nil
}

// UpdateEvent saves every column of event
func (s *Store) UpdateEvent(ctx context.Context, event *models.Event) error {
	err := s.conn(ctx).Omit(clause.Associations).Save(event).Error
	return errs.Storage("failed to update event", err)
}

// ListGroupEvents returns a group's events by date, optionally filtered by status
func (s *Store) ListGroupEvents(ctx context.Context, groupID uint, status models.EventStatus) ([]models.Event, error) {
	var events []models.Event
	query := s.conn(ctx).Where("group_id = ?", groupID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("date_time").Find(&events).Error; err != nil {
		return nil, errs.Storage("failed to list group events", err)
	}
	return events, nil
}

// UpsertEventAttendee records userID's RSVP, replacing any previous status
func (s *Store) UpsertEventAttendee(ctx context.Context, eventID uint, userID string, status models.RSVPStatus) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.User{UserID: userID}).FirstOrCreate(&models.User{UserID: userID}).Error; err != nil {
			return err
		}
		attendee := models.EventAttendee{EventID: eventID, UserID: userID, RSVPStatus: status}
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rsvp_status", "updated_at"}),
		}).Create(&attendee).Error
	})
	return errs.Storage("failed to save attendee", err)
}

// RemoveEventAttendee deletes userID's RSVP record entirely
func (s *Store) RemoveEventAttendee(ctx context.Context, eventID uint, userID string) error {
	err := s.conn(ctx).Where("event_id = ? AND user_id = ?", eventID, userID).Delete(&models.EventAttendee{}).Error
	return errs.Storage("failed to remove attendee", err)
}

// ListEventAttendees returns an event's attendees in insertion order
func (s *Store) ListEventAttendees(ctx context.Context, eventID uint) ([]models.EventAttendee, error) {
	var attendees []models.EventAttendee
	if err := s.conn(ctx).Preload("User").Where("event_id = ?", eventID).Order("id").Find(&attendees).Error; err != nil {
		return nil, errs.Storage("failed to list attendees", err)
	}
	return attendees, nil
}

// CreateBill inserts an unpaid bill
func (s *Store) CreateBill(ctx context.Context, bill *models.Bill) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.User{UserID: bill.UserID}).FirstOrCreate(&models.User{UserID: bill.UserID}).Error; err != nil {
			return err
		}
		bill.Paid = false
		return tx.Omit(clause.Associations).Create(bill).Error
	})
	return errs.Storage("failed to create bill", err)
}

// UpdateBillStatus marks a bill paid or unpaid
func (s *Store) UpdateBillStatus(ctx context.Context, billID uint, paid bool) (*models.Bill, error) {
	var bill models.Bill
	if err := s.conn(ctx).First(&bill, billID).Error; err != nil {
		return nil, notFound(err, "bill", "bill not found")
	}
	if err := s.conn(ctx).Model(&bill).Update("paid", paid).Error; err != nil {
		return nil, errs.Storage("failed to update bill", err)
	}
	bill.Paid = paid
	return &bill, nil
}

// ListEventBills returns an event's bills with payer profiles
func (s *Store) ListEventBills(ctx context.Context, eventID uint) ([]models.Bill, error) {
	var bills []models.Bill
	if err := s.conn(ctx).Preload("User").Where("event_id = ?", eventID).Order("id").Find(&bills).Error; err != nil {
		return nil, errs.Storage("failed to list bills", err)
	}
	return bills, nil
}
