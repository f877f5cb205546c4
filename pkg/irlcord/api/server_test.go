package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/azlyth/irlcord/pkg/irlcord/auth"
	"github.com/azlyth/irlcord/pkg/irlcord/circles"
	"github.com/azlyth/irlcord/pkg/irlcord/commands"
	"github.com/azlyth/irlcord/pkg/irlcord/database"
	"github.com/azlyth/irlcord/pkg/irlcord/events"
	"github.com/azlyth/irlcord/pkg/irlcord/models"
	"github.com/azlyth/irlcord/pkg/irlcord/store"
)

// setupFullServer wires the stack the way cmd/irlcord does, against a
// database file, and authenticates with an API key.
func setupFullServer(t *testing.T) (*gin.Engine, *store.Store, string) {
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(t.TempDir() + "/irlcord.db")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := store.New(db)
	platform := commands.NewLocalPlatform(logger)
	loc, _ := time.LoadLocation("America/New_York")
	now := func() time.Time { return time.Date(2030, 1, 1, 12, 0, 0, 0, loc) }
	dispatcher := commands.NewDispatcher(repo, platform,
		circles.NewEngine(repo, platform, logger),
		events.NewEngine(repo, platform, logger, events.WithLocation(loc), events.WithClock(now)),
		commands.Options{Admins: []string{"1001"}},
		logger,
	)

	key, _, err := auth.IssueAPIKey(db, "matrix bridge")
	if err != nil {
		t.Fatalf("IssueAPIKey failed: %v", err)
	}

	router := NewRouter(NewHandler(repo, dispatcher, loc, logger), auth.NewTokens("test-secret"), db, logger)
	return router, repo, key
}

func TestFullServerConversation(t *testing.T) {
	router, repo, key := setupFullServer(t)
	ctx := context.Background()

	send := func(msg commands.Message) []commands.Reply {
		t.Helper()
		body, _ := json.Marshal(msg)
		req, _ := http.NewRequest("POST", "/api/messages", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+key)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp MessagesResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		return resp.Replies
	}

	send(commands.Message{AuthorID: "1001", ChannelID: "lobby", Content: `circle new name="Book Club" event_approval_mode=none`})
	group, err := repo.GetGroupByName(ctx, "Book Club")
	if err != nil {
		t.Fatalf("Expected group to exist: %v", err)
	}

	send(commands.Message{AuthorID: "1002", ChannelID: "lobby", Content: `circle join name="Book Club"`})
	send(commands.Message{AuthorID: "1003", ChannelID: "lobby", Content: `circle join name="Book Club"`})

	replies := send(commands.Message{AuthorID: "1001", ChannelID: group.ChannelID,
		Content: `event new name="Dune night" date=2030-01-10 time=19:00 max=2`})
	if len(replies) != 2 {
		t.Fatalf("Expected event creation replies, got %+v", replies)
	}

	evs, _ := repo.ListGroupEvents(ctx, group.ID, "")
	if len(evs) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(evs))
	}
	thread := evs[0].ThreadID

	send(commands.Message{AuthorID: "1002", ChannelID: group.ChannelID, ThreadID: thread, Content: "event confirm"})
	replies = send(commands.Message{AuthorID: "1003", ChannelID: group.ChannelID, ThreadID: thread, Content: "event confirm"})
	if len(replies) == 0 || !strings.Contains(replies[0].Content, "waitlist") {
		t.Errorf("Expected third attendee to be waitlisted, got %+v", replies)
	}

	req, _ := http.NewRequest("GET", fmt.Sprintf("/api/events/%d", evs[0].ID), nil)
	req.Header.Set("Authorization", "Bearer "+key)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var detail EventDetailResponse
	json.Unmarshal(w.Body.Bytes(), &detail)
	if detail.DateTime != "2030-01-10T19:00:00-05:00" {
		t.Errorf("Expected local event time, got %q", detail.DateTime)
	}
	statuses := map[string]string{}
	for _, a := range detail.Attendees {
		statuses[a.UserID] = a.RSVPStatus
	}
	if statuses["1001"] != string(models.RSVPStatusAttending) ||
		statuses["1002"] != string(models.RSVPStatusAttending) ||
		statuses["1003"] != string(models.RSVPStatusWaitlist) {
		t.Errorf("Unexpected attendance: %v", statuses)
	}
}
