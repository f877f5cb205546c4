package errs

import (
	"errors"
	"fmt"
	"testing"
)

var testTerms = map[string]string{
	"group": "circle", "groups": "circles", "Group": "Circle",
	"event": "event", "events": "events", "Event": "Event",
	"leader": "leader", "leaders": "leaders",
}

func TestGetCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handling command: %w", New(CodeLastLeader, "last leader"))
	if GetCode(err) != CodeLastLeader {
		t.Errorf("Expected %s, got %s", CodeLastLeader, GetCode(err))
	}
	if !Is(err, CodeLastLeader) {
		t.Error("Expected Is to match wrapped code")
	}
	if !errors.Is(err, New(CodeLastLeader, "")) {
		t.Error("Expected errors.Is to match by code")
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("Expected plain errors to map to UNKNOWN")
	}
	if Is(nil, CodeUnknown) {
		t.Error("Expected nil error not to match any code")
	}
}

func TestStorageKeepsTypedErrors(t *testing.T) {
	notFound := WithMetadata(CodeNotFound, "group missing", map[string]string{"Entity": "group"})
	if got := Storage("get group", notFound); GetCode(got) != CodeNotFound {
		t.Errorf("Expected NOT_FOUND to pass through, got %s", GetCode(got))
	}

	cause := errors.New("database is locked")
	got := Storage("get group", cause)
	if GetCode(got) != CodeRepositoryFailure {
		t.Errorf("Expected REPOSITORY_FAILURE, got %s", GetCode(got))
	}
	if !errors.Is(got, cause) {
		t.Error("Expected the storage error to unwrap to its cause")
	}
	if Storage("noop", nil) != nil {
		t.Error("Expected nil cause to stay nil")
	}
}

func TestCatalogFormat(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"last leader",
			New(CodeLastLeader, "x"),
			"You are the last leader of this circle. Please assign another leader before leaving.",
		},
		{
			"permission create",
			WithMetadata(CodePermissionDenied, "x", map[string]string{"Op": "create"}),
			"Only administrators can create new circles.",
		},
		{
			"permission modify",
			WithMetadata(CodePermissionDenied, "x", map[string]string{"Op": "modify"}),
			"Only leaders can modify circle settings.",
		},
		{
			"not found by name",
			WithMetadata(CodeNotFound, "x", map[string]string{"Entity": "group", "Name": "Hiking"}),
			"No circle found with that name.",
		},
		{
			"wrong channel",
			WithMetadata(CodeWrongChannel, "x", map[string]string{"Entity": "event"}),
			"This command must be used in an event thread.",
		},
		{
			"past date",
			WithMetadata(CodeInvalidDateTime, "x", map[string]string{"Reason": "past"}),
			"Event date and time must be in the future.",
		},
		{
			"bad max",
			WithMetadata(CodeInvalidNumber, "x", map[string]string{"Field": "max"}),
			"Maximum attendees must be a number.",
		},
		{
			"invalid enum",
			WithMetadata(CodeInvalidEnum, "x", map[string]string{"Field": "event_approval_mode", "Valid": "none, public, all"}),
			"Invalid event approval mode. Valid options are: none, public, all",
		},
		{
			"unknown error",
			errors.New("boom"),
			"Something went wrong. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.Message(tt.err, testTerms)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
