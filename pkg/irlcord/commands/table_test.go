package commands

import (
	"context"
	"testing"
)

func named(name string) HandlerFunc {
	return func(ctx context.Context, req *Request) ([]Reply, error) {
		return []Reply{{Content: name}}, nil
	}
}

func TestTableLongestPrefix(t *testing.T) {
	table := NewTable()
	table.Register("event", "event", named("event"))
	table.Register("Event  Change Host", "change_host", named("change_host"))
	table.Register("event change", "change", named("change"))

	tests := []struct {
		content string
		name    string
		rest    string
		ok      bool
	}{
		{"event change host user=<@12>", "change_host", "user=<@12>", true},
		{"EVENT CHANGE HOST", "change_host", "", true},
		{"event change name=X", "change", "name=X", true},
		{"event changer", "event", "changer", true},
		{"  event  ", "event", "", true},
		{"eventful", "", "", false},
		{"hello event", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			m, ok := table.Match(tt.content)
			if ok != tt.ok {
				t.Fatalf("Expected match %v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			if m.Name != tt.name {
				t.Errorf("Expected command %q, got %q", tt.name, m.Name)
			}
			if m.Rest != tt.rest {
				t.Errorf("Expected rest %q, got %q", tt.rest, m.Rest)
			}
		})
	}
}

func TestTableRestKeepsCase(t *testing.T) {
	table := NewTable()
	table.Register("circle new", GroupCreate, named(GroupCreate))

	m, ok := table.Match(`Circle New name="Hiking Club"`)
	if !ok {
		t.Fatal("Expected a match")
	}
	if m.Rest != `name="Hiking Club"` {
		t.Errorf("Expected original case in rest, got %q", m.Rest)
	}
}

func TestTableEmptyPhraseDisablesCommand(t *testing.T) {
	table := NewTable()
	table.Register("", Help, named(Help))
	table.Register("   ", Help, named(Help))

	if _, ok := table.Match("help"); ok {
		t.Error("Expected no match for disabled command")
	}
	if _, ok := table.Phrase(Help); ok {
		t.Error("Expected no phrase for disabled command")
	}
}
