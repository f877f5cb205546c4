package commands

import (
	"context"
	"slices"
	"strings"
	"unicode"
)

// Command names. They double as the keys of the configurable phrase map.
const (
	EventCreate     = "event_create"
	EventModify     = "event_modify"
	EventConfirm    = "event_confirm"
	EventUnconfirm  = "event_unconfirm"
	EventWaitlist   = "event_waitlist"
	EventInfo       = "event_info"
	EventChangeHost = "event_change_host"
	GroupCreate     = "group_create"
	GroupJoin       = "group_join"
	GroupLeave      = "group_leave"
	GroupInfo       = "group_info"
	GroupModify     = "group_modify"
	ProfileUpdate   = "profile_update"
	Help            = "help"
)

// Names lists every command in help order.
var Names = []string{
	GroupCreate, GroupJoin, GroupLeave, GroupInfo, GroupModify,
	EventCreate, EventModify, EventConfirm, EventUnconfirm, EventWaitlist, EventInfo, EventChangeHost,
	ProfileUpdate, Help,
}

// HandlerFunc runs one command.
type HandlerFunc func(ctx context.Context, req *Request) ([]Reply, error)

type route struct {
	phrase  string
	name    string
	handler HandlerFunc
}

// Table maps trigger phrases to handlers.
type Table struct {
	routes []route
}

// Match is the result of a table lookup.
type Match struct {
	Name    string
	Handler HandlerFunc
	// Rest is the message with the phrase removed, case preserved.
	Rest string
}

// NewTable creates an empty command table.
func NewTable() *Table {
	return &Table{}
}

// normalizePhrase lower-cases a phrase and collapses its whitespace.
func normalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// Register adds a handler for phrase. Empty phrases disable the command.
func (t *Table) Register(phrase, name string, handler HandlerFunc) {
	phrase = normalizePhrase(phrase)
	if phrase == "" {
		return
	}
	t.routes = append(t.routes, route{phrase: phrase, name: name, handler: handler})
	slices.SortStableFunc(t.routes, func(a, b route) int {
		return len(b.phrase) - len(a.phrase)
	})
}

// Phrase returns the registered phrase for a command name.
func (t *Table) Phrase(name string) (string, bool) {
	for _, r := range t.routes {
		if r.name == name {
			return r.phrase, true
		}
	}
	return "", false
}

// Match finds the longest registered phrase that prefixes content. The phrase
// must end at a word boundary, so "event newer" does not run "event new".
func (t *Table) Match(content string) (Match, bool) {
	content = strings.TrimSpace(content)
	for _, r := range t.routes {
		n := len(r.phrase)
		if len(content) < n || !strings.EqualFold(content[:n], r.phrase) {
			continue
		}
		rest := content[n:]
		if rest != "" && !unicode.IsSpace(rune(rest[0])) {
			continue
		}
		return Match{Name: r.name, Handler: r.handler, Rest: strings.TrimSpace(rest)}, true
	}
	return Match{}, false
}
