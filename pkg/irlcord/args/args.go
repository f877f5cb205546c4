// Package args parses key=value command arguments out of chat messages.
package args

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	quotedPattern   = regexp.MustCompile(`(\w+)="([^"]*)"`)
	unquotedPattern = regexp.MustCompile(`(\w+)=(\S+)`)
	digitsPattern   = regexp.MustCompile(`\d+`)
)

// Parse turns the text following a command phrase into a map of lower-cased
// keys to values.
//
// Quoted pairs (key="some value") are collected first and every occurrence of
// the matched text is cut from the input, so the unquoted pass (key=value)
// never sees them again. Later matches overwrite earlier ones for the same key.
// Embedded quotes cannot be escaped.
func Parse(text string) map[string]string {
	result := make(map[string]string)
	if strings.TrimSpace(text) == "" {
		return result
	}

	remaining := text
	for _, m := range quotedPattern.FindAllStringSubmatch(text, -1) {
		result[strings.ToLower(m[1])] = m[2]
		remaining = strings.ReplaceAll(remaining, m[0], "")
	}

	for _, m := range unquotedPattern.FindAllStringSubmatch(remaining, -1) {
		result[strings.ToLower(m[1])] = m[2]
	}

	return result
}

// ParseCommand drops the first whitespace-delimited word of a full message and
// parses the rest. A message with a single word has no arguments.
func ParseCommand(content string) map[string]string {
	trimmed := strings.TrimLeftFunc(content, unicode.IsSpace)
	idx := strings.IndexFunc(trimmed, unicode.IsSpace)
	if idx < 0 {
		return map[string]string{}
	}
	return Parse(strings.TrimLeftFunc(trimmed[idx:], unicode.IsSpace))
}

// MentionID extracts the first run of digits from a user mention such as
// "<@1234>" or "<@!1234>". It returns "" when there is none.
func MentionID(mention string) string {
	return digitsPattern.FindString(mention)
}

// Bool interprets a flag value the way commands do: only "true" (any case) is true.
func Bool(value string) bool {
	return strings.EqualFold(value, "true")
}
