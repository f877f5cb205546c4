package errs

import (
	"strings"
	"text/template"
)

// Catalog renders user-facing messages for error codes.
//
// Templates receive a single map merging the error metadata with the caller's
// terminology, so "{{.group}}" renders the configured lower-case group word and
// "{{index . .Entity}}" looks up the word for an entity named in metadata.
type Catalog struct {
	messages map[Code]*template.Template
}

var defaultMessages = map[Code]string{
	CodeUnknown: "Something went wrong. Please try again later.",

	CodePermissionDenied: "{{if eq .Op \"create\"}}Only administrators can create new {{.groups}}." +
		"{{else}}Only {{.leaders}} can modify {{.group}} settings.{{end}}",
	CodeForbidden: "{{if eq .Op \"create\"}}Only {{.leaders}} can create {{.events}} in this {{.group}}." +
		"{{else if eq .Op \"change_host\"}}Only the current host or a {{.leader}} can change the host." +
		"{{else}}Only the host or a {{.leader}} can modify this {{.event}}.{{end}}",

	CodeNotFound: "No {{index . .Entity}} found{{if .Name}} with that name{{end}}.",
	CodeWrongChannel: "This command must be used in " +
		"{{if eq .Entity \"event\"}}an {{.event}} thread{{else}}a {{.group}} channel{{end}}" +
		"{{if .Alt}} or with a {{.Alt}} parameter{{end}}.",

	CodeDuplicateName: "A {{.group}} with that name already exists.",
	CodeAlreadyMember: "You are already a member of this {{.group}}.",
	CodeNotMember:     "You are not a member of this {{.group}}.",
	CodeLastLeader: "You are the last {{.leader}} of this {{.group}}. " +
		"Please assign another {{.leader}} before leaving.",
	CodeNotOpen: "This {{.group}} is not open for new members. Please contact a {{.leader}} to join.",

	CodeMissingField: "{{if eq .Field \"name\"}}Please provide a name for the {{index . .Entity}}." +
		"{{else if eq .Field \"date_time\"}}Please provide both date (YYYY-MM-DD) and time (HH:MM) for the {{.event}}." +
		"{{else if eq .Field \"user\"}}Please mention the new host. Example: `event change host user=@username`" +
		"{{else if eq .Field \"settings\"}}Please provide settings to modify. Example: `{{.Example}}`" +
		"{{else}}Missing required field: {{.Field}}.{{end}}",
	CodeInvalidDateTime: "{{if eq .Reason \"past\"}}{{.Event}} date and time must be in the future." +
		"{{else}}Invalid date or time format. Please use YYYY-MM-DD for date and HH:MM for time.{{end}}",
	CodeInvalidNumber: "{{if eq .Field \"max\"}}Maximum attendees" +
		"{{else if eq .Field \"contributor_events_required\"}}Contributor events required" +
		"{{else if eq .Field \"id\"}}The {{.event}} ID" +
		"{{else if eq .Field \"amount\"}}The amount" +
		"{{else}}{{.Field}}{{end}} must be a number.",
	CodeInvalidEnum: "Invalid {{if eq .Field \"event_approval_mode\"}}event approval mode" +
		"{{else}}attendee management mode{{end}}. Valid options are: {{.Valid}}",

	CodeNotApproved: "This {{.event}} has not been approved yet.",
	CodeNotGroupMember: "{{if eq .Subject \"new_host\"}}The new host must be a member of the {{.group}}." +
		"{{else if eq .Op \"waitlist\"}}You must be a member of the {{.group}} to join the waitlist." +
		"{{else}}You must be a member of the {{.group}} to attend {{.events}}.{{end}}",

	CodeRepositoryFailure: "Failed to save your changes. Please try again later.",
}

// NewCatalog parses the built-in message templates.
func NewCatalog() *Catalog {
	c := &Catalog{messages: make(map[Code]*template.Template, len(defaultMessages))}
	for code, text := range defaultMessages {
		c.messages[code] = template.Must(template.New(string(code)).Option("missingkey=zero").Parse(text))
	}
	return c
}

// Format renders the message for code. Falls back to the unknown-error message
// when the code has no template or the template fails.
func (c *Catalog) Format(code Code, metadata map[string]string, terms map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		tmpl = c.messages[CodeUnknown]
	}

	data := make(map[string]string, len(metadata)+len(terms))
	for k, v := range terms {
		data[k] = v
	}
	for k, v := range metadata {
		data[k] = v
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return defaultMessages[CodeUnknown]
	}
	return b.String()
}

// Message renders any error: typed errors through their template, anything
// else as the unknown-error message.
func (c *Catalog) Message(err error, terms map[string]string) string {
	return c.Format(GetCode(err), GetMetadata(err), terms)
}
