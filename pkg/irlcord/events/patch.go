package events

import (
	"strconv"
	"time"

	"github.com/azlyth/irlcord/pkg/irlcord/errs"
	"github.com/azlyth/irlcord/pkg/irlcord/models"
	"github.com/azlyth/irlcord/pkg/irlcord/patch"
)

// EventPatch is a partial update of an event. Date and Time carry only their
// own half of a date-time and are merged onto the stored value by Apply.
type EventPatch struct {
	Name            patch.Field[string]
	Description     patch.Field[string]
	LocationName    patch.Field[string]
	LocationAddress patch.Field[string]
	MaxAttendees    patch.Field[int]
	Date            patch.Field[time.Time]
	Time            patch.Field[time.Time]
}

// ParseEventPatch builds an EventPatch from command arguments. Dates and times
// are read in loc. An empty max clears the capacity.
func ParseEventPatch(fields map[string]string, loc *time.Location) (EventPatch, error) {
	var p EventPatch

	if v, ok := fields["name"]; ok {
		if v == "" {
			return p, errs.WithMetadata(errs.CodeMissingField, "event name cannot be empty",
				map[string]string{"Field": "name", "Entity": "event"})
		}
		p.Name = patch.Set(v)
	}
	p.Description = patch.String(fields, "description")
	p.LocationName = patch.String(fields, "location")
	p.LocationAddress = patch.String(fields, "address")

	if v, ok := fields["max"]; ok {
		if v == "" {
			p.MaxAttendees = patch.Clear[int]()
		} else {
			n, err := strconv.Atoi(v)
			if err != nil {
				return p, errs.WithMetadata(errs.CodeInvalidNumber, "max is not a number",
					map[string]string{"Field": "max"})
			}
			p.MaxAttendees = patch.Set(n)
		}
	}

	if v, ok := fields["date"]; ok {
		d, err := time.ParseInLocation(DateLayout, v, loc)
		if err != nil {
			return p, invalidFormat(err)
		}
		p.Date = patch.Set(d)
	}
	if v, ok := fields["time"]; ok {
		t, err := time.ParseInLocation(TimeLayout, v, loc)
		if err != nil {
			return p, invalidFormat(err)
		}
		p.Time = patch.Set(t)
	}

	return p, nil
}

// Empty reports whether the patch touches nothing.
func (p EventPatch) Empty() bool {
	return !p.Name.Present() &&
		!p.Description.Present() &&
		!p.LocationName.Present() &&
		!p.LocationAddress.Present() &&
		!p.MaxAttendees.Present() &&
		!p.Reschedules()
}

// Reschedules reports whether the patch moves the event's date-time.
func (p EventPatch) Reschedules() bool {
	return p.Date.IsSet() || p.Time.IsSet()
}

// Apply writes the present fields onto ev. ev.DateTime must already be in the
// location the patch was parsed in.
func (p EventPatch) Apply(ev *models.Event) {
	p.Name.Apply(&ev.Name)
	p.Description.Apply(&ev.Description)
	p.LocationName.Apply(&ev.LocationName)
	p.LocationAddress.Apply(&ev.LocationAddress)
	p.MaxAttendees.ApplyPtr(&ev.MaxAttendees)

	if !p.Reschedules() {
		return
	}
	at := ev.DateTime
	year, month, day := at.Date()
	hour, minute, sec := at.Clock()
	if p.Date.IsSet() {
		year, month, day = p.Date.Value().Date()
	}
	if p.Time.IsSet() {
		hour, minute, _ = p.Time.Value().Clock()
		sec = 0
	}
	ev.DateTime = time.Date(year, month, day, hour, minute, sec, 0, at.Location())
}
