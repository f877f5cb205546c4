package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/azlyth/irlcord/pkg/irlcord/errs"
	"github.com/azlyth/irlcord/pkg/irlcord/patch"
	"github.com/azlyth/irlcord/pkg/irlcord/store"
)

func (d *Dispatcher) profileUpdate(ctx context.Context, req *Request) ([]Reply, error) {
	payment := patch.String(req.Args, "payment")
	dietary := patch.String(req.Args, "dietary")
	email := patch.String(req.Args, "email")
	if !payment.Present() && !dietary.Present() && !email.Present() {
		return nil, errs.WithMetadata(errs.CodeMissingField, "no profile fields provided",
			map[string]string{"Field": "settings", "Example": `profile update payment="@venmo-handle"`})
	}

	err := d.repo.WithTx(ctx, func(tx store.Repository) error {
		user, err := tx.EnsureUser(ctx, req.AuthorID)
		if err != nil {
			return err
		}
		payment.Apply(&user.PaymentHandle)
		dietary.Apply(&user.DietaryRestrictions)
		email.Apply(&user.Email)
		return tx.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	return []Reply{{ChannelID: req.Origin(), Content: "Your profile has been updated."}}, nil
}

func (d *Dispatcher) describe(name string) string {
	w := d.words
	switch name {
	case GroupCreate:
		return fmt.Sprintf("Create a %s (admins only). `name`, `description`, `is_open`, `new_members_can_create_events`, `event_approval_mode`, `event_attendee_management_mode`, `contributor_events_required`", w["group"])
	case GroupJoin:
		return fmt.Sprintf("Join an open %s. `name`", w["group"])
	case GroupLeave:
		return fmt.Sprintf("Leave the %s of this channel", w["group"])
	case GroupInfo:
		return fmt.Sprintf("Show a %s. Optional `name`", w["group"])
	case GroupModify:
		return fmt.Sprintf("Change %s settings (%s only)", w["group"], w["leaders"])
	case EventCreate:
		return fmt.Sprintf("Create an %s. `name`, `date` (YYYY-MM-DD), `time` (HH:MM), `location`, `address`, `description`, `max`, `public`", w["event"])
	case EventModify:
		return fmt.Sprintf("Change this %s (host or %s)", w["event"], w["leader"])
	case EventConfirm:
		return fmt.Sprintf("Attend this %s", w["event"])
	case EventUnconfirm:
		return fmt.Sprintf("Stop attending this %s", w["event"])
	case EventWaitlist:
		return fmt.Sprintf("Join the waitlist for this %s", w["event"])
	case EventInfo:
		return fmt.Sprintf("Show this %s. Optional `id`", w["event"])
	case EventChangeHost:
		return fmt.Sprintf("Hand this %s to another member. `user`", w["event"])
	case ProfileUpdate:
		return "Update your profile. `payment`, `dietary`, `email`"
	case Help:
		return "Show this message"
	}
	return ""
}

func (d *Dispatcher) help(ctx context.Context, req *Request) ([]Reply, error) {
	var b strings.Builder
	b.WriteString("**Commands**\n")
	for _, name := range Names {
		phrase, ok := d.table.Phrase(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "`%s`: %s\n", phrase, d.describe(name))
	}
	return []Reply{{ChannelID: req.Origin(), Content: strings.TrimRight(b.String(), "\n")}}, nil
}
