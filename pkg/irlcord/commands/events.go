package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/azlyth/irlcord/pkg/irlcord/args"
	"github.com/azlyth/irlcord/pkg/irlcord/errs"
	"github.com/azlyth/irlcord/pkg/irlcord/events"
	"github.com/azlyth/irlcord/pkg/irlcord/models"
	"github.com/azlyth/irlcord/pkg/irlcord/present"
)

func (d *Dispatcher) eventCard(snap *events.Snapshot) *present.Card {
	c := present.EventCard(snap.Event, snap.Attendees, d.terms)
	return &c
}

func (d *Dispatcher) eventCreate(ctx context.Context, req *Request) ([]Reply, error) {
	group, err := d.groupForChannel(ctx, req, "")
	if err != nil {
		return nil, err
	}

	snap, err := d.events.CreateEvent(ctx, group, req.AuthorID, req.Args)
	if err != nil {
		return nil, err
	}
	ev := snap.Event

	announcement := fmt.Sprintf("**%s** has been created by %s!", ev.Name, present.Mention(req.AuthorID))
	if ev.Status == models.EventStatusPending {
		announcement += fmt.Sprintf("\n\nThis %s requires approval from a %s.", d.words["event"], d.words["leader"])
	}

	return []Reply{
		{ChannelID: ev.ThreadID, Content: announcement, Card: d.eventCard(snap)},
		{ChannelID: req.Origin(), Content: fmt.Sprintf("%s created! Check out %s", d.terms.Event, channelMention(ev.ThreadID))},
	}, nil
}

func (d *Dispatcher) eventModify(ctx context.Context, req *Request) ([]Reply, error) {
	event, err := d.eventForThread(ctx, req, "")
	if err != nil {
		return nil, err
	}
	loc := d.events.Location()
	before := events.ThreadName(event.Name, event.DateTime.In(loc))

	mod, err := d.events.ModifyEvent(ctx, event, req.AuthorID, req.Args)
	if err != nil {
		return nil, err
	}

	if after := events.ThreadName(mod.Event.Name, mod.Event.DateTime.In(loc)); mod.NameChanged || after != before {
		if err := d.platform.EditChannel(ctx, mod.Event.ThreadID, after, ""); err != nil {
			req.Logger.Warn("failed to rename event thread", "thread_id", mod.Event.ThreadID, "error", err)
		}
	}

	return []Reply{{
		ChannelID: req.Origin(),
		Content:   d.terms.Event + " updated!",
		Card:      d.eventCard(&mod.Snapshot),
	}}, nil
}

func (d *Dispatcher) eventConfirm(ctx context.Context, req *Request) ([]Reply, error) {
	event, err := d.eventForThread(ctx, req, "")
	if err != nil {
		return nil, err
	}

	rsvp, err := d.events.Rsvp(ctx, event, req.AuthorID)
	if err != nil {
		return nil, err
	}

	content := fmt.Sprintf("You are now attending this %s!", d.words["event"])
	if rsvp.Status == models.RSVPStatusWaitlist {
		content = fmt.Sprintf("The %s is full. You have been added to the waitlist.", d.words["event"])
	}
	return []Reply{
		{ChannelID: req.Origin(), Content: content},
		{ChannelID: req.Origin(), Card: d.eventCard(&rsvp.Snapshot)},
	}, nil
}

func (d *Dispatcher) eventUnconfirm(ctx context.Context, req *Request) ([]Reply, error) {
	event, err := d.eventForThread(ctx, req, "")
	if err != nil {
		return nil, err
	}

	res, err := d.events.Unconfirm(ctx, event, req.AuthorID)
	if err != nil {
		return nil, err
	}

	var replies []Reply
	if res.Promoted != "" {
		replies = append(replies, Reply{
			ChannelID: req.Origin(),
			Content:   fmt.Sprintf("%s has been moved from the waitlist to attending!", present.Mention(res.Promoted)),
		})
	}
	return append(replies,
		Reply{ChannelID: req.Origin(), Content: fmt.Sprintf("You are no longer attending this %s.", d.words["event"])},
		Reply{ChannelID: req.Origin(), Card: d.eventCard(&res.Snapshot)},
	), nil
}

func (d *Dispatcher) eventWaitlist(ctx context.Context, req *Request) ([]Reply, error) {
	event, err := d.eventForThread(ctx, req, "")
	if err != nil {
		return nil, err
	}

	snap, err := d.events.JoinWaitlist(ctx, event, req.AuthorID)
	if err != nil {
		return nil, err
	}
	return []Reply{
		{ChannelID: req.Origin(), Content: fmt.Sprintf("You have been added to the waitlist for this %s.", d.words["event"])},
		{ChannelID: req.Origin(), Card: d.eventCard(snap)},
	}, nil
}

func (d *Dispatcher) eventInfo(ctx context.Context, req *Request) ([]Reply, error) {
	var event *models.Event
	if raw, ok := req.Args["id"]; ok {
		id, err := strconv.ParseUint(raw, 10, 0)
		if err != nil {
			return nil, errs.WithMetadata(errs.CodeInvalidNumber, "event id is not a number",
				map[string]string{"Field": "id"})
		}
		if event, err = d.repo.GetEvent(ctx, uint(id)); err != nil {
			return nil, err
		}
	} else {
		var err error
		if event, err = d.eventForThread(ctx, req, "id"); err != nil {
			return nil, err
		}
	}

	snap, err := d.events.Info(ctx, event)
	if err != nil {
		return nil, err
	}
	return []Reply{{ChannelID: req.Origin(), Card: d.eventCard(snap)}}, nil
}

func (d *Dispatcher) eventChangeHost(ctx context.Context, req *Request) ([]Reply, error) {
	event, err := d.eventForThread(ctx, req, "")
	if err != nil {
		return nil, err
	}

	newHost := args.MentionID(req.Args["user"])
	snap, err := d.events.ChangeHost(ctx, event, req.AuthorID, newHost)
	if err != nil {
		return nil, err
	}
	return []Reply{{
		ChannelID: req.Origin(),
		Content:   fmt.Sprintf("%s host changed to %s!", d.terms.Event, present.Mention(newHost)),
		Card:      d.eventCard(snap),
	}}, nil
}
