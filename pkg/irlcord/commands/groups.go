package commands

import (
	"context"
	"fmt"

	"github.com/azlyth/irlcord/pkg/irlcord/circles"
	"github.com/azlyth/irlcord/pkg/irlcord/errs"
	"github.com/azlyth/irlcord/pkg/irlcord/models"
	"github.com/azlyth/irlcord/pkg/irlcord/present"
)

func (d *Dispatcher) groupCard(snap *circles.Snapshot) *present.Card {
	c := present.GroupCard(snap.Group, snap.Members, d.terms)
	return &c
}

func (d *Dispatcher) groupCreate(ctx context.Context, req *Request) ([]Reply, error) {
	snap, err := d.circles.CreateGroup(ctx, req.AuthorID, req.Admin, req.Args)
	if err != nil {
		return nil, err
	}
	g := snap.Group

	return []Reply{
		{
			ChannelID: g.ChannelID,
			Content: fmt.Sprintf("Welcome to the **%s** %s! This channel will be used for organizing %s and discussions.",
				g.Name, d.words["group"], d.words["events"]),
			Card: d.groupCard(snap),
			Pin:  true,
		},
		{
			ChannelID: req.Origin(),
			Content:   fmt.Sprintf("%s created successfully! Check out %s", d.terms.Group, channelMention(g.ChannelID)),
		},
	}, nil
}

func (d *Dispatcher) groupByName(ctx context.Context, name string) (*models.Group, error) {
	group, err := d.repo.GetGroupByName(ctx, name)
	if errs.Is(err, errs.CodeNotFound) {
		return nil, errs.WithMetadata(errs.CodeNotFound, "no group named "+name,
			map[string]string{"Entity": "group", "Name": name})
	}
	return group, err
}

func (d *Dispatcher) groupJoin(ctx context.Context, req *Request) ([]Reply, error) {
	name := req.Args["name"]
	if name == "" {
		return nil, errs.WithMetadata(errs.CodeMissingField, "group name is required",
			map[string]string{"Field": "name", "Entity": "group"})
	}
	group, err := d.groupByName(ctx, name)
	if err != nil {
		return nil, err
	}

	snap, err := d.circles.JoinGroup(ctx, group, req.AuthorID)
	if err != nil {
		return nil, err
	}
	if err := d.platform.GrantAccess(ctx, group.ChannelID, req.AuthorID); err != nil {
		req.Logger.Warn("failed to grant channel access", "channel_id", group.ChannelID, "error", err)
	}

	return []Reply{
		{
			ChannelID: req.Origin(),
			Content: fmt.Sprintf("You have joined the **%s** %s! Check out %s",
				snap.Group.Name, d.words["group"], channelMention(snap.Group.ChannelID)),
		},
		{
			ChannelID: snap.Group.ChannelID,
			Content:   fmt.Sprintf("Welcome %s to the %s!", present.Mention(req.AuthorID), d.words["group"]),
		},
	}, nil
}

func (d *Dispatcher) groupLeave(ctx context.Context, req *Request) ([]Reply, error) {
	group, err := d.groupForChannel(ctx, req, "")
	if err != nil {
		return nil, err
	}

	if _, err := d.circles.LeaveGroup(ctx, group, req.AuthorID); err != nil {
		return nil, err
	}
	if err := d.platform.RevokeAccess(ctx, group.ChannelID, req.AuthorID); err != nil {
		req.Logger.Warn("failed to revoke channel access", "channel_id", group.ChannelID, "error", err)
	}

	return []Reply{{
		ChannelID: req.Origin(),
		Content:   fmt.Sprintf("You have left the **%s** %s.", group.Name, d.words["group"]),
	}}, nil
}

func (d *Dispatcher) groupInfo(ctx context.Context, req *Request) ([]Reply, error) {
	var group *models.Group
	var err error
	if name := req.Args["name"]; name != "" {
		group, err = d.groupByName(ctx, name)
	} else {
		group, err = d.groupForChannel(ctx, req, "name")
	}
	if err != nil {
		return nil, err
	}

	snap, err := d.circles.Info(ctx, group)
	if err != nil {
		return nil, err
	}
	return []Reply{{ChannelID: req.Origin(), Card: d.groupCard(snap)}}, nil
}

func (d *Dispatcher) groupModify(ctx context.Context, req *Request) ([]Reply, error) {
	group, err := d.groupForChannel(ctx, req, "")
	if err != nil {
		return nil, err
	}

	mod, err := d.circles.ModifyGroup(ctx, group, req.AuthorID, req.Args)
	if err != nil {
		return nil, err
	}

	if mod.NameChanged || mod.DescriptionChanged {
		var name, topic string
		if mod.NameChanged {
			name = circles.ChannelName(mod.Group.Name)
		}
		if mod.DescriptionChanged {
			topic = circles.ChannelTopic(mod.Group)
		}
		if err := d.platform.EditChannel(ctx, mod.Group.ChannelID, name, topic); err != nil {
			req.Logger.Warn("failed to update group channel", "channel_id", mod.Group.ChannelID, "error", err)
		}
	}

	return []Reply{{
		ChannelID: req.Origin(),
		Content:   d.terms.Group + " settings updated!",
		Card:      d.groupCard(&mod.Snapshot),
	}}, nil
}
