package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/azlyth/irlcord/pkg/irlcord/present"
)

func TestNewRequiresToken(t *testing.T) {
	if _, err := New("", "", nil); err == nil {
		t.Error("Expected error for empty token")
	}

	b, err := New("token", "42", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if guild, _ := b.guild(); guild != "42" {
		t.Errorf("Expected guild 42, got %q", guild)
	}
}

func TestGuildFromReady(t *testing.T) {
	b, _ := New("token", "", nil)
	if _, err := b.guild(); err != ErrNoGuild {
		t.Errorf("Expected ErrNoGuild, got %v", err)
	}

	ready := &discordgo.Ready{Guilds: []*discordgo.Guild{{ID: "7"}, {ID: "8"}}}
	if guild := b.adoptGuild(ready); guild != "7" {
		t.Errorf("Expected first guild, got %q", guild)
	}

	// A configured guild is never replaced
	configured, _ := New("token", "42", nil)
	if guild := configured.adoptGuild(ready); guild != "42" {
		t.Errorf("Expected configured guild, got %q", guild)
	}
}

func TestInbound(t *testing.T) {
	m := &discordgo.Message{
		ChannelID: "thread-9",
		Content:   "event confirm",
		Author:    &discordgo.User{ID: "1001"},
	}

	inChannel := inbound(m, &discordgo.Channel{ID: "thread-9", Type: discordgo.ChannelTypeGuildText}, false)
	if inChannel.ChannelID != "thread-9" || inChannel.ThreadID != "" {
		t.Errorf("Expected plain channel message, got %+v", inChannel)
	}

	thread := &discordgo.Channel{ID: "thread-9", ParentID: "chan-1", Type: discordgo.ChannelTypeGuildPublicThread}
	inThread := inbound(m, thread, true)
	if inThread.ChannelID != "chan-1" || inThread.ThreadID != "thread-9" {
		t.Errorf("Expected thread message under chan-1, got %+v", inThread)
	}
	if !inThread.AuthorIsAdmin || inThread.AuthorID != "1001" {
		t.Errorf("Unexpected author fields: %+v", inThread)
	}
}

func TestEmbed(t *testing.T) {
	card := &present.Card{
		Title:       "Summit",
		Description: "**Date:** Friday",
		Fields:      []present.Field{{Name: "Attending (1)", Value: "<@1001>", Inline: true}},
		Footer:      "Event ID: 1",
		Color:       present.ColorApproved,
	}

	e := embed(card)
	if e.Title != "Summit" || e.Color != present.ColorApproved {
		t.Errorf("Unexpected embed header: %+v", e)
	}
	if len(e.Fields) != 1 || !e.Fields[0].Inline || e.Fields[0].Value != "<@1001>" {
		t.Errorf("Unexpected fields: %+v", e.Fields)
	}
	if e.Footer == nil || e.Footer.Text != "Event ID: 1" {
		t.Errorf("Unexpected footer: %+v", e.Footer)
	}

	if embed(&present.Card{Title: "x"}).Footer != nil {
		t.Error("Expected no footer for empty text")
	}
}

func TestGroupChannelIsPrivate(t *testing.T) {
	data := groupChannel("guild-1", "bot-1", "hiking-club", "Weekend walks", "1001")

	if data.Name != "hiking-club" || data.Topic != "Weekend walks" || data.Type != discordgo.ChannelTypeGuildText {
		t.Errorf("Unexpected channel data: %+v", data)
	}
	if len(data.PermissionOverwrites) != 3 {
		t.Fatalf("Expected 3 overwrites, got %d", len(data.PermissionOverwrites))
	}

	everyone := data.PermissionOverwrites[0]
	if everyone.ID != "guild-1" || everyone.Deny&discordgo.PermissionViewChannel == 0 {
		t.Errorf("Expected @everyone denied view, got %+v", everyone)
	}
	owner := data.PermissionOverwrites[2]
	if owner.ID != "1001" || owner.Allow&discordgo.PermissionSendMessages == 0 {
		t.Errorf("Expected owner allowed to send, got %+v", owner)
	}
}
