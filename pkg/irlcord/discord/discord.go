// Package discord runs the bot on a Discord server through discordgo.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/azlyth/irlcord/pkg/irlcord/commands"
	"github.com/azlyth/irlcord/pkg/irlcord/present"
)

// ThreadArchiveMinutes is how long an idle event thread stays open.
const ThreadArchiveMinutes = 1440

// memberAccess is what group members may do in their channel.
const memberAccess = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory

// ErrNoGuild is returned when a channel is needed before the bot knows its server.
var ErrNoGuild = errors.New("no guild configured or joined")

// Bot is a Discord session implementing commands.Platform.
type Bot struct {
	session *discordgo.Session
	logger  *slog.Logger

	mu         sync.RWMutex
	guildID    string
	dispatcher *commands.Dispatcher
}

var _ commands.Platform = (*Bot)(nil)

// New creates a bot for token. guildID may be empty, in which case the first
// guild reported on connect is used.
func New(token, guildID string, logger *slog.Logger) (*Bot, error) {
	if token == "" {
		return nil, errors.New("discord bot token is required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &Bot{session: session, guildID: guildID, logger: logger}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onGuildMemberRemove)
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildMembers |
		discordgo.IntentMessageContent

	return b, nil
}

// Attach sets the dispatcher inbound messages go to. Must be called before Start.
func (b *Bot) Attach(d *commands.Dispatcher) {
	b.mu.Lock()
	b.dispatcher = d
	b.mu.Unlock()
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) guild() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.guildID == "" {
		return "", ErrNoGuild
	}
	return b.guildID, nil
}

func (b *Bot) handler() *commands.Dispatcher {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dispatcher
}

// adoptGuild falls back to the first joined guild when none is configured.
func (b *Bot) adoptGuild(r *discordgo.Ready) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.guildID == "" && len(r.Guilds) > 0 {
		b.guildID = r.Guilds[0].ID
	}
	return b.guildID
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	guildID := b.adoptGuild(r)
	var username string
	if r.User != nil {
		username = r.User.Username
	}
	b.logger.Info("connected to Discord", "user", username, "guilds", len(r.Guilds), "guild_id", guildID)
	if err := s.UpdateGameStatus(0, "help"); err != nil {
		b.logger.Warn("failed to set status", "error", err)
	}
}

func (b *Bot) channel(s *discordgo.Session, channelID string) (*discordgo.Channel, error) {
	if ch, err := s.State.Channel(channelID); err == nil {
		return ch, nil
	}
	return s.Channel(channelID)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	d := b.handler()
	if d == nil || m.Author == nil || m.Author.Bot {
		return
	}

	ch, err := b.channel(s, m.ChannelID)
	if err != nil {
		b.logger.Warn("failed to resolve channel", "channel_id", m.ChannelID, "error", err)
		return
	}
	admin := false
	if perms, err := s.State.UserChannelPermissions(m.Author.ID, m.ChannelID); err == nil {
		admin = perms&discordgo.PermissionAdministrator != 0
	}

	ctx := context.Background()
	replies := d.Handle(ctx, inbound(m.Message, ch, admin))
	if err := d.Deliver(ctx, replies); err != nil {
		b.logger.Error("failed to deliver replies", "channel_id", m.ChannelID, "error", err)
	}
}

func (b *Bot) onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	d := b.handler()
	if d == nil || m.Member == nil || m.User == nil {
		return
	}

	ctx := context.Background()
	replies, err := d.MemberRemoved(ctx, m.User.ID)
	if err != nil {
		b.logger.Error("failed to remove departed member", "user_id", m.User.ID, "error", err)
		return
	}
	b.logger.Info("departed member removed", "user_id", m.User.ID, "groups", len(replies))
	if err := d.Deliver(ctx, replies); err != nil {
		b.logger.Error("failed to deliver removal notices", "user_id", m.User.ID, "error", err)
	}
}

// inbound converts a gateway message. Messages in a thread carry the
// thread's parent as their channel.
func inbound(m *discordgo.Message, ch *discordgo.Channel, admin bool) commands.Message {
	msg := commands.Message{
		AuthorID:      m.Author.ID,
		AuthorIsAdmin: admin,
		AuthorIsBot:   m.Author.Bot,
		ChannelID:     m.ChannelID,
		Content:       m.Content,
	}
	if ch != nil && ch.IsThread() {
		msg.ThreadID = ch.ID
		msg.ChannelID = ch.ParentID
	}
	return msg
}

// embed converts a card to a Discord embed.
func embed(c *present.Card) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       c.Title,
		Description: c.Description,
		Color:       c.Color,
	}
	for _, f := range c.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if c.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: c.Footer}
	}
	return e
}

// groupChannel describes a private text channel: hidden from @everyone,
// visible to the bot and the owner.
func groupChannel(guildID, botID, name, topic, ownerID string) discordgo.GuildChannelCreateData {
	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages},
	}
	if botID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID: botID, Type: discordgo.PermissionOverwriteTypeMember,
			Allow: memberAccess | discordgo.PermissionManageChannels | discordgo.PermissionManageMessages,
		})
	}
	if ownerID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID: ownerID, Type: discordgo.PermissionOverwriteTypeMember, Allow: memberAccess,
		})
	}
	return discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                topic,
		PermissionOverwrites: overwrites,
	}
}

func (b *Bot) Send(ctx context.Context, channelID string, reply commands.Reply) (string, error) {
	data := &discordgo.MessageSend{Content: reply.Content}
	if reply.Card != nil {
		data.Embeds = []*discordgo.MessageEmbed{embed(reply.Card)}
	}
	msg, err := b.session.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (b *Bot) CreateGroupChannel(ctx context.Context, name, topic, ownerID string) (string, error) {
	guildID, err := b.guild()
	if err != nil {
		return "", err
	}
	var botID string
	if b.session.State != nil && b.session.State.User != nil {
		botID = b.session.State.User.ID
	}

	ch, err := b.session.GuildChannelCreateComplex(guildID, groupChannel(guildID, botID, name, topic, ownerID), discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (b *Bot) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := b.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return err
}

func (b *Bot) EditChannel(ctx context.Context, channelID, name, topic string) error {
	if name == "" && topic == "" {
		return nil
	}
	_, err := b.session.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name, Topic: topic}, discordgo.WithContext(ctx))
	return err
}

func (b *Bot) GrantAccess(ctx context.Context, channelID, userID string) error {
	return b.session.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember, memberAccess, 0, discordgo.WithContext(ctx))
}

func (b *Bot) RevokeAccess(ctx context.Context, channelID, userID string) error {
	return b.session.ChannelPermissionDelete(channelID, userID, discordgo.WithContext(ctx))
}

func (b *Bot) CreateThread(ctx context.Context, channelID, name string) (string, error) {
	thread, err := b.session.ThreadStartComplex(channelID, &discordgo.ThreadStart{
		Name:                name,
		Type:                discordgo.ChannelTypeGuildPublicThread,
		AutoArchiveDuration: ThreadArchiveMinutes,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return thread.ID, nil
}

func (b *Bot) PinMessage(ctx context.Context, channelID, messageID string) error {
	return b.session.ChannelMessagePin(channelID, messageID, discordgo.WithContext(ctx))
}
