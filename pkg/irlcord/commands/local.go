package commands

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// LocalPlatform is a Platform with no chat server behind it. Channels and
// messages get fresh ids and are only logged. It backs the HTTP API when the
// Discord adapter is disabled.
type LocalPlatform struct {
	logger *slog.Logger

	mu       sync.Mutex
	channels map[string]string
}

// NewLocalPlatform creates a LocalPlatform.
func NewLocalPlatform(logger *slog.Logger) *LocalPlatform {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalPlatform{logger: logger, channels: make(map[string]string)}
}

var _ Platform = (*LocalPlatform)(nil)

func (p *LocalPlatform) create(name string) string {
	id := uuid.NewString()
	p.mu.Lock()
	p.channels[id] = name
	p.mu.Unlock()
	return id
}

// ChannelName returns the name a channel was created or last renamed with.
func (p *LocalPlatform) ChannelName(channelID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name, ok := p.channels[channelID]
	return name, ok
}

func (p *LocalPlatform) Send(ctx context.Context, channelID string, reply Reply) (string, error) {
	id := uuid.NewString()
	content := reply.Content
	if reply.Card != nil {
		content += "\n" + reply.Card.Text()
	}
	p.logger.Debug("local send", "channel_id", channelID, "message_id", id, "content", content)
	return id, nil
}

func (p *LocalPlatform) CreateGroupChannel(ctx context.Context, name, topic, ownerID string) (string, error) {
	id := p.create(name)
	p.logger.Info("local channel created", "channel_id", id, "name", name, "owner", ownerID)
	return id, nil
}

func (p *LocalPlatform) DeleteChannel(ctx context.Context, channelID string) error {
	p.mu.Lock()
	delete(p.channels, channelID)
	p.mu.Unlock()
	p.logger.Info("local channel deleted", "channel_id", channelID)
	return nil
}

func (p *LocalPlatform) EditChannel(ctx context.Context, channelID, name, topic string) error {
	if name != "" {
		p.mu.Lock()
		if _, ok := p.channels[channelID]; ok {
			p.channels[channelID] = name
		}
		p.mu.Unlock()
	}
	return nil
}

func (p *LocalPlatform) GrantAccess(ctx context.Context, channelID, userID string) error {
	return nil
}

func (p *LocalPlatform) RevokeAccess(ctx context.Context, channelID, userID string) error {
	return nil
}

func (p *LocalPlatform) CreateThread(ctx context.Context, channelID, name string) (string, error) {
	id := p.create(name)
	p.logger.Info("local thread created", "thread_id", id, "channel_id", channelID, "name", name)
	return id, nil
}

func (p *LocalPlatform) PinMessage(ctx context.Context, channelID, messageID string) error {
	return nil
}
