package channels

import (
	"context"
	"log/slog"
	"sort"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/bus"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/config"
)

// Manager owns all enabled channels, routes outbound messages and answers
// permission questions for the command handlers.
type Manager struct {
	channels map[string]Channel
	b        bus.Bus
}

// NewManager creates a Manager and initialises all enabled channels.
func NewManager(cfg *config.Config, b bus.Bus) *Manager {
	m := &Manager{
		channels: make(map[string]Channel),
		b:        b,
	}

	if cfg.Channels.Telegram.Enabled {
		m.Register(NewTelegramChannel(&cfg.Channels.Telegram, b))
	}
	if cfg.Channels.Slack.Enabled {
		m.Register(NewSlackChannel(&cfg.Channels.Slack, b))
	}

	return m
}

// Register adds ch, replacing a channel of the same name.
func (m *Manager) Register(ch Channel) {
	m.channels[ch.Name()] = ch
	slog.Info("channel enabled", "name", ch.Name())
}

// Get returns the channel registered under name.
func (m *Manager) Get(name string) (Channel, bool) {
	ch, ok := m.channels[name]
	return ch, ok
}

// EnabledChannels returns the sorted names of all enabled channels.
func (m *Manager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for n := range m.channels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// StartAll starts all channels concurrently and dispatches outbound messages.
// Blocks until ctx is cancelled.
func (m *Manager) StartAll(ctx context.Context) error {
	go m.dispatchOutbound(ctx)

	for name, ch := range m.channels {
		go func(n string, c Channel) {
			slog.Info("starting channel", "name", n)
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				slog.Error("channel exited with error", "name", n, "err", err)
			}
		}(name, ch)
	}

	<-ctx.Done()
	return ctx.Err()
}

// Authorize reports whether senderID administers the chat behind dest.
// Channels that cannot tell refuse everyone.
func (m *Manager) Authorize(ctx context.Context, dest, senderID string) bool {
	name, chatID := bus.ParseRoutingKey(dest)
	ch, ok := m.channels[string(name)]
	if !ok {
		return false
	}
	checker, ok := ch.(AdminChecker)
	if !ok {
		return false
	}
	admin, err := checker.IsAdmin(ctx, chatID, senderID)
	if err != nil {
		slog.Warn("admin check failed", "channel", name, "chat", chatID, "sender", senderID, "err", err)
		return false
	}
	return admin
}

// dispatchOutbound reads from the outbound bus and routes each message to the
// appropriate channel.
func (m *Manager) dispatchOutbound(ctx context.Context) {
	for {
		select {
		case msg := <-m.b.OutboundChan():
			m.deliver(ctx, msg)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) deliver(ctx context.Context, msg bus.OutboundMessage) {
	ch, ok := m.channels[string(msg.Channel())]
	if !ok {
		slog.Debug("unknown channel for outbound message", "channel", msg.Channel())
		return
	}
	var err error
	switch msg.Kind() {
	case bus.OutboundSend:
		err = ch.Send(ctx, msg)
	case bus.OutboundDelete:
		err = ch.Delete(ctx, msg.ChatId(), msg.MessageId())
	}
	if err != nil {
		slog.Warn("outbound error", "channel", msg.Channel(), "chat", msg.ChatId(), "err", err)
	}
}
