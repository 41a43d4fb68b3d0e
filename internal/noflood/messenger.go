package noflood

import (
	"context"
	"fmt"
	"time"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/bus"
)

// BusMessenger implements Messenger by publishing outbound requests for the
// channel manager to route.
type BusMessenger struct {
	b bus.Bus
}

func NewBusMessenger(b bus.Bus) *BusMessenger {
	return &BusMessenger{b: b}
}

func (m *BusMessenger) Send(ctx context.Context, dest, text string, ttl time.Duration) error {
	ch, chatID := bus.ParseRoutingKey(dest)
	if chatID == "" {
		return fmt.Errorf("send: destination %q has no chat", dest)
	}
	return m.publish(ctx, bus.NewSendMessage(ch, chatID, text, ttl))
}

func (m *BusMessenger) Delete(ctx context.Context, dest, messageID string) error {
	ch, chatID := bus.ParseRoutingKey(dest)
	if chatID == "" || messageID == "" {
		return fmt.Errorf("delete: incomplete target %q/%q", dest, messageID)
	}
	return m.publish(ctx, bus.NewDeleteMessage(ch, chatID, messageID))
}

func (m *BusMessenger) publish(_ context.Context, msg bus.OutboundMessage) error {
	m.b.PublishOutbound(msg)
	return nil
}
