// Package channels provides chat-platform channel implementations.
package channels

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/bus"
)

// Base holds common state and helper methods shared by all channels.
type Base struct {
	channelName bus.ChannelType
	b           bus.Bus
	allowFrom   []string // chat ids served; empty = all
}

// NewBase creates a Base with the given channel name, bus, and chat allowlist.
func NewBase(name bus.ChannelType, b bus.Bus, allowFrom []string) Base {
	return Base{channelName: name, b: b, allowFrom: allowFrom}
}

// IsAllowed checks whether chatID is on the allowlist.
func (b *Base) IsAllowed(chatID string) bool {
	if len(b.allowFrom) == 0 {
		return true
	}
	for _, allowed := range b.allowFrom {
		if allowed == chatID {
			return true
		}
	}
	return false
}

// HandleMessage verifies the chat is served, then pushes an InboundMessage to the bus.
func (b *Base) HandleMessage(senderId, chatId, content string, metadata map[string]any) {
	if !b.IsAllowed(chatId) {
		slog.Debug("chat not served", "channel", b.channelName, "chat", chatId)
		return
	}

	msg := bus.NewInboundMessage(b.channelName, senderId, chatId, content)
	msg.SetMetadata(metadata)
	b.b.PublishInbound(msg)
}

// expire schedules del after ttl; ttl <= 0 keeps the message.
func (b *Base) expire(ttl time.Duration, chatID, messageID string, del func(ctx context.Context, chatID, messageID string) error) {
	if ttl <= 0 || messageID == "" {
		return
	}
	time.AfterFunc(ttl, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := del(ctx, chatID, messageID); err != nil {
			slog.Warn("expire: delete failed", "channel", b.channelName, "chat", chatID, "message", messageID, "err", err)
		}
	})
}

// splitMessage splits content into chunks that fit within maxLen,
// preferring newline breaks, then space breaks, then hard cut.
func splitMessage(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}
	var chunks []string
	for len(content) > 0 {
		if len(content) <= maxLen {
			chunks = append(chunks, content)
			break
		}
		cut := content[:maxLen]
		pos := strings.LastIndex(cut, "\n")
		if pos <= 0 {
			pos = strings.LastIndex(cut, " ")
		}
		if pos <= 0 {
			pos = maxLen
		}
		chunks = append(chunks, content[:pos])
		content = strings.TrimLeft(content[pos:], " \t\n")
	}
	return chunks
}
