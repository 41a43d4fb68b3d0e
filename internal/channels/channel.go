package channels

import (
	"context"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/bus"
)

// Channel is the interface every chat-platform adapter must implement.
type Channel interface {
	// Name returns the unique channel identifier (e.g. "telegram").
	Name() string
	// Start begins listening for incoming messages; it blocks until ctx is cancelled.
	Start(ctx context.Context) error
	// Send posts an outbound message, removing it again after its TTL.
	Send(ctx context.Context, msg bus.OutboundMessage) error
	// Delete removes a message from a chat.
	Delete(ctx context.Context, chatID, messageID string) error
}

// AdminChecker is implemented by channels that know who administers a chat.
type AdminChecker interface {
	IsAdmin(ctx context.Context, chatID, senderID string) (bool, error)
}
