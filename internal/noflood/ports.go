package noflood

import (
	"context"
	"time"
)

// ConfigStore holds one Record per group. Get never fails: an unknown group
// reads as the defaults. Put persists synchronously and is expensive.
type ConfigStore interface {
	Get(gid int64) Record
	Put(gid int64, r Record) error
}

// Snapshotter exposes a copy of the whole config table.
type Snapshotter interface {
	Snapshot() map[int64]Record
}

// Messenger delivers text to and removes messages from chats addressed by
// routing key ("telegram:-100123").
type Messenger interface {
	Send(ctx context.Context, dest, text string, ttl time.Duration) error
	Delete(ctx context.Context, dest, messageID string) error
}

// Authorizer decides whether senderID may configure the bot in chatID.
type Authorizer interface {
	Authorize(ctx context.Context, dest, senderID string) bool
}
