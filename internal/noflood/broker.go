package noflood

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/config"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/exchange"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/worker"
)

// SessionAsk is the data of a config/ask envelope sent to the authority.
type SessionAsk struct {
	ProjectName string `json:"project_name"`
	ProjectLink string `json:"project_link"`
	GroupID     int64  `json:"group_id"`
	GroupName   string `json:"group_name"`
	GroupLink   string `json:"group_link"`
	UserID      int64  `json:"user_id"`
	Config      Record `json:"config"`
	Default     Record `json:"default"`
}

// Broker asks the configuration authority to open an assisted session.
type Broker struct {
	store     ConfigStore
	pub       exchange.Publisher
	pool      *worker.Pool
	project   config.ProjectConfig
	authority string
	ttl       time.Duration
}

func NewBroker(
	store ConfigStore,
	pub exchange.Publisher,
	pool *worker.Pool,
	project config.ProjectConfig,
	authority string,
	ttl time.Duration,
) *Broker {
	return &Broker{
		store:     store,
		pub:       pub,
		pool:      pool,
		project:   project,
		authority: authority,
		ttl:       ttl,
	}
}

// Request takes the group's lock, persists it, then dispatches the ask in the
// background. It returns false without side effects while the lock is held;
// an error means the lock could not be persisted and nothing was sent.
func (b *Broker) Request(group GroupInfo, userID int64, now time.Time) (bool, error) {
	cur := b.store.Get(group.ID)
	if !Unlocked(cur, now, b.ttl) {
		return false, nil
	}

	locked := Acquire(cur, now)
	if err := b.store.Put(group.ID, locked); err != nil {
		return false, fmt.Errorf("persist lock for %d: %w", group.ID, err)
	}

	env, err := exchange.NewEnvelope(b.project.Sender, []string{b.authority}, exchange.ActionConfig, exchange.TypeAsk, SessionAsk{
		ProjectName: b.project.Name,
		ProjectLink: b.project.Link,
		GroupID:     group.ID,
		GroupName:   group.Name,
		GroupLink:   group.Link,
		UserID:      userID,
		Config:      locked,
		Default:     DefaultRecord(),
	})
	if err != nil {
		return false, err
	}

	b.pool.Go("config-ask", func(ctx context.Context) error {
		if err := b.pub.Publish(ctx, env); err != nil {
			return err
		}
		slog.Info("broker: session requested", "gid", group.ID, "uid", userID, "envelope", env.ID)
		return nil
	})
	return true, nil
}
