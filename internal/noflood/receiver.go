package noflood

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/bus"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/config"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/exchange"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/lang"
)

// SessionCommit is the data of a config/commit envelope.
type SessionCommit struct {
	GroupID int64  `json:"group_id"`
	UserID  int64  `json:"user_id"`
	Config  Record `json:"config"`
}

// SessionReply is the data of a config/reply envelope.
type SessionReply struct {
	GroupID    int64  `json:"group_id"`
	UserID     int64  `json:"user_id"`
	ConfigLink string `json:"config_link"`
}

// Receiver applies the authority's answers to assisted sessions.
type Receiver struct {
	store    ConfigStore
	reporter *Reporter
	cfg      config.NofloodConfig
	project  config.ProjectConfig
	// groups is the channel hosting the groups named in envelopes.
	groups bus.ChannelType
}

func NewReceiver(
	store ConfigStore,
	reporter *Reporter,
	cfg config.NofloodConfig,
	project config.ProjectConfig,
	groups bus.ChannelType,
) *Receiver {
	return &Receiver{store: store, reporter: reporter, cfg: cfg, project: project, groups: groups}
}

// Run consumes the exchange until ctx is cancelled or the consumer closes.
func (r *Receiver) Run(ctx context.Context, c exchange.Consumer) error {
	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("start exchange consumer: %w", err)
	}
	slog.Info("receiver: listening", "name", r.project.Sender, "authority", r.cfg.Authority)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-c.Messages():
			if !ok {
				return nil
			}
			env, err := exchange.ParseEnvelope(msg.Value)
			if err != nil {
				slog.Debug("receiver: skipping malformed envelope", "err", err)
				continue
			}
			r.Handle(env)
		}
	}
}

// Handle applies one envelope and reports whether it was meant for us.
func (r *Receiver) Handle(env exchange.Envelope) bool {
	if !env.AddressedTo(r.project.Sender) || !strings.EqualFold(env.From, r.cfg.Authority) {
		return false
	}
	if env.Action != exchange.ActionConfig {
		return false
	}

	var err error
	switch env.Type {
	case exchange.TypeCommit:
		err = r.commit(env)
	case exchange.TypeReply:
		err = r.reply(env)
	default:
		return false
	}
	if err != nil {
		slog.Warn("receiver: envelope rejected", "id", env.ID, "type", env.Type, "err", err)
		return false
	}
	return true
}

// commit replaces a group's settings with the ones chosen in the session.
// The lock is kept; default is recomputed.
func (r *Receiver) commit(env exchange.Envelope) error {
	var data SessionCommit
	if err := env.Decode(&data); err != nil {
		return err
	}

	cur := r.store.Get(data.GroupID)
	next := data.Config
	next.Lock = cur.Lock
	next.Default = next.MatchesDefaults()
	if err := next.Validate(); err != nil {
		return fmt.Errorf("group %d: %w", data.GroupID, err)
	}
	if next != cur {
		if err := r.store.Put(data.GroupID, next); err != nil {
			return err
		}
	}

	r.reporter.Emit(r.cfg.Debug, Report{
		AdminID: data.UserID,
		Action:  "config_commit",
		Group:   &GroupInfo{ID: data.GroupID, Name: strconv.FormatInt(data.GroupID, 10)},
	}, 0)
	return nil
}

// reply posts the session link into the group.
func (r *Receiver) reply(env exchange.Envelope) error {
	var data SessionReply
	if err := env.Decode(&data); err != nil {
		return err
	}
	if data.ConfigLink == "" {
		return fmt.Errorf("group %d: empty config link", data.GroupID)
	}

	dest := bus.RoutingKey(r.groups, strconv.FormatInt(data.GroupID, 10))
	r.reporter.Emit(dest, Report{
		AdminID: data.UserID,
		Action:  "config_create",
		Detail:  lang.Get("config_button") + lang.Get("colon") + "[" + lang.Get("config_link") + "](" + data.ConfigLink + ")\n",
	}, r.cfg.ReportTTL.Reply)
	return nil
}
