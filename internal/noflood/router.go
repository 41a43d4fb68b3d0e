package noflood

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/bus"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/config"
)

// Router consumes the inbound bus and hands group commands to the Service.
type Router struct {
	b       bus.Bus
	svc     *Service
	cfg     config.NofloodConfig
	project config.ProjectConfig
}

func NewRouter(b bus.Bus, svc *Service, cfg config.NofloodConfig, project config.ProjectConfig) *Router {
	return &Router{b: b, svc: svc, cfg: cfg, project: project}
}

// Run dispatches inbound messages until ctx is cancelled. Every message is
// handled on its own goroutine; handlers never block one another.
func (r *Router) Run(ctx context.Context) error {
	slog.Info("router: started", "sender", r.project.Sender)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-r.b.InboundChan():
			go r.Dispatch(ctx, msg)
		}
	}
}

// Dispatch matches one inbound message against the group commands and
// reports whether a handler accepted it.
func (r *Router) Dispatch(ctx context.Context, in bus.InboundMessage) bool {
	if !in.MetaBool(bus.MetaIsGroup) {
		return false
	}
	cmd, ok := ParseCommand(in.Content(), r.cfg.Prefixes, in.MetaString(bus.MetaBotUsername))
	if !ok {
		return false
	}
	gid, err := strconv.ParseInt(in.ChatId(), 10, 64)
	if err != nil {
		slog.Debug("router: non-numeric chat id", "chat", in.ChatId())
		return false
	}

	m := Message{
		Dest: in.RoutingKey(),
		Group: GroupInfo{
			ID:   gid,
			Name: in.MetaString(bus.MetaChatTitle),
			Link: in.MetaString(bus.MetaChatLink),
		},
		SenderID: in.SenderId(),
		Command:  cmd,
	}
	if uid, ok := in.MetaInt64(bus.MetaUserID); ok {
		m.UserID = uid
	}
	if mid, ok := in.MetaInt64(bus.MetaMessageID); ok {
		m.MessageID = strconv.FormatInt(mid, 10)
	}

	test := r.cfg.IsTestGroup(gid)
	switch cmd.Name {
	case "config":
		if test {
			return false
		}
		return r.svc.HandleConfig(ctx, m)
	case "config_" + strings.ToLower(r.project.Sender):
		if test {
			return false
		}
		return r.svc.HandleConfigDirectly(ctx, m)
	case "version":
		if !test {
			return false
		}
		return r.svc.HandleVersion(ctx, m)
	}
	return false
}
