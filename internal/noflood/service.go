package noflood

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/config"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/lang"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/worker"
)

// Message is a parsed group command ready for a handler.
type Message struct {
	Dest      string // routing key of the group chat
	Group     GroupInfo
	MessageID string
	SenderID  string // channel-level sender id, used for authorization
	UserID    int64
	Command   Command
}

// Service implements the configuration commands of a group.
type Service struct {
	cfg      config.NofloodConfig
	project  config.ProjectConfig
	store    ConfigStore
	broker   *Broker
	reporter *Reporter
	msgr     Messenger
	auth     Authorizer
	pool     *worker.Pool
	reducer  Reducer
	now      func() time.Time
}

func NewService(
	cfg config.NofloodConfig,
	project config.ProjectConfig,
	store ConfigStore,
	broker *Broker,
	reporter *Reporter,
	msgr Messenger,
	auth Authorizer,
	pool *worker.Pool,
) *Service {
	return &Service{
		cfg:      cfg,
		project:  project,
		store:    store,
		broker:   broker,
		reporter: reporter,
		msgr:     msgr,
		auth:     auth,
		pool:     pool,
		reducer:  Reducer{LockTTL: cfg.LockTTL, LockOnEdit: cfg.DirectEditLocks},
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// HandleConfig handles the assisted trigger "/config <sender>". The command
// message is removed in every case: at once when the sender may not configure
// the group, after the cleanup delay otherwise.
func (s *Service) HandleConfig(ctx context.Context, m Message) (handled bool) {
	delay := time.Duration(0)
	defer func() { s.cleanup(m, delay) }()
	defer s.recoverHandler(&handled, "config", m)

	if !s.auth.Authorize(ctx, m.Dest, m.SenderID) {
		return true
	}
	delay = s.cfg.CleanupDelay

	if !strings.EqualFold(m.Command.Type(), s.project.Sender) {
		return true
	}

	dispatched, err := s.broker.Request(m.Group, m.UserID, s.now())
	if err != nil {
		slog.Warn("noflood: session request failed", "gid", m.Group.ID, "uid", m.UserID, "err", err)
		return false
	}
	if !dispatched {
		slog.Debug("noflood: session refused, config locked", "gid", m.Group.ID)
		if s.cfg.ReportLockedSession {
			s.reporter.Emit(m.Dest, Report{
				AdminID: m.UserID,
				Action:  "config_create",
				Status:  ReasonLocked.LangKey(),
			}, s.cfg.ReportTTL.Failure)
		}
		return true
	}

	group := m.Group
	s.reporter.Emit(s.cfg.Debug, Report{
		AdminID: m.UserID,
		Action:  "config_create",
		Group:   &group,
	}, 0)
	return true
}

// HandleConfigDirectly handles "/config_<sender> <sub> [arg]". Exactly one
// outcome report is posted per attempt and the command is deleted at once.
func (s *Service) HandleConfigDirectly(ctx context.Context, m Message) (handled bool) {
	defer s.cleanup(m, 0)
	defer s.recoverHandler(&handled, "config_directly", m)

	if !s.auth.Authorize(ctx, m.Dest, m.SenderID) {
		return true
	}

	typ, arg := m.Command.Context()
	cur := s.store.Get(m.Group.ID)
	res := s.reducer.Reduce(cur, typ, arg, s.now())

	if res.Reason == ReasonShow {
		s.reporter.Emit(m.Dest, Report{
			AdminID: m.UserID,
			Action:  "config_show",
			Detail:  "\n" + cur.Text(),
		}, s.cfg.ReportTTL.Show)
		return true
	}

	if res.Changed {
		if err := s.store.Put(m.Group.ID, res.Record); err != nil {
			slog.Warn("noflood: commit failed", "gid", m.Group.ID, "sub", typ, "err", err)
			return false
		}
	}

	ttl := s.cfg.ReportTTL.Success
	if res.Outcome == Failure {
		ttl = s.cfg.ReportTTL.Failure
	}
	s.reporter.Emit(m.Dest, Report{
		AdminID: m.UserID,
		Action:  "config_change",
		Status:  res.Reason.LangKey(),
	}, ttl)

	slog.Info("noflood: direct edit",
		"gid", m.Group.ID,
		"uid", m.UserID,
		"sub", typ,
		"outcome", res.Outcome.String(),
		"reason", string(res.Reason),
	)
	return true
}

// HandleVersion answers "/version" in test groups.
func (s *Service) HandleVersion(_ context.Context, m Message) bool {
	colon := lang.Get("colon")
	text := lang.Get("admin") + colon + fmt.Sprintf("`%d`", m.UserID) + "\n\n" +
		lang.Get("version") + colon + "**" + s.project.Version + "**\n"
	s.reporter.send(m.Dest, text, 0)
	return true
}

func (s *Service) cleanup(m Message, delay time.Duration) {
	if m.MessageID == "" {
		return
	}
	s.pool.After(delay, "delete-command", func(ctx context.Context) error {
		return s.msgr.Delete(ctx, m.Dest, m.MessageID)
	})
}

func (s *Service) recoverHandler(handled *bool, name string, m Message) {
	if r := recover(); r != nil {
		slog.Warn("noflood: handler panic",
			"handler", name,
			"gid", m.Group.ID,
			"mid", m.MessageID,
			"panic", r,
			"stack", string(debug.Stack()),
		)
		*handled = false
	}
}
