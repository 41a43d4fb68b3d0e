package noflood

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/config"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/lang"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/worker"
)

// Report is one operator-facing notification.
type Report struct {
	AdminID int64
	Action  string // lang key
	Status  string // lang key; empty omits the line
	Detail  string // appended verbatim
	// Group, when set, adds the project/group header used on the debug channel.
	Group *GroupInfo
}

// GroupInfo identifies a group in debug reports and session requests.
type GroupInfo struct {
	ID   int64
	Name string
	Link string
}

// Reporter formats reports and sends them in the background.
type Reporter struct {
	project config.ProjectConfig
	msgr    Messenger
	pool    *worker.Pool
}

func NewReporter(project config.ProjectConfig, msgr Messenger, pool *worker.Pool) *Reporter {
	return &Reporter{project: project, msgr: msgr, pool: pool}
}

// Format renders r as chat text.
func (r *Reporter) Format(rep Report) string {
	colon := lang.Get("colon")
	var sb strings.Builder
	if rep.Group != nil {
		sb.WriteString(lang.Get("project") + colon + "**" + r.project.Name + "**\n")
		name := rep.Group.Name
		if rep.Group.Link != "" {
			name = "[" + name + "](" + rep.Group.Link + ")"
		}
		sb.WriteString(lang.Get("group_name") + colon + name + "\n")
		sb.WriteString(lang.Get("group_id") + colon + fmt.Sprintf("`%d`", rep.Group.ID) + "\n")
	}
	sb.WriteString(lang.Get("admin_group") + colon + fmt.Sprintf("`%d`", rep.AdminID) + "\n")
	sb.WriteString(lang.Get("action") + colon + "`" + lang.Get(rep.Action) + "`\n")
	if rep.Status != "" {
		sb.WriteString(lang.Get("status") + colon + "`" + lang.Get(rep.Status) + "`\n")
	}
	sb.WriteString(rep.Detail)
	return sb.String()
}

// Emit hands the report to the worker pool. Delivery failures are logged only.
func (r *Reporter) Emit(dest string, rep Report, ttl time.Duration) {
	if dest == "" {
		slog.Debug("report: no destination, dropped", "action", rep.Action)
		return
	}
	r.send(dest, r.Format(rep), ttl)
}

func (r *Reporter) send(dest, text string, ttl time.Duration) {
	r.pool.Go("report", func(ctx context.Context) error {
		if err := r.msgr.Send(ctx, dest, text, ttl); err != nil {
			return fmt.Errorf("report to %s: %w", dest, err)
		}
		return nil
	})
}
