// Package heartbeat periodically logs that the gateway is alive, along with
// the depth of its queues, so a stalled router shows up in the logs.
package heartbeat

import (
	"context"
	"log/slog"
	"time"
)

// QueueSizer reports pending bus messages.
type QueueSizer interface {
	InboundSize() int
	OutboundSize() int
}

// Counter reports the number of configured groups.
type Counter interface {
	Len() int
}

// Probe collects the figures logged on each beat. Nil fields are skipped.
type Probe struct {
	Bus   QueueSizer
	Store Counter
}

// Attrs returns the probe's figures as slog key/value pairs.
func (p Probe) Attrs() []any {
	var attrs []any
	if p.Bus != nil {
		attrs = append(attrs, "inbound", p.Bus.InboundSize(), "outbound", p.Bus.OutboundSize())
	}
	if p.Store != nil {
		attrs = append(attrs, "groups", p.Store.Len())
	}
	return attrs
}

// Service runs the heartbeat loop.
type Service struct {
	probe    Probe
	interval time.Duration
}

// NewService creates a heartbeat Service.
// interval defaults to 30 minutes if zero.
func NewService(probe Probe, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	return &Service{
		probe:    probe,
		interval: interval,
	}
}

// Start runs the heartbeat loop until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("heartbeat: started", "interval", s.interval)

	for {
		select {
		case <-ticker.C:
			slog.Info("heartbeat: alive", s.probe.Attrs()...)
		case <-ctx.Done():
			slog.Info("heartbeat: stopped")
			return ctx.Err()
		}
	}
}
