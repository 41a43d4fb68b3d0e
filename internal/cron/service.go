// Package cron runs the bot's periodic jobs on robfig/cron.
//
// Job state is kept in a small JSON file so `noflood status` can show when
// each job last ran:
//
//	{ "version": 1, "jobs": [ { "name":"backup", "expr":"0 4 * * *",
//	    "state":{"nextRunAtMs":…,"lastRunAtMs":…,"lastStatus":"ok"} } ] }
package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	robfigcron "github.com/robfig/cron/v3"
)

type JobState struct {
	NextRunAtMs *int64  `json:"nextRunAtMs,omitempty"`
	LastRunAtMs *int64  `json:"lastRunAtMs,omitempty"`
	LastStatus  *string `json:"lastStatus,omitempty"`
	LastError   *string `json:"lastError,omitempty"`
}

type Job struct {
	Name  string   `json:"name"`
	Expr  string   `json:"expr"`
	State JobState `json:"state"`
}

type jobStore struct {
	Version int   `json:"version"`
	Jobs    []Job `json:"jobs"`
}

// JobFunc is the work a job performs when it fires.
type JobFunc func(ctx context.Context) error

var parser = robfigcron.NewParser(
	robfigcron.Minute | robfigcron.Hour | robfigcron.Dom | robfigcron.Month | robfigcron.Dow,
)

// Service schedules named jobs.
type Service struct {
	storePath string

	mu     sync.Mutex
	store  jobStore
	funcs  map[string]JobFunc
	scheds map[string]robfigcron.Schedule
	exprs  map[string]string
	robfig *robfigcron.Cron
}

// NewService creates a Service persisting job state at storePath.
func NewService(storePath string) *Service {
	return &Service{
		storePath: storePath,
		store:     jobStore{Version: 1},
		funcs:     make(map[string]JobFunc),
		scheds:    make(map[string]robfigcron.Schedule),
		exprs:     make(map[string]string),
		robfig:    robfigcron.New(),
	}
}

// AddJob registers fn under name with a five-field cron expression.
// An empty expression disables the job.
func (s *Service) AddJob(name, expr string, fn JobFunc) error {
	if expr == "" {
		slog.Info("cron: job disabled", "name", name)
		return nil
	}
	sched, err := parser.Parse(expr)
	if err != nil {
		return fmt.Errorf("cron: job %s: invalid expression %q: %w", name, expr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.funcs[name]; dup {
		return fmt.Errorf("cron: job %s already registered", name)
	}
	s.funcs[name] = fn
	s.scheds[name] = sched
	s.exprs[name] = expr
	slog.Info("cron: added job", "name", name, "expr", expr)
	return nil
}

// Start loads the previous job state, schedules every job and blocks until
// ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if err := s.loadLocked(); err != nil {
		slog.Warn("cron: load failed, starting empty", "err", err)
	}
	now := time.Now()
	for name, sched := range s.scheds {
		job := s.jobLocked(name)
		job.Expr = s.exprs[name]
		job.State.NextRunAtMs = msPtr(sched.Next(now))
		s.robfig.Schedule(sched, robfigcron.FuncJob(func() { s.RunJob(ctx, name) }))
	}
	s.saveLocked()
	s.mu.Unlock()

	s.robfig.Start()
	slog.Info("cron: started", "jobs", len(s.scheds))

	<-ctx.Done()
	<-s.robfig.Stop().Done()
	return ctx.Err()
}

// RunJob executes the named job now and records the outcome.
func (s *Service) RunJob(ctx context.Context, name string) bool {
	s.mu.Lock()
	fn, ok := s.funcs[name]
	s.mu.Unlock()
	if !ok {
		return false
	}

	start := time.Now()
	slog.Info("cron: executing job", "name", name)
	status := "ok"
	var lastErr *string
	if err := fn(ctx); err != nil {
		status = "error"
		e := err.Error()
		lastErr = &e
		slog.Error("cron: job failed", "name", name, "err", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.loadLocked()
	job := s.jobLocked(name)
	job.State.LastRunAtMs = msPtr(start)
	job.State.LastStatus = &status
	job.State.LastError = lastErr
	job.State.NextRunAtMs = msPtr(s.scheds[name].Next(time.Now()))
	s.saveLocked()
	return true
}

// ListJobs returns the recorded jobs sorted by name, reading the state file
// when the service has not started (CLI use).
func (s *Service) ListJobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.loadLocked()
	jobs := append([]Job(nil), s.store.Jobs...)
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].Name < jobs[k].Name })
	return jobs
}

// jobLocked returns the stored entry for name, creating it if needed.
func (s *Service) jobLocked(name string) *Job {
	for i := range s.store.Jobs {
		if s.store.Jobs[i].Name == name {
			return &s.store.Jobs[i]
		}
	}
	s.store.Jobs = append(s.store.Jobs, Job{Name: name, Expr: s.exprs[name]})
	return &s.store.Jobs[len(s.store.Jobs)-1]
}

// --------------------------------------------------------------------------
// Persistence
// --------------------------------------------------------------------------

func (s *Service) loadLocked() error {
	if len(s.store.Jobs) > 0 {
		return nil // already loaded
	}
	data, err := os.ReadFile(s.storePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var st jobStore
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	s.store = st
	return nil
}

func (s *Service) saveLocked() {
	if err := os.MkdirAll(filepath.Dir(s.storePath), 0o755); err != nil {
		slog.Warn("cron: mkdir failed", "err", err)
		return
	}
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		slog.Warn("cron: marshal failed", "err", err)
		return
	}
	if err := os.WriteFile(s.storePath, data, 0o644); err != nil {
		slog.Warn("cron: write failed", "err", err)
	}
}

func msPtr(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}
