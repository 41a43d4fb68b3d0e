package noflood

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/config"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/exchange"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/worker"
)

const (
	testGroup = int64(-100123)
	testDest  = "telegram:-100123"
	testDebug = "telegram:-100999"
	testUser  = int64(7)
)

type memStore struct {
	mu   sync.Mutex
	m    map[int64]Record
	puts int
	err  error
}

func newMemStore() *memStore {
	return &memStore{m: make(map[int64]Record)}
}

func (s *memStore) Get(gid int64) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.m[gid]; ok {
		return r
	}
	return DefaultRecord()
}

func (s *memStore) Put(gid int64, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.m[gid] = r
	s.puts++
	return nil
}

func (s *memStore) Snapshot() map[int64]Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]Record, len(s.m))
	for k, v := range s.m {
		out[k] = v
	}
	return out
}

func (s *memStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

type sentText struct {
	dest string
	text string
	ttl  time.Duration
}

type fakeMessenger struct {
	mu      sync.Mutex
	sends   []sentText
	deletes []string
}

func (f *fakeMessenger) Send(_ context.Context, dest, text string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentText{dest: dest, text: text, ttl: ttl})
	return nil
}

func (f *fakeMessenger) Delete(_ context.Context, dest, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, dest+"/"+messageID)
	return nil
}

func (f *fakeMessenger) sent() []sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentText(nil), f.sends...)
}

func (f *fakeMessenger) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

type fakeAuth struct {
	deny  bool
	panic bool
}

func (a fakeAuth) Authorize(context.Context, string, string) bool {
	if a.panic {
		panic("authorizer exploded")
	}
	return !a.deny
}

type harness struct {
	cfg   config.Config
	store *memStore
	msgr  *fakeMessenger
	pub   *exchange.ChannelPublisher
	pool  *worker.Pool
	svc   *Service
	rep   *Reporter
	now   time.Time
}

func newHarness(t *testing.T, auth Authorizer) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Noflood.CleanupDelay = time.Millisecond
	cfg.Noflood.Debug = testDebug

	h := &harness{
		cfg:   cfg,
		store: newMemStore(),
		msgr:  &fakeMessenger{},
		pub:   exchange.NewChannelPublisher(nil),
		pool:  worker.NewPool(4),
		now:   t0,
	}
	h.rep = NewReporter(cfg.Project, h.msgr, h.pool)
	broker := NewBroker(h.store, h.pub, h.pool, cfg.Project, cfg.Noflood.Authority, cfg.Noflood.LockTTL)
	h.svc = NewService(cfg.Noflood, cfg.Project, h.store, broker, h.rep, h.msgr, auth, h.pool)
	h.svc.SetClock(func() time.Time { return h.now })
	return h
}

func (h *harness) message(t *testing.T, text string) Message {
	t.Helper()
	cmd, ok := ParseCommand(text, h.cfg.Noflood.Prefixes, "")
	if !ok {
		t.Fatalf("not a command: %q", text)
	}
	return Message{
		Dest:      testDest,
		Group:     GroupInfo{ID: testGroup, Name: "Test Group", Link: "https://t.me/testgroup"},
		MessageID: "42",
		SenderID:  "7",
		UserID:    testUser,
		Command:   cmd,
	}
}

// single returns the only report sent to dest.
func (h *harness) single(t *testing.T, dest string) sentText {
	t.Helper()
	var found []sentText
	for _, s := range h.msgr.sent() {
		if s.dest == dest {
			found = append(found, s)
		}
	}
	if len(found) != 1 {
		t.Fatalf("expected exactly one report to %s, got %d: %+v", dest, len(found), found)
	}
	return found[0]
}

func (h *harness) expectCommandDeleted(t *testing.T) {
	t.Helper()
	del := h.msgr.deleted()
	if len(del) != 1 || del[0] != testDest+"/42" {
		t.Fatalf("expected the command to be deleted once, got %v", del)
	}
}

func contains(t *testing.T, text, want string) {
	t.Helper()
	if !strings.Contains(text, want) {
		t.Errorf("expected %q in:\n%s", want, text)
	}
}

var errDisk = errors.New("disk full")
