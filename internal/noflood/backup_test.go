package noflood

import (
	"context"
	"testing"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/bus"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/exchange"
)

func TestBackupJob_PublishesSnapshot(t *testing.T) {
	store := newMemStore()
	store.m[testGroup] = Record{Limit: 7, Time: 25}
	store.m[-100456] = DefaultRecord()
	pub := exchange.NewChannelPublisher(nil)

	if err := BackupJob(store, pub, "NOFLOOD", "BACKUP")(context.Background()); err != nil {
		t.Fatal(err)
	}

	sent := pub.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one envelope, got %d", len(sent))
	}
	env := sent[0]
	if env.Action != exchange.ActionBackup || env.Type != exchange.TypeConfigs || !env.AddressedTo("BACKUP") {
		t.Errorf("unexpected envelope: %+v", env)
	}
	var table map[int64]Record
	if err := env.Decode(&table); err != nil {
		t.Fatal(err)
	}
	if len(table) != 2 || table[testGroup].Limit != 7 {
		t.Errorf("unexpected table: %+v", table)
	}
}

func TestBackupJob_PublishError(t *testing.T) {
	pub := exchange.NewChannelPublisher(nil)
	pub.FailWith(errDisk)
	if err := BackupJob(newMemStore(), pub, "NOFLOOD", "BACKUP")(context.Background()); err == nil {
		t.Error("expected publish error")
	}
}

func TestBroker_LockedReturnsFalse(t *testing.T) {
	h := newHarness(t, fakeAuth{})
	rec := DefaultRecord()
	rec.Lock = t0.Unix() - 100
	h.store.m[testGroup] = rec

	broker := NewBroker(h.store, h.pub, h.pool, h.cfg.Project, "CONFIG", testTTL)
	ok, err := broker.Request(GroupInfo{ID: testGroup}, testUser, t0)
	if ok || err != nil {
		t.Fatalf("expected silent refusal, got %v %v", ok, err)
	}
	h.pool.Wait()
	if len(h.pub.Sent()) != 0 || h.store.putCount() != 0 {
		t.Error("refused request must have no side effects")
	}
}

func TestBroker_PersistFailure(t *testing.T) {
	h := newHarness(t, fakeAuth{})
	h.store.err = errDisk

	broker := NewBroker(h.store, h.pub, h.pool, h.cfg.Project, "CONFIG", testTTL)
	if _, err := broker.Request(GroupInfo{ID: testGroup}, testUser, t0); err == nil {
		t.Fatal("expected persist error")
	}
	h.pool.Wait()
	if len(h.pub.Sent()) != 0 {
		t.Error("nothing may be sent when the lock was not stored")
	}
}

func TestBusMessenger(t *testing.T) {
	b := bus.NewMessageBus(4)
	m := NewBusMessenger(b)

	if err := m.Send(context.Background(), "telegram:-100123", "hi", 5); err != nil {
		t.Fatal(err)
	}
	out := <-b.OutboundChan()
	if out.Kind() != bus.OutboundSend || out.Channel() != bus.ChannelTelegram || out.ChatId() != "-100123" || out.TTL() != 5 {
		t.Errorf("unexpected send: %+v", out)
	}

	if err := m.Delete(context.Background(), "telegram:-100123", "42"); err != nil {
		t.Fatal(err)
	}
	out = <-b.OutboundChan()
	if out.Kind() != bus.OutboundDelete || out.MessageId() != "42" {
		t.Errorf("unexpected delete: %+v", out)
	}

	if err := m.Send(context.Background(), "telegram", "hi", 0); err == nil {
		t.Error("expected error for destination without chat")
	}
	if err := m.Delete(context.Background(), "telegram:-100123", ""); err == nil {
		t.Error("expected error for missing message id")
	}
}

func TestReporter_Format(t *testing.T) {
	h := newHarness(t, fakeAuth{})
	text := h.rep.Format(Report{AdminID: 7, Action: "config_change", Status: "config_updated"})
	want := "Group Admin: `7`\nAction: `Change Config`\nStatus: `Updated`\n"
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}

	text = h.rep.Format(Report{AdminID: 7, Action: "config_create", Group: &GroupInfo{ID: -1, Name: "G"}})
	contains(t, text, "Project: **SCP-079-NOFLOOD**\n")
	contains(t, text, "Group Name: G\n")
	contains(t, text, "Group ID: `-1`\n")
}
