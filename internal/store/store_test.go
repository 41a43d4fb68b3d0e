package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/noflood"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "noflood.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStore_GetUnknownIsDefault(t *testing.T) {
	s := New(nil)
	if got := s.Get(-100123); got != noflood.DefaultRecord() {
		t.Errorf("expected defaults, got %+v", got)
	}
	if s.Has(-100123) || s.Len() != 0 {
		t.Error("a read must not create a record")
	}
}

func TestStore_PutAndReload(t *testing.T) {
	db := openTestDB(t)
	s := New(db)

	rec := noflood.Record{Limit: 12, Time: 30, Purge: true, Lock: 1700000000}
	if err := s.Put(-100123, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(-100456, noflood.DefaultRecord()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	reloaded := New(db)
	if err := reloaded.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 groups, got %d", reloaded.Len())
	}
	if got := reloaded.Get(-100123); got != rec {
		t.Errorf("got %+v, want %+v", got, rec)
	}
}

func TestStore_PutReplaces(t *testing.T) {
	db := openTestDB(t)
	s := New(db)

	s.Put(-1, noflood.Record{Limit: 3, Time: 5})
	s.Put(-1, noflood.Record{Limit: 4, Time: 5})

	table, err := db.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(table) != 1 || table[-1].Limit != 4 {
		t.Errorf("unexpected table: %+v", table)
	}
}

type failingPersister struct{}

func (failingPersister) LoadAll(context.Context) (map[int64]noflood.Record, error) {
	return nil, errors.New("unreadable")
}

func (failingPersister) SaveAll(context.Context, map[int64]noflood.Record) error {
	return errors.New("read-only")
}

func TestStore_PutRollsBackOnError(t *testing.T) {
	s := New(failingPersister{})
	if err := s.Put(-1, noflood.Record{Limit: 3, Time: 5}); err == nil {
		t.Fatal("expected error")
	}
	if s.Has(-1) {
		t.Error("failed put must not leave the record behind")
	}
	if err := s.Load(context.Background()); err == nil {
		t.Error("expected load error")
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := New(nil)
	s.Put(-1, noflood.DefaultRecord())
	snap := s.Snapshot()
	snap[-2] = noflood.DefaultRecord()
	if s.Len() != 1 {
		t.Error("snapshot must not alias the table")
	}
}
