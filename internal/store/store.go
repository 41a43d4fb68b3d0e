// Package store keeps the per-group config table in memory and persists the
// whole table on every change.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/noflood"
)

// Persister saves and restores the complete config table.
type Persister interface {
	LoadAll(ctx context.Context) (map[int64]noflood.Record, error)
	SaveAll(ctx context.Context, table map[int64]noflood.Record) error
}

// Store is the in-memory config table. Reads never touch the persister.
type Store struct {
	mu      sync.RWMutex
	configs map[int64]noflood.Record
	p       Persister
}

// New creates an empty Store. p may be nil for a memory-only table.
func New(p Persister) *Store {
	return &Store{configs: make(map[int64]noflood.Record), p: p}
}

// Load replaces the table with the persisted one.
func (s *Store) Load(ctx context.Context) error {
	if s.p == nil {
		return nil
	}
	table, err := s.p.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load config table: %w", err)
	}
	s.mu.Lock()
	s.configs = table
	s.mu.Unlock()
	return nil
}

// Get returns the group's record, or the defaults for an unknown group.
func (s *Store) Get(gid int64) noflood.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.configs[gid]; ok {
		return r
	}
	return noflood.DefaultRecord()
}

// Has reports whether gid has a stored record.
func (s *Store) Has(gid int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.configs[gid]
	return ok
}

// Put replaces the group's record and writes the whole table. On a write
// error the previous record is restored.
func (s *Store) Put(gid int64, r noflood.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.configs[gid]
	s.configs[gid] = r
	if s.p == nil {
		return nil
	}
	if err := s.p.SaveAll(context.Background(), s.configs); err != nil {
		if existed {
			s.configs[gid] = prev
		} else {
			delete(s.configs, gid)
		}
		return fmt.Errorf("save config table: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the table.
func (s *Store) Snapshot() map[int64]noflood.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]noflood.Record, len(s.configs))
	for gid, r := range s.configs {
		out[gid] = r
	}
	return out
}

// Len returns the number of stored groups.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.configs)
}
