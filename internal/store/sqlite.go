package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/noflood"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS configs (
	group_id INTEGER PRIMARY KEY,
	is_default BOOLEAN NOT NULL,
	lock_at INTEGER NOT NULL DEFAULT 0,
	msg_limit INTEGER NOT NULL,
	time_window INTEGER NOT NULL,
	del BOOLEAN NOT NULL,
	purge BOOLEAN NOT NULL
)`

// SQLite persists the config table in a sqlite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply store schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// LoadAll reads every stored record.
func (s *SQLite) LoadAll(ctx context.Context) (map[int64]noflood.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, is_default, lock_at, msg_limit, time_window, del, purge FROM configs`)
	if err != nil {
		return nil, fmt.Errorf("query configs: %w", err)
	}
	defer rows.Close()

	table := make(map[int64]noflood.Record)
	for rows.Next() {
		var gid int64
		var r noflood.Record
		if err := rows.Scan(&gid, &r.Default, &r.Lock, &r.Limit, &r.Time, &r.Delete, &r.Purge); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		table[gid] = r
	}
	return table, rows.Err()
}

// SaveAll rewrites the whole table in one transaction.
func (s *SQLite) SaveAll(ctx context.Context, table map[int64]noflood.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM configs`); err != nil {
		return fmt.Errorf("clear configs: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO configs (group_id, is_default, lock_at, msg_limit, time_window, del, purge) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for gid, r := range table {
		if _, err := stmt.ExecContext(ctx, gid, r.Default, r.Lock, r.Limit, r.Time, r.Delete, r.Purge); err != nil {
			return fmt.Errorf("insert config %d: %w", gid, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
