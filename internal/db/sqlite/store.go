// Package sqlite implements db.ProfileStore in a local SQLite file.
// It keeps history, interactions and dismissals when no Redis is deployed.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/cityhealth/directory/internal/db"
)

var _ db.ProfileStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS profile_lists (
	seq   INTEGER PRIMARY KEY AUTOINCREMENT,
	key   TEXT NOT NULL,
	value BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_profile_lists_key ON profile_lists (key, seq DESC);
CREATE TABLE IF NOT EXISTS profile_sets (
	key    TEXT NOT NULL,
	member TEXT NOT NULL,
	PRIMARY KEY (key, member)
);
`

// Store is a ProfileStore over a single SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) profile.db inside dataDir.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, "profile.db")
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: conn, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// PushCapped appends value as the newest entry and drops entries beyond capacity.
func (s *Store) PushCapped(ctx context.Context, key string, value []byte, capacity int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpLPush, Err: err}
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profile_lists (key, value) VALUES (?, ?)`, key, value); err != nil {
		return &db.Error{Op: db.OpLPush, Err: err}
	}
	if capacity > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM profile_lists
			WHERE key = ? AND seq NOT IN (
				SELECT seq FROM profile_lists WHERE key = ? ORDER BY seq DESC LIMIT ?
			)`, key, key, capacity); err != nil {
			return &db.Error{Op: db.OpLPush, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpLPush, Err: err}
	}
	return nil
}

// Range returns up to n newest entries, newest first. n <= 0 returns all.
func (s *Store) Range(ctx context.Context, key string, n int) ([][]byte, error) {
	limit := n
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM profile_lists WHERE key = ? ORDER BY seq DESC LIMIT ?`, key, limit)
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var v []byte
		if err := rows.Scan(&v); err != nil {
			return nil, &db.Error{Op: db.OpLRange, Err: err}
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	return out, nil
}

// AddMember inserts member unless already present.
func (s *Store) AddMember(ctx context.Context, key, member string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO profile_sets (key, member) VALUES (?, ?)`, key, member); err != nil {
		return &db.Error{Op: db.OpSAdd, Err: err}
	}
	return nil
}

// Members returns the set in lexical order.
func (s *Store) Members(ctx context.Context, key string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member FROM profile_sets WHERE key = ? ORDER BY member`, key)
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, &db.Error{Op: db.OpSMembers, Err: err}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	return out, nil
}

// Del removes the list and the set stored at key.
func (s *Store) Del(ctx context.Context, key string) error {
	for _, q := range []string{
		`DELETE FROM profile_lists WHERE key = ?`,
		`DELETE FROM profile_sets WHERE key = ?`,
	} {
		if _, err := s.db.ExecContext(ctx, q, key); err != nil {
			return &db.Error{Op: db.OpDel, Err: err}
		}
	}
	return nil
}
