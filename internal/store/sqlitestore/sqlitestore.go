// Package sqlitestore implements the store.SessionStore and store.PlanStore
// interfaces on top of a single-file, pure-Go SQLite database, for
// deployments that want one portable file instead of a directory of JSON
// blobs. It's a drop-in alternative to store.FileSessionStore/FilePlanStore,
// selected via config.Config.StoreBackend.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go driver, registers as "sqlite"

	"github.com/nextlevelbuilder/vtgo/internal/api"
	"github.com/nextlevelbuilder/vtgo/internal/store"
)

// DB wraps a single shared *sql.DB handle for both session and plan tables,
// so a process opens the database file once regardless of how many stores
// it needs.
type DB struct {
	sql *sql.DB
}

// Open opens (creating if absent) the sqlite database at
// <workspaceRoot>/sessions.db and ensures the schema exists.
func Open(workspaceRoot string) (*DB, error) {
	path := filepath.Join(workspaceRoot, "sessions.db")
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// modernc.org/sqlite's driver doesn't serialize writers itself; a
	// single connection avoids SQLITE_BUSY under concurrent writers from
	// this process without needing WAL-mode tuning.
	sqlDB.SetMaxOpenConns(1)

	schema := `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	body TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS plans (
	id TEXT PRIMARY KEY,
	body TEXT NOT NULL
);`
	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &DB{sql: sqlDB}, nil
}

// Close releases the underlying database handle.
func (d *DB) Close() error { return d.sql.Close() }

// SessionStore returns a store.SessionStore backed by this database.
func (d *DB) SessionStore() store.SessionStore { return &sessionStore{db: d.sql} }

// PlanStore returns a store.PlanStore backed by this database.
func (d *DB) PlanStore() store.PlanStore { return &planStore{db: d.sql} }

type sessionStore struct {
	db *sql.DB
}

func (s *sessionStore) Get(ctx context.Context, id string) (*api.Session, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM sessions WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	var session api.Session
	if err := json.Unmarshal([]byte(body), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *sessionStore) Put(ctx context.Context, id string, session *api.Session) error {
	body, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, body) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET body = excluded.body`,
		id, string(body))
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *sessionStore) Del(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *sessionStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type planStore struct {
	db *sql.DB
}

func (s *planStore) Get(ctx context.Context, id string) (*api.PlanPayload, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM plans WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query plan: %w", err)
	}
	var plan api.PlanPayload
	if err := json.Unmarshal([]byte(body), &plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	return &plan, nil
}

func (s *planStore) Put(ctx context.Context, id string, plan *api.PlanPayload) error {
	body, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plans (id, body) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET body = excluded.body`,
		id, string(body))
	if err != nil {
		return fmt.Errorf("put plan: %w", err)
	}
	return nil
}

func (s *planStore) Del(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *planStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM plans`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
