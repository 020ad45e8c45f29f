// Package registry persists group registrations so identifiers stay
// reserved across restarts.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pixil98/go-realm/internal/game"
)

type SQLiteRegistry struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteRegistry, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteRegistry{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS groups (
		id INTEGER PRIMARY KEY,
		leader_id INTEGER NOT NULL,
		raid INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);`)
	return err
}

func (r *SQLiteRegistry) Register(ctx context.Context, rec game.GroupRecord) error {
	raid := 0
	if rec.Raid {
		raid = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO groups (id, leader_id, raid, created_at) VALUES (?, ?, ?, ?)`,
		int64(rec.ID), int64(rec.LeaderID), raid, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("registering group %d: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRegistry) Unregister(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("unregistering group %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}
