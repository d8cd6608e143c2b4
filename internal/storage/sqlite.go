package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/tartampluch/go-partners/internal/config"
)

const (
	createKVTable = `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (unixepoch())
	)
	`

	getItemStatement = `
	SELECT value FROM kv WHERE key = ?
	`

	setItemStatement = `
	INSERT INTO kv (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = unixepoch()
	`
)

// SQLite stores values in a single kv table of a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn with WAL journaling and
// ensures the kv table exists. Use ":memory:" for a throwaway store.
func OpenSQLite(dsn string) (*SQLite, error) {
	params := url.Values{}
	params.Add("_journal_mode", "WAL")
	params.Add("_synchronous", config.SyncNormal)

	constructedDSN := dsn
	if strings.Contains(dsn, "?") {
		constructedDSN += "&" + params.Encode()
	} else {
		constructedDSN += "?" + params.Encode()
	}

	db, err := sql.Open(config.SQLiteDriver, constructedDSN)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", config.ErrOpenDB, dsn, err)
	}

	// A single connection keeps ":memory:" databases coherent and matches the
	// one-writer model of the partner store.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s %q: %w", config.ErrPingDB, dsn, err)
	}

	if _, err := db.Exec(createKVTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrInitSchema, err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getItemStatement, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLite) SetItem(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, setItemStatement, key, value)
	return err
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
