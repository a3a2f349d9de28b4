package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// NativeMedium is the host-provided persistent medium: a SQLite database
// holding one row per key.
type NativeMedium struct {
	db *sql.DB
}

// OpenNative creates or opens the native medium database at the given
// path. Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenNative(path string) (*NativeMedium, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &NativeMedium{db: db}, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (m *NativeMedium) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Get reads the document stored under key.
func (m *NativeMedium) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	var value string
	err := m.db.QueryRowContext(ctx,
		`SELECT value FROM documents WHERE key = ?`, string(key),
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read key %q: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set writes the document stored under key, replacing any prior value.
func (m *NativeMedium) Set(ctx context.Context, key Key, value []byte) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO documents (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, string(key), string(value), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}
	return nil
}

// Delete removes the document stored under key. Missing keys are a no-op.
func (m *NativeMedium) Delete(ctx context.Context, key Key) error {
	if _, err := m.db.ExecContext(ctx,
		`DELETE FROM documents WHERE key = ?`, string(key),
	); err != nil {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}

// Clear removes every document.
func (m *NativeMedium) Clear(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	return nil
}

// Has reports whether a document exists under key.
func (m *NativeMedium) Has(ctx context.Context, key Key) (bool, error) {
	var one int
	err := m.db.QueryRowContext(ctx,
		`SELECT 1 FROM documents WHERE key = ?`, string(key),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check key %q: %w", key, err)
	}
	return true, nil
}
