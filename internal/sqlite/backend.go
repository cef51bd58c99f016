// Package sqlite implements the persisted session slot on SQLite.
//
// The backend stores string values by key in a single kv table inside
// session.db under the configured data directory. It satisfies
// session.Slot, so a session.Persistent store can write the token
// through to it and reload it on the next run.
package sqlite

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/orchard/pkg/session"
)

//go:embed schema.sql
var schemaSQL string

// DBFileName is the database file created in the data directory.
const DBFileName = "session.db"

// Lifecycle errors.
var (
	ErrAlreadyAttached = errors.New("session backend is already attached")
	ErrDataDirEmpty    = errors.New("data directory must not be empty")
)

// Config selects where the backend keeps its database.
type Config struct {
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	return nil
}

// Backend is a key-value slot stored in SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   Config
	db       *sql.DB
}

var _ session.Slot = (*Backend)(nil)

// NewBackend creates a new, detached backend. Call Attach before use.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach creates DataDir if needed, opens session.db and applies the schema.
// Returns ErrAlreadyAttached if called twice without Detach.
func (b *Backend) Attach(config Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(config.DataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(config.DataDir, DBFileName))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writers; SQLite would otherwise
	// report SQLITE_BUSY under concurrent Put/Delete.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("apply schema: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. Idempotent: multiple calls succeed.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	err := b.db.Close()
	b.db = nil
	return err
}

// Close is Detach, so a Backend can be handed out as an io.Closer.
func (b *Backend) Close() error {
	return b.Detach()
}

// Get returns the value stored under key.
func (b *Backend) Get(key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", false, session.ErrSlotClosed
	}

	var value string
	err := b.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (b *Backend) Put(key, value string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return session.ErrSlotClosed
	}

	_, err := b.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key succeeds.
func (b *Backend) Delete(key string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return session.ErrSlotClosed
	}

	if _, err := b.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
