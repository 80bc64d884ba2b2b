package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// MemoryPath opens a private in-memory database. No lock file is taken.
const MemoryPath = ":memory:"

// DB owns the connection to the local database file. All access goes
// through its methods.
type DB struct {
	sql  *sql.DB
	path string
	lock *flock.Flock
	log  *slog.Logger

	mu     sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

// Option configures Open
type Option func(*DB)

// WithLogger sets the logger used for storage events
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.log = l
		}
	}
}

// Open opens (creating if needed) the database at path and brings its schema
// up to date. Every failure wraps ErrStorageUnavailable.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	db := &DB{
		path: path,
		log:  slog.Default(),
		subs: map[int]func(Change){},
	}
	for _, opt := range opts {
		opt(db)
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty database path", ErrStorageUnavailable)
	}

	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("%w: create data dir: %w", ErrStorageUnavailable, err)
		}

		db.lock = flock.New(path + ".lock")
		locked, err := db.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("%w: lock %s: %w", ErrStorageUnavailable, path, err)
		}
		if !locked {
			return nil, fmt.Errorf("%w: %s is in use by another process", ErrStorageUnavailable, path)
		}
		dsn = path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		db.unlock()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	// One logical writer; every repository call is its own transaction.
	conn.SetMaxOpenConns(1)
	db.sql = conn

	if err := conn.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if err := db.migrate(ctx, Migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	db.log.Info("database opened", "path", path, "version", CurrentVersion())
	return db, nil
}

// Close releases the connection and the file lock
func (db *DB) Close() error {
	if db == nil {
		return nil
	}
	var err error
	if db.sql != nil {
		err = db.sql.Close()
	}
	db.unlock()
	return err
}

func (db *DB) unlock() {
	if db.lock != nil {
		_ = db.lock.Unlock()
	}
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Version returns the schema version stored in the database
func (db *DB) Version(ctx context.Context) (int, error) {
	return userVersion(ctx, db.sql)
}
