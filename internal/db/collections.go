package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"
)

// Collection names one entity table. The names double as snapshot keys.
type Collection string

const (
	Projects Collection = "projects"
	Parts    Collection = "parts"
	Tasks    Collection = "tasks"
	Settings Collection = "settings"
	Photos   Collection = "photos"
)

// Collections lists every collection in dependency order
var Collections = []Collection{Projects, Parts, Tasks, Settings, Photos}

// Valid reports whether c is a known collection
func (c Collection) Valid() bool {
	return slices.Contains(Collections, c)
}

// Op is the kind of mutation that produced a Change
type Op string

const (
	OpCreate  Op = "create"
	OpReplace Op = "replace"
	OpRemove  Op = "remove"
	OpClear   Op = "clear"
	OpSweep   Op = "sweep"
)

// Change describes a committed mutation. ID is empty for bulk operations.
type Change struct {
	Collection Collection
	Op         Op
	ID         string
}

// Subscribe registers fn to be called after every committed mutation. The
// returned func removes the subscription.
func (db *DB) Subscribe(fn func(Change)) func() {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.nextID
	db.nextID++
	db.subs[id] = fn
	return func() {
		db.mu.Lock()
		defer db.mu.Unlock()
		delete(db.subs, id)
	}
}

func (db *DB) notify(c Change) {
	db.mu.Lock()
	subs := make([]func(Change), 0, len(db.subs))
	for _, fn := range db.subs {
		subs = append(subs, fn)
	}
	db.mu.Unlock()

	for _, fn := range subs {
		fn(c)
	}
}

// insert runs a create statement. A primary key collision is reported as
// ErrDuplicateKey and nothing is written.
func (db *DB) insert(ctx context.Context, c Collection, id, query string, args ...any) error {
	if _, err := db.sql.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("create %s %q: %w", c, id, ErrDuplicateKey)
		}
		return fmt.Errorf("%w: create %s: %w", ErrStorageWrite, c, err)
	}
	db.log.Debug("record created", "collection", c, "id", id)
	db.notify(Change{Collection: c, Op: OpCreate, ID: id})
	return nil
}

// upsert runs an insert-or-overwrite statement
func (db *DB) upsert(ctx context.Context, c Collection, id, query string, args ...any) error {
	if _, err := db.sql.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrStorageWrite, c, err)
	}
	db.log.Debug("record replaced", "collection", c, "id", id)
	db.notify(Change{Collection: c, Op: OpReplace, ID: id})
	return nil
}

// Remove deletes the record with id from c. Removing an absent id succeeds.
// Nothing cascades: parts keep pointing at a removed project and photos at
// a removed part.
func (db *DB) Remove(ctx context.Context, c Collection, id string) error {
	if !c.Valid() {
		return fmt.Errorf("remove from %q: %w", c, ErrUnknownCollection)
	}
	// c is one of the fixed table names checked above
	if _, err := db.sql.ExecContext(ctx, "DELETE FROM "+string(c)+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("%w: remove %s: %w", ErrStorageWrite, c, err)
	}
	db.log.Debug("record removed", "collection", c, "id", id)
	db.notify(Change{Collection: c, Op: OpRemove, ID: id})
	return nil
}

// ClearAll deletes every record from every collection in one transaction
func (db *DB) ClearAll(ctx context.Context) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: clear: begin: %w", ErrStorageWrite, err)
	}
	for _, c := range Collections {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(c)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: clear %s: %w", ErrStorageWrite, c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: clear: commit: %w", ErrStorageWrite, err)
	}
	db.log.Info("all collections cleared")
	for _, c := range Collections {
		db.notify(Change{Collection: c, Op: OpClear})
	}
	return nil
}

// Count returns the number of records in c
func (db *DB) Count(ctx context.Context, c Collection) (int, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("count %q: %w", c, ErrUnknownCollection)
	}
	var n int
	if err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+string(c)).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count %s: %w", ErrStorageRead, c, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func list[T any](ctx context.Context, db *DB, c Collection, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrStorageRead, c, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: %w", ErrStorageRead, c, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list %s: iterate: %w", ErrStorageRead, c, err)
	}
	return out, nil
}

func get[T any](ctx context.Context, db *DB, c Collection, scan func(scanner) (T, error), query, id string) (T, error) {
	rec, err := scan(db.sql.QueryRowContext(ctx, query, id))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, fmt.Errorf("get %s %q: %w", c, id, ErrNotFound)
		}
		return zero, fmt.Errorf("%w: get %s: %w", ErrStorageRead, c, err)
	}
	return rec, nil
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t.UTC(), nil
}
