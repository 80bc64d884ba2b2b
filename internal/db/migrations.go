package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one additive schema step. Up runs inside a transaction that
// also records Version as the new schema version.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// Migrations is the ordered list applied by Open
var Migrations = []Migration{
	{
		Version:     1,
		Description: "create collections and seed default currency",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(schema); err != nil {
				return err
			}
			// First run only; later reads never re-apply it.
			_, err := tx.Exec(`INSERT OR IGNORE INTO settings (id, value) VALUES (?, ?)`,
				SettingCurrency, `"`+DefaultCurrency+`"`)
			return err
		},
	},
}

// CurrentVersion is the schema version this build writes
func CurrentVersion() int {
	if len(Migrations) == 0 {
		return 0
	}
	return Migrations[len(Migrations)-1].Version
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func userVersion(ctx context.Context, q querier) (int, error) {
	var v int
	if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func (db *DB) migrate(ctx context.Context, migrations []Migration) error {
	current, err := userVersion(ctx, db.sql)
	if err != nil {
		return err
	}

	latest := 0
	if len(migrations) > 0 {
		latest = migrations[len(migrations)-1].Version
	}
	if current > latest {
		return fmt.Errorf("%w: database is v%d, code knows v%d", ErrSchemaTooNew, current, latest)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		tx, err := db.sql.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration v%d: begin: %w", m.Version, err)
		}
		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration v%d (%s): %w", m.Version, m.Description, err)
		}
		// PRAGMA does not take bind parameters
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration v%d: set version: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration v%d: commit: %w", m.Version, err)
		}
		db.log.Info("schema migrated", "version", m.Version, "description", m.Description)
	}
	return nil
}
