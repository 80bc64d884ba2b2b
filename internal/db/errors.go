package db

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrStorageUnavailable means the database could not be opened at all.
	// Nothing works without it, so callers treat it as fatal.
	ErrStorageUnavailable = errors.New("db: storage unavailable")
	ErrDuplicateKey       = errors.New("db: duplicate key")
	ErrStorageRead        = errors.New("db: read failed")
	ErrStorageWrite       = errors.New("db: write failed")
	ErrNotFound           = errors.New("db: not found")
	ErrSchemaTooNew       = errors.New("db: schema version newer than code")
	ErrUnknownCollection  = errors.New("db: unknown collection")
)

func isDuplicateKey(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
