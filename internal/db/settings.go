package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tgienger/refurb/internal/models"
)

// Known preference keys
const (
	SettingCurrency = "currency"
	SettingBizName  = "bizName"
	// SettingLastTab is the tab the terminal UI reopens on
	SettingLastTab = "lastTab"
)

// DefaultCurrency is written on first run only
const DefaultCurrency = "£"

// GetSettingValue returns the stored value for key and whether it was found
func (db *DB) GetSettingValue(ctx context.Context, key string) (any, bool, error) {
	var raw string
	err := db.sql.QueryRowContext(ctx, "SELECT value FROM settings WHERE id = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get setting %q: %w", ErrStorageRead, key, err)
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false, fmt.Errorf("%w: decode setting %q: %w", ErrStorageRead, key, err)
	}
	return v, true, nil
}

// GetSetting returns the value for key as a string. An absent key reads
// as "", including the currency once it has been cleared or removed.
func (db *DB) GetSetting(ctx context.Context, key string) (string, error) {
	v, _, err := db.GetSettingValue(ctx, key)
	if err != nil {
		return "", err
	}
	return SettingString(v), nil
}

// SetSetting stores value under key, replacing any previous value
func (db *DB) SetSetting(ctx context.Context, key string, value any) error {
	return db.ReplaceSetting(ctx, models.Setting{ID: key, Value: value})
}

// ReplaceSetting writes s verbatim
func (db *DB) ReplaceSetting(ctx context.Context, s models.Setting) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("replace setting: %w", err)
	}
	raw, err := json.Marshal(s.Value)
	if err != nil {
		return fmt.Errorf("replace setting %q: encode value: %w", s.ID, err)
	}
	return db.upsert(ctx, Settings, s.ID, `
		INSERT INTO settings (id, value) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET value = excluded.value
	`, s.ID, string(raw))
}

// ListSettings returns every stored preference
func (db *DB) ListSettings(ctx context.Context) ([]models.Setting, error) {
	return list(ctx, db, Settings, scanSetting, `SELECT id, value FROM settings ORDER BY id`)
}

func scanSetting(row scanner) (models.Setting, error) {
	var (
		s   models.Setting
		raw string
	)
	if err := row.Scan(&s.ID, &raw); err != nil {
		return s, err
	}
	if err := json.Unmarshal([]byte(raw), &s.Value); err != nil {
		return s, fmt.Errorf("decode setting %q: %w", s.ID, err)
	}
	return s, nil
}

// SettingString renders a stored preference for display
func SettingString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
