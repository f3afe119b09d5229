package store

import (
	"context"
	"database/sql"
	"errors"
)

// GetSetting returns the stored value for key.
//
// found is false, with a nil error, when no row exists. A stored payload
// that is not valid JSON is a KindData error: settings drive application
// behavior, so they are never silently replaced.
func (s *Store) GetSetting(ctx context.Context, key string) (value any, found bool, err error) {
	err = s.session(ctx, func(db *sql.DB) error {
		var valueJSON string
		scanErr := db.QueryRowContext(ctx,
			`SELECT value_json FROM app_settings WHERE key = ?`, key,
		).Scan(&valueJSON)
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil
		}
		if scanErr != nil {
			return newError(KindQuery, "query setting", scanErr)
		}

		v, parseErr := unmarshalSetting(valueJSON)
		if parseErr != nil {
			return newError(KindData, "get setting "+key, parseErr)
		}
		value, found = v, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// SetSetting replaces the value stored under key and refreshes updated_at.
func (s *Store) SetSetting(ctx context.Context, key string, value any) error {
	if key == "" {
		return newError(KindData, "set setting", errors.New("setting key is empty"))
	}

	valueJSON, err := marshalSetting(value)
	if err != nil {
		return newError(KindData, "set setting "+key, err)
	}
	now := s.now()

	return s.session(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO app_settings (key, value_json, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
			  value_json=excluded.value_json,
			  updated_at=excluded.updated_at
		`, key, valueJSON, now)
		if err != nil {
			return newError(KindQuery, "upsert setting", err)
		}
		return nil
	})
}
