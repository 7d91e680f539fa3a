package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/abacusquest/abacusquest/internal/logger"
)

// SQLite stores entries in the kv_entries table.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Get(ctx context.Context, scope, key string) (Entry, error) {
	var e Entry
	var value string
	var deleted bool
	err := s.db.QueryRowContext(ctx, `
SELECT value, version, updated_at, deleted
FROM kv_entries
WHERE scope = ? AND key = ?
`, scope, key).Scan(&value, &e.Version, &e.UpdatedAt, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("kv_store").Error("failed to read %s/%s: %v", scope, key, err)
		return Entry{}, err
	}
	if deleted {
		return Entry{Version: e.Version}, ErrNotFound
	}
	e.Value = json.RawMessage(value)
	return e, nil
}

func (s *SQLite) Put(ctx context.Context, scope, key string, value json.RawMessage) (Entry, error) {
	now := time.Now().UTC()
	e := Entry{Value: value, UpdatedAt: now}
	err := s.db.QueryRowContext(ctx, `
INSERT INTO kv_entries (scope, key, value, version, updated_at)
VALUES (?, ?, ?, 1, ?)
ON CONFLICT(scope, key) DO UPDATE SET
    value = excluded.value,
    version = kv_entries.version + 1,
    updated_at = excluded.updated_at,
    deleted = 0
RETURNING version
`, scope, key, string(value), now).Scan(&e.Version)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("kv_store").Error("failed to write %s/%s: %v", scope, key, err)
		return Entry{}, err
	}
	return e, nil
}

func (s *SQLite) CompareAndSwap(ctx context.Context, scope, key string, expected int64, value json.RawMessage) (Entry, error) {
	log := logger.FromContext(ctx).WithPrefix("kv_store")
	now := time.Now().UTC()

	var res sql.Result
	var err error
	if expected == 0 {
		res, err = s.db.ExecContext(ctx, `
INSERT INTO kv_entries (scope, key, value, version, updated_at)
VALUES (?, ?, ?, 1, ?)
ON CONFLICT(scope, key) DO NOTHING
`, scope, key, string(value), now)
	} else {
		res, err = s.db.ExecContext(ctx, `
UPDATE kv_entries
SET value = ?, version = version + 1, updated_at = ?, deleted = 0
WHERE scope = ? AND key = ? AND version = ?
`, string(value), now, scope, key, expected)
	}
	if err != nil {
		log.Error("failed to swap %s/%s: %v", scope, key, err)
		return Entry{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Entry{}, err
	}
	if n == 0 {
		log.Debug("version conflict on %s/%s (expected %d)", scope, key, expected)
		return Entry{}, ErrVersionConflict
	}
	return Entry{Value: value, Version: expected + 1, UpdatedAt: now}, nil
}

// Delete turns the entry into a tombstone and bumps its version.
func (s *SQLite) Delete(ctx context.Context, scope, key string) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE kv_entries
SET value = 'null', version = version + 1, updated_at = ?, deleted = 1
WHERE scope = ? AND key = ? AND deleted = 0
`, time.Now().UTC(), scope, key)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("kv_store").Error("failed to delete %s/%s: %v", scope, key, err)
	}
	return err
}

func (s *SQLite) Keys(ctx context.Context, scope string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv_entries WHERE scope = ? AND deleted = 0 ORDER BY key`, scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
