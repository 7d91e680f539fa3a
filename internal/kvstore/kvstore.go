// Package kvstore persists small JSON documents per scope with versioned writes.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrNotFound        = errors.New("kvstore: key not found")
	ErrVersionConflict = errors.New("kvstore: version conflict")
)

// MaxSwapAttempts bounds the retries of Update under contention.
const MaxSwapAttempts = 8

// Entry is a stored value. Version starts at 1 and increases on every write
// and every delete; version 0 stands for "never written" in CompareAndSwap.
type Entry struct {
	Value     json.RawMessage
	Version   int64
	UpdatedAt time.Time
}

// Store is a scoped key-value store. Scopes partition keys per student.
//
// Delete leaves a tombstone that keeps the key's version, so a swap prepared
// before a delete can never succeed after the key is written again.
type Store interface {
	// Get returns ErrNotFound for absent and deleted keys. For a deleted key
	// the returned Entry carries the tombstone's version.
	Get(ctx context.Context, scope, key string) (Entry, error)
	Put(ctx context.Context, scope, key string, value json.RawMessage) (Entry, error)
	// CompareAndSwap writes value only if the current version equals expected.
	CompareAndSwap(ctx context.Context, scope, key string, expected int64, value json.RawMessage) (Entry, error)
	Delete(ctx context.Context, scope, key string) error
	Keys(ctx context.Context, scope string) ([]string, error)
}

// GetJSON decodes the value under key into dst and returns its version.
// A missing or deleted key leaves dst untouched and returns the version a
// CompareAndSwap must expect to recreate it.
func GetJSON(ctx context.Context, s Store, scope, key string, dst any) (int64, error) {
	e, err := s.Get(ctx, scope, key)
	if errors.Is(err, ErrNotFound) {
		return e.Version, nil
	}
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(e.Value, dst); err != nil {
		return 0, fmt.Errorf("decode %s/%s: %w", scope, key, err)
	}
	return e.Version, nil
}

// PutJSON encodes v and writes it unconditionally.
func PutJSON(ctx context.Context, s Store, scope, key string, v any) (int64, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s/%s: %w", scope, key, err)
	}
	e, err := s.Put(ctx, scope, key, raw)
	if err != nil {
		return 0, err
	}
	return e.Version, nil
}

// SwapJSON encodes v and writes it if the stored version is still expected.
func SwapJSON(ctx context.Context, s Store, scope, key string, expected int64, v any) (int64, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s/%s: %w", scope, key, err)
	}
	e, err := s.CompareAndSwap(ctx, scope, key, expected, raw)
	if err != nil {
		return 0, err
	}
	return e.Version, nil
}

// Update reads the document under key into a fresh T, applies fn and writes
// the result back with CompareAndSwap, retrying from a fresh read on version
// conflicts. When fn reports false nothing is written. Update returns the
// document as last seen and whether this call wrote it.
func Update[T any](ctx context.Context, s Store, scope, key string, fn func(*T) (bool, error)) (T, bool, error) {
	for attempt := 0; attempt < MaxSwapAttempts; attempt++ {
		var doc T
		version, err := GetJSON(ctx, s, scope, key, &doc)
		if err != nil {
			return doc, false, err
		}
		write, err := fn(&doc)
		if err != nil || !write {
			return doc, false, err
		}
		_, err = SwapJSON(ctx, s, scope, key, version, doc)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return doc, false, err
		}
		return doc, true, nil
	}
	var zero T
	return zero, false, fmt.Errorf("update %s/%s: %w after %d attempts", scope, key, ErrVersionConflict, MaxSwapAttempts)
}

// StudentScope is the scope holding one student's documents.
func StudentScope(studentID int64) string {
	return "student:" + strconv.FormatInt(studentID, 10)
}
