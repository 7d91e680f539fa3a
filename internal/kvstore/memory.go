package kvstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

type memoryKey struct {
	scope string
	key   string
}

// Memory is an in-process Store, used by tests and the CLI.
type Memory struct {
	mu      sync.Mutex
	entries map[memoryKey]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	Entry
	deleted bool
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[memoryKey]memoryEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, scope, key string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[memoryKey{scope, key}]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if e.deleted {
		return Entry{Version: e.Version}, ErrNotFound
	}
	return copyEntry(e.Entry), nil
}

func (m *Memory) Put(_ context.Context, scope, key string, value json.RawMessage) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memoryKey{scope, key}
	e := Entry{Value: append(json.RawMessage(nil), value...), Version: m.entries[k].Version + 1, UpdatedAt: m.now()}
	m.entries[k] = memoryEntry{Entry: e}
	return copyEntry(e), nil
}

func (m *Memory) CompareAndSwap(_ context.Context, scope, key string, expected int64, value json.RawMessage) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memoryKey{scope, key}
	if m.entries[k].Version != expected {
		return Entry{}, ErrVersionConflict
	}
	e := Entry{Value: append(json.RawMessage(nil), value...), Version: expected + 1, UpdatedAt: m.now()}
	m.entries[k] = memoryEntry{Entry: e}
	return copyEntry(e), nil
}

func (m *Memory) Delete(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memoryKey{scope, key}
	e, ok := m.entries[k]
	if !ok || e.deleted {
		return nil
	}
	m.entries[k] = memoryEntry{Entry: Entry{Version: e.Version + 1, UpdatedAt: m.now()}, deleted: true}
	return nil
}

func (m *Memory) Keys(_ context.Context, scope string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k, e := range m.entries {
		if k.scope == scope && !e.deleted {
			keys = append(keys, k.key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func copyEntry(e Entry) Entry {
	e.Value = append(json.RawMessage(nil), e.Value...)
	return e
}
