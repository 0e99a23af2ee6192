package cache

import (
	"context"
	"sync"
)

// Memory is an ephemeral in-memory Store using sync.Map for fine-grained
// concurrent access without global lock contention. It is created at run
// start and discarded with the run.
type Memory struct {
	entries sync.Map // Key -> *Entry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns the entry for a key, if present.
func (m *Memory) Get(_ context.Context, key Key) (*Entry, bool, error) {
	v, ok := m.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	return v.(*Entry), true, nil
}

// Put stores the entry unless the key is already populated. LoadOrStore
// keeps the first write and discards later ones, preserving write-once
// semantics under concurrency.
func (m *Memory) Put(_ context.Context, key Key, entry *Entry) error {
	m.entries.LoadOrStore(key, entry)
	return nil
}

// InvalidateAll discards every entry.
func (m *Memory) InvalidateAll(_ context.Context) error {
	m.entries.Range(func(k, _ any) bool {
		m.entries.Delete(k)
		return true
	})
	return nil
}
