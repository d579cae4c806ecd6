package docstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store with the same revision semantics as the KV
// adapter. It backs tests and offline CLI runs.
type Memory struct {
	mu   sync.Mutex
	docs map[string]Document
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]Document)}
}

// Get returns the current document at key.
func (m *Memory) Get(_ context.Context, key string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[key]
	if !ok {
		return Document{}, ErrNotFound
	}
	// Copy the value so callers can't mutate stored state.
	out := Document{Value: append([]byte(nil), doc.Value...), Revision: doc.Revision}
	return out, nil
}

// Put writes value at key guarded by expectedRevision.
func (m *Memory) Put(_ context.Context, key string, value []byte, expectedRevision uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.docs[key]
	if !exists && expectedRevision != 0 {
		return 0, ErrConflict
	}
	if exists && current.Revision != expectedRevision {
		return 0, ErrConflict
	}

	next := current.Revision + 1
	m.docs[key] = Document{Value: append([]byte(nil), value...), Revision: next}
	return next, nil
}
