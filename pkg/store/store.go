package store

import (
	"context"
	"sync"
)

// Store is a durable mapping from request fingerprint to response body.
type Store interface {
	// Get returns the body stored under fp, or ErrNotFound.
	Get(ctx context.Context, fp string) (string, error)

	// Put stores body under fp, replacing any previous body.
	Put(ctx context.Context, fp, body string) error
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, fp string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	body, ok := m.entries[fp]
	if !ok {
		return "", ErrNotFound
	}
	return body, nil
}

func (m *Memory) Put(_ context.Context, fp, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[fp] = body
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Snapshot copies the stored entries.
func (m *Memory) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(Snapshot, len(m.entries))
	for fp, body := range m.entries {
		out[fp] = body
	}
	return out
}

var _ Store = (*Memory)(nil)
