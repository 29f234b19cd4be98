package store

import (
	"context"
	"errors"
	"sync"
)

// Keys for the three persisted blobs.
const (
	KeyTimetable  = "timetable"
	KeyAttendance = "attendance"
	KeySettings   = "settings"
)

// ErrNotFound is returned when a key has no stored blob.
var ErrNotFound = errors.New("store: key not found")

// Store persists opaque JSON blobs under named keys. Writes are
// last-write-wins; each Save replaces the whole blob.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Memory is a map-backed Store. Used in tests and as a throwaway backend.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[key] = cp
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}
