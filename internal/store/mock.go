package store

import "sync"

// MemoryStore is an in-memory Backend for tests.
type MemoryStore[T any] struct {
	mu      sync.Mutex
	records map[string]T

	// Error flags for testing error conditions
	LoadError error
	SaveError error

	// SaveCount counts successful saves.
	SaveCount int
}

// NewMemoryStore returns a MemoryStore seeded with a copy of initial.
func NewMemoryStore[T any](initial map[string]T) *MemoryStore[T] {
	return &MemoryStore[T]{records: copyMap(initial)}
}

// Load returns a copy of the stored records.
func (m *MemoryStore[T]) Load() (map[string]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadError != nil {
		return make(map[string]T), m.LoadError
	}
	return copyMap(m.records), nil
}

// Save replaces the stored records with a copy of records.
func (m *MemoryStore[T]) Save(records map[string]T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveError != nil {
		return m.SaveError
	}
	m.records = copyMap(records)
	m.SaveCount++
	return nil
}

// Location identifies the fake in log lines.
func (m *MemoryStore[T]) Location() string {
	return "memory"
}

// Snapshot returns what was last saved.
func (m *MemoryStore[T]) Snapshot() map[string]T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyMap(m.records)
}

func copyMap[T any](in map[string]T) map[string]T {
	out := make(map[string]T, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
