package credential

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store. Records vanish when the process exits,
// which suits transient sessions and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Key]Record
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[Key]Record)}
}

// Get returns a copy of the record stored under key
func (s *MemoryStore) Get(_ context.Context, key Key) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(record), nil
}

// Set stores a copy of record under key
func (s *MemoryStore) Set(_ context.Context, key Key, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = copyRecord(record)
	return nil
}

// Delete removes the record under key
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
