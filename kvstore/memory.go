package kvstore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	metadata  map[string]string
	expiresAt time.Time // zero value means no expiry
}

// MemoryStore is an in-process Store backed by a map, used by tests
// and by single-process deployments that don't need a shared backend.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: map[string]memoryEntry{},
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return Entry{}, false, nil
	}

	value := append([]byte{}, e.value...)
	metadata := make(map[string]string, len(e.metadata))
	for k, v := range e.metadata {
		metadata[k] = v
	}
	return Entry{Value: value, Metadata: metadata}, true, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	stored := append([]byte{}, value...)
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	s.entries[key] = memoryEntry{value: stored, metadata: meta, expiresAt: expiresAt}
	return nil
}
