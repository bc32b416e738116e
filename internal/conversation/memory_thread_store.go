package conversation

import (
	"context"
	"sync"
)

// MemoryThreadStore is an in-process ThreadStore for tests and local runs
// without Redis.
type MemoryThreadStore struct {
	mu      sync.RWMutex
	threads map[string][]ChatMessage
}

func NewMemoryThreadStore() *MemoryThreadStore {
	return &MemoryThreadStore{threads: make(map[string][]ChatMessage)}
}

func (s *MemoryThreadStore) Load(ctx context.Context, threadID string) ([]ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.threads[threadID]
	out := make([]ChatMessage, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryThreadStore) Replace(ctx context.Context, threadID string, history []ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]ChatMessage, len(history))
	copy(cp, history)
	s.threads[threadID] = cp
	return nil
}
