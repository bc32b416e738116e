package policy

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and loader dry-runs.
type MemoryStore struct {
	mu       sync.RWMutex
	byNumber map[string]*Policy
	order    []string
}

// NewMemoryStore creates an empty in-memory policy store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byNumber: make(map[string]*Policy)}
}

func (s *MemoryStore) FindByNumber(ctx context.Context, number string) (*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byNumber[number]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) ListNumbers(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	numbers := make([]string, len(s.order))
	copy(numbers, s.order)
	return numbers, nil
}

func (s *MemoryStore) ListSpans(ctx context.Context) ([]Span, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spans := make([]Span, 0, len(s.order))
	for _, number := range s.order {
		p := s.byNumber[number]
		spans = append(spans, Span{
			PolicyNumber:  p.PolicyNumber,
			EffectiveFrom: p.EffectiveFrom,
			EffectiveTo:   p.EffectiveTo,
		})
	}
	return spans, nil
}

func (s *MemoryStore) InsertIfAbsent(ctx context.Context, p *Policy) (*Policy, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byNumber[p.PolicyNumber]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *p
	s.byNumber[p.PolicyNumber] = &cp
	s.order = append(s.order, p.PolicyNumber)
	return p, true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, number string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byNumber[number]; !ok {
		return false, nil
	}
	delete(s.byNumber, number)
	for i, n := range s.order {
		if n == number {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}
