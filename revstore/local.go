package revstore

import (
	"context"
	"sync"
)

// Local keeps revisions in-process (default). One entry per namespace,
// so no retention or cleanup is needed.
type Local struct {
	mu   sync.RWMutex
	revs map[string]uint64
}

func NewLocal() *Local {
	return &Local{revs: make(map[string]uint64)}
}

func (s *Local) Current(_ context.Context, k string) (uint64, error) {
	s.mu.RLock()
	r := s.revs[k] // zero value (0) if missing
	s.mu.RUnlock()
	return r, nil
}

func (s *Local) Bump(_ context.Context, k string) (uint64, error) {
	s.mu.Lock()
	s.revs[k]++
	r := s.revs[k]
	s.mu.Unlock()
	return r, nil
}

func (s *Local) Advance(_ context.Context, k string, rev uint64) error {
	s.mu.Lock()
	if rev > s.revs[k] {
		s.revs[k] = rev
	}
	s.mu.Unlock()
	return nil
}

func (s *Local) Close(context.Context) error { return nil }
