package relay

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/jotkeeper/internal/common"
)

// MemoryStore is an in-process Store used in tests and by two engine
// instances wired back-to-back. Last write wins per key, like the real
// relay backend.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte

	// FailPuts, when set, makes every Put fail with the given reason.
	FailPuts UploadReason
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPuts != "" {
		return &UploadError{Reason: s.FailPuts, Err: fmt.Errorf("simulated failure")}
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, common.ErrorNotFound)
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
