package snapshot

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var _ Store[int] = (*MemoryStore[int])(nil)

// MemoryStore keeps saved state branches in process memory, keyed by the
// id handed out when each branch was saved. It is safe for concurrent use.
type MemoryStore[T any] struct {
	mu       sync.RWMutex
	branches map[string]T
}

// NewMemoryStore returns a store with no saved branches.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{branches: make(map[string]T)}
}

// Get returns the branch saved under id. The bool is false if nothing was
// saved there; the error is always nil.
func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	branch, ok := s.branches[id]
	s.mu.RUnlock()
	return branch, ok, nil
}

// Put saves branch under id, replacing any earlier branch with that id.
func (s *MemoryStore[T]) Put(_ context.Context, id string, branch T) error {
	s.mu.Lock()
	s.branches[id] = branch
	s.mu.Unlock()
	return nil
}

// Save stores branch under a fresh id and returns the id.
func (s *MemoryStore[T]) Save(ctx context.Context, branch T) (string, error) {
	id := s.NewID()
	if err := s.Put(ctx, id, branch); err != nil {
		return "", err
	}
	return id, nil
}

// Delete forgets the branch saved under id. Unknown ids are ignored.
func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.branches, id)
	s.mu.Unlock()
	return nil
}

// IDs lists the saved branch ids in sorted order.
func (s *MemoryStore[T]) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.branches))
	for id := range s.branches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewID returns a random UUID to save the next branch under.
func (s *MemoryStore[T]) NewID() string {
	return uuid.NewString()
}
