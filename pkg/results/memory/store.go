package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/aretw0/greenscreen/pkg/domain"
)

// Store implements ports.ResultStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Result
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Result),
	}
}

// Save keeps a copy of the result.
func (s *Store) Save(ctx context.Context, result *domain.Result) error {
	if result.RunID == "" {
		return errors.New("result has no run ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[result.RunID] = clone(result)
	return nil
}

// Load returns a copy so callers cannot mutate stored results.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrResultNotFound
	}
	return clone(res), nil
}

// Delete removes the result.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns stored run IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func clone(r *domain.Result) *domain.Result {
	out := *r
	out.Data = make(map[string]string, len(r.Data))
	for k, v := range r.Data {
		out.Data[k] = v
	}
	out.Log = slices.Clone(r.Log)
	return &out
}
