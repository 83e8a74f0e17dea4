package memory

import (
	"errors"
	"slices"
	"sort"
	"sync"

	"clusterview/internal/domain"
)

// Storage keeps finished analyses in memory, oldest evicted first once the
// limit is reached.
type Storage struct {
	mu       sync.RWMutex
	limit    int
	order    []string
	analyses map[string]domain.Analysis
}

// NewStorage creates a store holding at most limit analyses. A limit of zero
// or less means unbounded.
func NewStorage(limit int) *Storage {
	return &Storage{limit: limit, analyses: make(map[string]domain.Analysis)}
}

func (s *Storage) Put(a domain.Analysis) error {
	if a.ID == "" {
		return errors.New("analysis id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.analyses[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.analyses[a.ID] = a
	for s.limit > 0 && len(s.order) > s.limit {
		delete(s.analyses, s.order[0])
		s.order = slices.Delete(s.order, 0, 1)
	}
	return nil
}

func (s *Storage) Get(id string) (domain.Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.analyses[id]
	return a, ok
}

// List returns all analyses, newest first.
func (s *Storage) List() []domain.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Analysis, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.analyses[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.analyses = make(map[string]domain.Analysis)
	return nil
}
