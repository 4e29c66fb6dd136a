package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/openpool/pool-engine/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu      sync.RWMutex
	pools   map[string]*model.Pool
	entries []model.BetEntry
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pools: make(map[string]*model.Pool),
	}
}

// clonePool deep-copies a pool through JSON so callers can never mutate
// stored state.
func clonePool(p *model.Pool) *model.Pool {
	data, _ := json.Marshal(p)
	var out model.Pool
	_ = json.Unmarshal(data, &out)
	return &out
}

func (s *MemoryStore) CreatePool(_ context.Context, p *model.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pools[p.ID]; exists {
		return fmt.Errorf("pool %s already exists", p.ID)
	}
	s.pools[p.ID] = clonePool(p)
	return nil
}

func (s *MemoryStore) SavePool(_ context.Context, p *model.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pools[p.ID]; !exists {
		return fmt.Errorf("pool %s not found", p.ID)
	}
	s.pools[p.ID] = clonePool(p)
	return nil
}

func (s *MemoryStore) GetPool(_ context.Context, id string) (*model.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pools[id]
	if !ok {
		return nil, fmt.Errorf("pool %s not found", id)
	}
	return clonePool(p), nil
}

func (s *MemoryStore) LoadPools(_ context.Context) ([]model.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pools := make([]model.Pool, 0, len(s.pools))
	for _, p := range s.pools {
		pools = append(pools, *clonePool(p))
	}
	return pools, nil
}

func (s *MemoryStore) InsertBetEntry(_ context.Context, entry *model.BetEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, *entry)
	return nil
}

func (s *MemoryStore) GetBetEntriesByPool(_ context.Context, poolID string) ([]model.BetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.BetEntry
	for _, e := range s.entries {
		if e.PoolID == poolID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *MemoryStore) GetBetEntriesByBettor(_ context.Context, bettor string) ([]model.BetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.BetEntry
	for _, e := range s.entries {
		if e.Bettor == bettor {
			result = append(result, e)
		}
	}
	return result, nil
}
