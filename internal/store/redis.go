package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openpool/pool-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the cache; reads
// check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) CreatePool(ctx context.Context, p *model.Pool) error {
	if err := s.primary.CreatePool(ctx, p); err != nil {
		return err
	}
	s.cachePool(ctx, p)
	return nil
}

func (s *CachedStore) SavePool(ctx context.Context, p *model.Pool) error {
	if err := s.primary.SavePool(ctx, p); err != nil {
		return err
	}
	// Invalidate cache; next read will re-populate.
	s.rdb.Del(ctx, poolKey(p.ID))
	return nil
}

func (s *CachedStore) InsertBetEntry(ctx context.Context, entry *model.BetEntry) error {
	if err := s.primary.InsertBetEntry(ctx, entry); err != nil {
		return err
	}
	s.rdb.Del(ctx, ledgerKey(entry.PoolID))
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetPool(ctx context.Context, id string) (*model.Pool, error) {
	data, err := s.rdb.Get(ctx, poolKey(id)).Bytes()
	if err == nil {
		var p model.Pool
		if json.Unmarshal(data, &p) == nil {
			return &p, nil
		}
	}

	// Cache miss: read from primary.
	p, err := s.primary.GetPool(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cachePool(ctx, p)
	return p, nil
}

func (s *CachedStore) GetBetEntriesByPool(ctx context.Context, poolID string) ([]model.BetEntry, error) {
	data, err := s.rdb.Get(ctx, ledgerKey(poolID)).Bytes()
	if err == nil {
		var entries []model.BetEntry
		if json.Unmarshal(data, &entries) == nil {
			return entries, nil
		}
	}

	entries, err := s.primary.GetBetEntriesByPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		s.rdb.Set(ctx, ledgerKey(poolID), data, s.ttl)
	}
	return entries, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) LoadPools(ctx context.Context) ([]model.Pool, error) {
	return s.primary.LoadPools(ctx)
}

func (s *CachedStore) GetBetEntriesByBettor(ctx context.Context, bettor string) ([]model.BetEntry, error) {
	return s.primary.GetBetEntriesByBettor(ctx, bettor)
}

// --- Cache helpers ---

func (s *CachedStore) cachePool(ctx context.Context, p *model.Pool) {
	if data, err := json.Marshal(p); err == nil {
		s.rdb.Set(ctx, poolKey(p.ID), data, s.ttl)
	}
}

func poolKey(id string) string   { return fmt.Sprintf("pool:%s", id) }
func ledgerKey(id string) string { return fmt.Sprintf("ledger:%s", id) }
