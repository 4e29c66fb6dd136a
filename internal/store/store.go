// Package store defines the persistence interface for the pool engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
package store

import (
	"context"

	"github.com/openpool/pool-engine/internal/model"
)

// Store is the persistence interface. Pools are saved as full snapshots;
// the bet ledger is append-only and, replayed against a snapshot,
// reconstructs per-bettor state after a restart.
type Store interface {
	// --- Pool snapshots ---

	// CreatePool persists a new pool; fails if the ID already exists.
	CreatePool(ctx context.Context, pool *model.Pool) error

	// SavePool overwrites a pool snapshot after a state mutation.
	SavePool(ctx context.Context, pool *model.Pool) error

	// GetPool retrieves a pool by ID.
	GetPool(ctx context.Context, id string) (*model.Pool, error)

	// LoadPools returns all pools, for rehydration at startup.
	LoadPools(ctx context.Context) ([]model.Pool, error)

	// --- Immutable bet ledger ---

	// InsertBetEntry appends an immutable ledger record.
	InsertBetEntry(ctx context.Context, entry *model.BetEntry) error

	// GetBetEntriesByPool returns a pool's ledger in insertion order.
	GetBetEntriesByPool(ctx context.Context, poolID string) ([]model.BetEntry, error)

	// GetBetEntriesByBettor returns all ledger records for one bettor.
	GetBetEntriesByBettor(ctx context.Context, bettor string) ([]model.BetEntry, error)
}
