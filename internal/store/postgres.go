package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openpool/pool-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision;
// outcomes and the randomness request are stored as JSONB documents.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const poolColumns = `id, name, description, owner, max_limit::TEXT, deadline,
	kind, policy, state, paused, resolved, winning_outcome,
	balance::TEXT, resolved_balance::TEXT, outcomes, random, created_at`

func (s *PostgresStore) CreatePool(ctx context.Context, p *model.Pool) error {
	outcomes, random, err := marshalPoolDocs(p)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO pools (id, name, description, owner, max_limit, deadline,
		                    kind, policy, state, paused, resolved, winning_outcome,
		                    balance, resolved_balance, outcomes, random, created_at)
		 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6, $7, $8, $9, $10, $11, $12, $13::NUMERIC, $14::NUMERIC, $15, $16, $17)`,
		p.ID, p.Name, p.Description, p.Owner, p.MaxLimit.String(), p.Deadline,
		string(p.Kind), string(p.Policy), string(p.State), p.Paused, p.Resolved, p.WinningOutcome,
		p.Balance.String(), p.ResolvedBalance.String(), outcomes, random, p.CreatedAt,
	)
	return err
}

func (s *PostgresStore) SavePool(ctx context.Context, p *model.Pool) error {
	outcomes, random, err := marshalPoolDocs(p)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE pools
		 SET max_limit = $2::NUMERIC, deadline = $3, state = $4, paused = $5,
		     resolved = $6, winning_outcome = $7, balance = $8::NUMERIC,
		     resolved_balance = $9::NUMERIC, outcomes = $10, random = $11
		 WHERE id = $1`,
		p.ID, p.MaxLimit.String(), p.Deadline, string(p.State), p.Paused,
		p.Resolved, p.WinningOutcome, p.Balance.String(),
		p.ResolvedBalance.String(), outcomes, random,
	)
	return err
}

func (s *PostgresStore) GetPool(ctx context.Context, id string) (*model.Pool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+poolColumns+` FROM pools WHERE id = $1`, id)
	p, err := scanPool(row)
	if err != nil {
		return nil, fmt.Errorf("get pool %s: %w", id, err)
	}
	return p, nil
}

func (s *PostgresStore) LoadPools(ctx context.Context) ([]model.Pool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+poolColumns+` FROM pools ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pools []model.Pool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, err
		}
		pools = append(pools, *p)
	}
	return pools, rows.Err()
}

func (s *PostgresStore) InsertBetEntry(ctx context.Context, e *model.BetEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bet_entries (id, pool_id, bettor, kind, outcome_idx, amount, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6::NUMERIC, $7)`,
		e.ID, e.PoolID, e.Bettor, e.Kind, e.OutcomeIdx, e.Amount.String(), e.Timestamp,
	)
	return err
}

func (s *PostgresStore) GetBetEntriesByPool(ctx context.Context, poolID string) ([]model.BetEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, pool_id, bettor, kind, outcome_idx, amount::TEXT, timestamp
		 FROM bet_entries WHERE pool_id = $1 ORDER BY seq`, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBetEntries(rows)
}

func (s *PostgresStore) GetBetEntriesByBettor(ctx context.Context, bettor string) ([]model.BetEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, pool_id, bettor, kind, outcome_idx, amount::TEXT, timestamp
		 FROM bet_entries WHERE bettor = $1 ORDER BY seq`, bettor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBetEntries(rows)
}

// --- Scan helpers ---

func marshalPoolDocs(p *model.Pool) (outcomes, random []byte, err error) {
	outcomes, err = json.Marshal(p.Outcomes)
	if err != nil {
		return nil, nil, err
	}
	if p.Random != nil {
		random, err = json.Marshal(p.Random)
		if err != nil {
			return nil, nil, err
		}
	}
	return outcomes, random, nil
}

type pgxRow interface {
	Scan(dest ...interface{}) error
}

func scanPool(row pgxRow) (*model.Pool, error) {
	var (
		p                                  model.Pool
		maxLimit, balance, resolvedBalance string
		kind, policy, state                string
		outcomes, random                   []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Owner, &maxLimit, &p.Deadline,
		&kind, &policy, &state, &p.Paused, &p.Resolved, &p.WinningOutcome,
		&balance, &resolvedBalance, &outcomes, &random, &p.CreatedAt); err != nil {
		return nil, err
	}

	p.MaxLimit, _ = decimal.NewFromString(maxLimit)
	p.Balance, _ = decimal.NewFromString(balance)
	p.ResolvedBalance, _ = decimal.NewFromString(resolvedBalance)
	p.Kind = model.SettlementKind(kind)
	p.Policy = model.WinnerPolicy(policy)
	p.State = model.State(state)

	if err := json.Unmarshal(outcomes, &p.Outcomes); err != nil {
		return nil, fmt.Errorf("decode outcomes: %w", err)
	}
	if len(random) > 0 {
		p.Random = &model.RandomnessRequest{}
		if err := json.Unmarshal(random, p.Random); err != nil {
			return nil, fmt.Errorf("decode randomness request: %w", err)
		}
	}
	return &p, nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanBetEntries(rows pgxRows) ([]model.BetEntry, error) {
	var entries []model.BetEntry
	for rows.Next() {
		var e model.BetEntry
		var amount string

		if err := rows.Scan(&e.ID, &e.PoolID, &e.Bettor, &e.Kind,
			&e.OutcomeIdx, &amount, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Amount, _ = decimal.NewFromString(amount)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
