// Package engine implements the settlement engine for one wagering pool:
// its bet and outcome ledgers, the Open→Closed→{Resolving→}Resolved
// lifecycle, oracle-driven outcome selection, randomness-driven
// single-winner selection, and payout math.
//
// Every public operation runs to completion under the engine's mutex and
// either fully applies or returns an error with no partial effects. The
// one asynchronous boundary is the randomness request/callback pair: a
// single-winner resolution parks the pool in Resolving until the
// provider's callback arrives through OnRandomness.
//
// All monetary values use shopspring/decimal — never float64 for money.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openpool/pool-engine/internal/host"
	"github.com/openpool/pool-engine/internal/model"
	"github.com/openpool/pool-engine/internal/odds"
	"github.com/openpool/pool-engine/internal/oracle"
	"github.com/openpool/pool-engine/internal/rng"
)

// DefaultReissueDelay is the minimum time a randomness request must have
// been outstanding before the owner may reissue it.
const DefaultReissueDelay = time.Hour

// Deps are the external collaborators an engine runs against.
type Deps struct {
	Wallet host.Wallet
	Push   oracle.PushClient
	Pull   oracle.PullClient
	Random rng.Provider

	// OracleAccount receives push-oracle update fees. Defaults to
	// "oracle".
	OracleAccount string

	// ReissueDelay overrides DefaultReissueDelay when positive.
	ReissueDelay time.Duration

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Engine owns the state of one pool. The pool's funds are held in the
// wallet account named by the pool ID.
type Engine struct {
	mu   sync.Mutex
	pool *model.Pool

	// bettors and the per-outcome participant lists are rebuilt from
	// the bet ledger on rehydration; they are not part of the snapshot.
	bettors      map[string]*model.BettorRecord
	participants [][]string      // per outcome, in first-stake order
	seen         []map[string]bool // membership guard for participants

	wallet        host.Wallet
	push          oracle.PushClient
	pull          oracle.PullClient
	random        rng.Provider
	oracleAccount string
	reissueDelay  time.Duration
	now           func() time.Time
}

// New creates an engine for the given pool.
func New(pool *model.Pool, deps Deps) *Engine {
	e := &Engine{
		pool:          pool,
		bettors:       make(map[string]*model.BettorRecord),
		wallet:        deps.Wallet,
		push:          deps.Push,
		pull:          deps.Pull,
		random:        deps.Random,
		oracleAccount: deps.OracleAccount,
		reissueDelay:  deps.ReissueDelay,
		now:           deps.Clock,
	}
	if e.oracleAccount == "" {
		e.oracleAccount = "oracle"
	}
	if e.reissueDelay <= 0 {
		e.reissueDelay = DefaultReissueDelay
	}
	if e.now == nil {
		e.now = time.Now
	}
	for range pool.Outcomes {
		e.participants = append(e.participants, nil)
		e.seen = append(e.seen, make(map[string]bool))
	}
	return e
}

// --- Guards ---

func (e *Engine) requireOwner(caller string) error {
	if caller != e.pool.Owner {
		return ErrNotOwner
	}
	return nil
}

// syncState performs the lazy Open→Closed transition: any state-guarded
// operation re-checks the deadline before proceeding.
func (e *Engine) syncState() {
	if e.pool.State == model.StateOpen && !e.now().Before(e.pool.Deadline) {
		e.pool.State = model.StateClosed
	}
}

func (e *Engine) requireState(s model.State) error {
	if e.pool.State != s {
		return fmt.Errorf("%w: %s (need %s)", ErrWrongState, e.pool.State, s)
	}
	return nil
}

// --- Admin operations ---

// AddOutcome appends an outcome. Owner-only, Open state only.
func (e *Engine) AddOutcome(caller, name string, priorBps int64, value decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.syncState()
	if err := e.requireState(model.StateOpen); err != nil {
		return err
	}
	if err := odds.ValidatePrior(priorBps); err != nil {
		return err
	}

	e.pool.Outcomes = append(e.pool.Outcomes, model.Outcome{
		Name:      name,
		TotalBets: decimal.Zero,
		PriorBps:  priorBps,
		Value:     value,
	})
	e.participants = append(e.participants, nil)
	e.seen = append(e.seen, make(map[string]bool))
	return nil
}

// RemoveOutcome deletes an outcome by swapping it with the last element
// and truncating. Only allowed while the pool holds no stake: the swap
// reassigns the last outcome's index, which would repoint existing bets.
func (e *Engine) RemoveOutcome(caller string, idx int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if idx < 0 || idx >= len(e.pool.Outcomes) {
		return ErrInvalidOutcome
	}
	if e.pool.Balance.IsPositive() {
		return ErrOutcomeInUse
	}

	last := len(e.pool.Outcomes) - 1
	e.pool.Outcomes[idx] = e.pool.Outcomes[last]
	e.pool.Outcomes = e.pool.Outcomes[:last]
	e.participants[idx] = e.participants[last]
	e.participants = e.participants[:last]
	e.seen[idx] = e.seen[last]
	e.seen = e.seen[:last]
	return nil
}

// CloseBetting flips the pool to Closed. Owner-only; fails before the
// deadline or when betting is already closed.
func (e *Engine) CloseBetting(caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if e.pool.State != model.StateOpen {
		return fmt.Errorf("%w: betting already closed", ErrWrongState)
	}
	if e.now().Before(e.pool.Deadline) {
		return ErrDeadlineNotReached
	}
	e.pool.State = model.StateClosed
	return nil
}

// ExtendDeadline pushes the deadline forward by the given number of
// days. Owner-only, Open state only; a pool that has already closed
// (explicitly or by passing its deadline) cannot be reopened.
func (e *Engine) ExtendDeadline(caller string, days int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.syncState()
	if err := e.requireState(model.StateOpen); err != nil {
		return err
	}
	if days <= 0 {
		return ErrInvalidAmount
	}
	e.pool.Deadline = e.pool.Deadline.Add(time.Duration(days) * 24 * time.Hour)
	return nil
}

// TogglePause flips the paused flag. Owner-only, independent of
// lifecycle state; pausing blocks only PlaceBet.
func (e *Engine) TogglePause(caller string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return false, err
	}
	e.pool.Paused = !e.pool.Paused
	return e.pool.Paused, nil
}

// --- Views ---

// Snapshot returns a deep copy of the pool state for persistence and
// API responses.
func (e *Engine) Snapshot() *model.Pool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() *model.Pool {
	p := *e.pool
	p.Outcomes = make([]model.Outcome, len(e.pool.Outcomes))
	copy(p.Outcomes, e.pool.Outcomes)
	if e.pool.Random != nil {
		r := *e.pool.Random
		if e.pool.Random.Value != nil {
			v := *e.pool.Random.Value
			r.Value = &v
		}
		p.Random = &r
	}
	return &p
}

// Bettor returns a copy of one participant's record, or nil if they
// never staked.
func (e *Engine) Bettor(id string) *model.BettorRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.bettors[id]
	if !ok {
		return nil
	}
	out := &model.BettorRecord{
		Stakes:  make(map[int]decimal.Decimal, len(rec.Stakes)),
		Claimed: rec.Claimed,
	}
	for k, v := range rec.Stakes {
		out.Stakes[k] = v
	}
	return out
}

// Participants returns the unique bettors on one outcome in first-stake
// order.
func (e *Engine) Participants(idx int) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx < 0 || idx >= len(e.participants) {
		return nil
	}
	out := make([]string, len(e.participants[idx]))
	copy(out, e.participants[idx])
	return out
}

// --- Internal helpers ---

func (e *Engine) bettor(id string) *model.BettorRecord {
	rec, ok := e.bettors[id]
	if !ok {
		rec = &model.BettorRecord{Stakes: make(map[int]decimal.Decimal)}
		e.bettors[id] = rec
	}
	return rec
}

func (e *Engine) newEntry(bettor, kind string, outcomeIdx int, amount decimal.Decimal) *model.BetEntry {
	return &model.BetEntry{
		ID:         uuid.New().String(),
		PoolID:     e.pool.ID,
		Bettor:     bettor,
		Kind:       kind,
		OutcomeIdx: outcomeIdx,
		Amount:     amount,
		Timestamp:  e.now().UTC(),
	}
}

func (e *Engine) outcomeValues() []decimal.Decimal {
	values := make([]decimal.Decimal, len(e.pool.Outcomes))
	for i, o := range e.pool.Outcomes {
		values[i] = o.Value
	}
	return values
}
