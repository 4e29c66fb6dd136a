// Package model defines the core domain types shared across the pool engine.
// All monetary values use shopspring/decimal — never float64 for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// State is the pool lifecycle state. Transitions are monotonic:
// Open → Closed → {Resolving →} Resolved. There is no backward transition.
type State string

const (
	StateOpen      State = "open"
	StateClosed    State = "closed"
	StateResolving State = "resolving"
	StateResolved  State = "resolved"
)

// SettlementKind selects how the winning outcome is determined.
type SettlementKind string

const (
	// SettleOwnerDeclared lets the pool owner name the winner directly.
	SettleOwnerDeclared SettlementKind = "owner_declared"
	// SettlePushOracle submits a price update to a push oracle and
	// resolves to the outcome whose value is nearest the fresh price.
	SettlePushOracle SettlementKind = "push_oracle"
	// SettlePullOracle reads a pull oracle's latest value and applies
	// the same nearest-value selection.
	SettlePullOracle SettlementKind = "pull_oracle"
)

// WinnerPolicy selects how the pot is distributed among winning stakers.
type WinnerPolicy string

const (
	// PolicyProportional pays each winning staker their share of the pot.
	PolicyProportional WinnerPolicy = "proportional"
	// PolicySingle pays the entire pot to one randomly selected staker
	// on the winning outcome.
	PolicySingle WinnerPolicy = "single"
)

// Outcome is one possible resolution of the pool's underlying event.
// Outcomes are index-addressed in the order they were added.
type Outcome struct {
	Name      string          `json:"name"`
	TotalBets decimal.Decimal `json:"total_bets"`
	// PriorBps is the creator-declared prior probability in basis
	// points [0, 10000], reported while the pool holds no stake.
	PriorBps int64 `json:"prior_bps"`
	// Value is the numeric comparison value used by oracle-driven
	// resolution (nearest value to the oracle price wins).
	Value decimal.Decimal `json:"value"`
}

// RandomnessRequest tracks the single outstanding randomness request for
// a pool resolving under PolicySingle. A callback is accepted only when
// its sequence number and provider identity match exactly.
type RandomnessRequest struct {
	Provider    string    `json:"provider"`
	Sequence    uint64    `json:"sequence"`
	Value       *uint64   `json:"value,omitempty"` // absent until the callback arrives
	RequestedAt time.Time `json:"requested_at"`
}

// Pool is the full state of one wagering pool.
type Pool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`

	// MaxLimit caps the pool's total stake; zero means unlimited.
	MaxLimit decimal.Decimal `json:"max_limit"`
	Deadline time.Time       `json:"deadline"`

	Kind   SettlementKind `json:"kind"`
	Policy WinnerPolicy   `json:"policy"`

	State    State `json:"state"`
	Paused   bool  `json:"paused"`
	Resolved bool  `json:"resolved"`
	// WinningOutcome is meaningful only when Resolved is true.
	WinningOutcome int `json:"winning_outcome"`

	// Balance is the pool's held funds. Before any claim or withdraw it
	// equals the sum of all outcomes' TotalBets.
	Balance decimal.Decimal `json:"balance"`
	// ResolvedBalance is the balance frozen at resolution. Proportional
	// payouts divide this, not the live balance, so each claimant's
	// share is independent of claim order.
	ResolvedBalance decimal.Decimal `json:"resolved_balance"`

	Outcomes []Outcome          `json:"outcomes"`
	Random   *RandomnessRequest `json:"random,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// BettorRecord is one participant's position in a pool. Stakes maps
// outcome index → staked amount. Once Claimed is set no further payout
// is ever issued to that identity.
type BettorRecord struct {
	Stakes  map[int]decimal.Decimal `json:"stakes"`
	Claimed bool                    `json:"claimed"`
}

// TotalStake returns the bettor's stake summed across all outcomes.
func (b *BettorRecord) TotalStake() decimal.Decimal {
	total := decimal.Zero
	for _, s := range b.Stakes {
		total = total.Add(s)
	}
	return total
}

// Entry kinds recorded in the append-only bet ledger.
const (
	EntryBet      = "bet"
	EntryWithdraw = "withdraw"
	EntryClaim    = "claim"
)

// BetEntry is an immutable record of a ledger mutation. Once created,
// these are never modified or deleted; replaying a pool's entries in
// order reconstructs its bettor records and participant sets.
type BetEntry struct {
	ID         string          `json:"id" db:"id"`
	PoolID     string          `json:"pool_id" db:"pool_id"`
	Bettor     string          `json:"bettor" db:"bettor"`
	Kind       string          `json:"kind" db:"kind"`               // "bet", "withdraw", "claim"
	OutcomeIdx int             `json:"outcome_idx" db:"outcome_idx"` // -1 for withdrawals
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Timestamp  time.Time       `json:"timestamp" db:"timestamp"`
}
