package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openpool/pool-engine/internal/model"
	"github.com/openpool/pool-engine/internal/odds"
)

// PlaceBet stakes amount on the given outcome for caller. Requires the
// pool to be Open and not paused; the stake moves from the caller's
// wallet account into the pool before the ledgers are updated.
func (e *Engine) PlaceBet(ctx context.Context, caller string, outcomeIdx int, amount decimal.Decimal) (*model.BetEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.syncState()
	if err := e.requireState(model.StateOpen); err != nil {
		return nil, err
	}
	if e.pool.Paused {
		return nil, ErrPaused
	}
	if outcomeIdx < 0 || outcomeIdx >= len(e.pool.Outcomes) {
		return nil, ErrInvalidOutcome
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if e.pool.MaxLimit.IsPositive() && e.pool.Balance.Add(amount).GreaterThan(e.pool.MaxLimit) {
		return nil, fmt.Errorf("%w: cap %s, pool holds %s", ErrCapExceeded, e.pool.MaxLimit, e.pool.Balance)
	}

	if err := e.wallet.Transfer(ctx, caller, e.pool.ID, amount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	if !e.seen[outcomeIdx][caller] {
		e.seen[outcomeIdx][caller] = true
		e.participants[outcomeIdx] = append(e.participants[outcomeIdx], caller)
	}
	rec := e.bettor(caller)
	rec.Stakes[outcomeIdx] = rec.Stakes[outcomeIdx].Add(amount)
	e.pool.Outcomes[outcomeIdx].TotalBets = e.pool.Outcomes[outcomeIdx].TotalBets.Add(amount)
	e.pool.Balance = e.pool.Balance.Add(amount)

	return e.newEntry(caller, model.EntryBet, outcomeIdx, amount), nil
}

// WithdrawBet refunds the caller's entire stake across all outcomes in
// one transfer. Only available in the Closed-but-unresolved window: the
// pool has stopped taking bets but no winner has been determined yet.
func (e *Engine) WithdrawBet(ctx context.Context, caller string) (*model.BetEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.syncState()
	if err := e.requireState(model.StateClosed); err != nil {
		return nil, err
	}
	if e.pool.Resolved {
		return nil, ErrAlreadyResolved
	}

	rec, ok := e.bettors[caller]
	if !ok {
		return nil, ErrNothingToWithdraw
	}
	total := rec.TotalStake()
	if !total.IsPositive() {
		return nil, ErrNothingToWithdraw
	}

	if err := e.wallet.Transfer(ctx, e.pool.ID, caller, total); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	for idx, stake := range rec.Stakes {
		e.pool.Outcomes[idx].TotalBets = e.pool.Outcomes[idx].TotalBets.Sub(stake)
	}
	rec.Stakes = make(map[int]decimal.Decimal)
	e.pool.Balance = e.pool.Balance.Sub(total)

	return e.newEntry(caller, model.EntryWithdraw, -1, total), nil
}

// Probabilities returns each outcome's implied probability in basis
// points. Pure view: stake-weighted once the pool holds funds, declared
// priors otherwise.
func (e *Engine) Probabilities() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	stakes := make([]decimal.Decimal, len(e.pool.Outcomes))
	priors := make([]int64, len(e.pool.Outcomes))
	for i, o := range e.pool.Outcomes {
		stakes[i] = o.TotalBets
		priors[i] = o.PriorBps
	}
	return odds.Probabilities(stakes, priors, e.pool.Balance)
}
