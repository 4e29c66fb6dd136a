package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openpool/pool-engine/internal/model"
)

// MoneyScale is the number of decimal places payouts are truncated to.
// Truncation (never rounding up) keeps the sum of proportional payouts
// within the pool balance.
const MoneyScale int32 = 8

// ClaimWinnings pays out the caller's share of a Resolved pool.
//
// Proportional: payout = winningStake × resolvedBalance ÷ winningOutcomeTotal,
// the caller's share of the pot as frozen at resolution. Single: the
// participant selected
// by the provider's random value takes the entire balance; everyone else
// fails. The claimed flag is set before the transfer and rolled back,
// together with the balance, if the transfer fails.
func (e *Engine) ClaimWinnings(ctx context.Context, caller string) (decimal.Decimal, *model.BetEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireState(model.StateResolved); err != nil {
		return decimal.Zero, nil, err
	}

	rec, ok := e.bettors[caller]
	if !ok {
		return decimal.Zero, nil, ErrNoWinningStake
	}
	if rec.Claimed {
		return decimal.Zero, nil, ErrAlreadyClaimed
	}

	winner := e.pool.WinningOutcome
	winningStake := rec.Stakes[winner]
	if !winningStake.IsPositive() {
		return decimal.Zero, nil, ErrNoWinningStake
	}

	var payout decimal.Decimal
	switch e.pool.Policy {
	case model.PolicyProportional:
		// Shares divide the balance frozen at resolution; dividing the
		// live balance would shrink every payout after the first claim.
		winningTotal := e.pool.Outcomes[winner].TotalBets
		payout = winningStake.Mul(e.pool.ResolvedBalance).Div(winningTotal).Truncate(MoneyScale)

	case model.PolicySingle:
		req := e.pool.Random
		if req == nil || req.Value == nil {
			return decimal.Zero, nil, ErrRandomnessMismatch
		}
		set := e.participants[winner]
		if len(set) == 0 {
			return decimal.Zero, nil, ErrNoWinningStake
		}
		selected := set[*req.Value%uint64(len(set))]
		if caller != selected {
			return decimal.Zero, nil, ErrNotSelectedWinner
		}
		payout = e.pool.Balance

	default:
		return decimal.Zero, nil, fmt.Errorf("engine: unknown winner policy %q", e.pool.Policy)
	}

	// Effects before transfer, rolled back atomically on failure.
	rec.Claimed = true
	prevBalance := e.pool.Balance
	e.pool.Balance = e.pool.Balance.Sub(payout)

	if err := e.wallet.Transfer(ctx, e.pool.ID, caller, payout); err != nil {
		rec.Claimed = false
		e.pool.Balance = prevBalance
		return decimal.Zero, nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	return payout, e.newEntry(caller, model.EntryClaim, winner, payout), nil
}
