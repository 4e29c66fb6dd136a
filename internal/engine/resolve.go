package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openpool/pool-engine/internal/model"
	"github.com/openpool/pool-engine/internal/odds"
	"github.com/openpool/pool-engine/internal/oracle"
	"github.com/openpool/pool-engine/internal/rng"
)

// Resolve determines the winning outcome and finalizes settlement.
// Owner-only; the pool must be Closed and not yet resolved.
//
// candidate is the owner-declared winner and is ignored by the oracle
// kinds. update is the opaque push-oracle payload; fee is the amount the
// caller attaches to pay for the push update.
func (e *Engine) Resolve(ctx context.Context, caller string, candidate int, update []byte, fee decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.syncState()
	if e.pool.Resolved {
		return ErrAlreadyResolved
	}
	if err := e.requireState(model.StateClosed); err != nil {
		return err
	}

	var (
		winner int
		err    error
	)
	switch e.pool.Kind {
	case model.SettleOwnerDeclared:
		if candidate < 0 || candidate >= len(e.pool.Outcomes) {
			return ErrInvalidOutcome
		}
		winner = candidate

	case model.SettlePushOracle:
		winner, err = e.resolvePush(ctx, caller, update, fee)
		if err != nil {
			return err
		}

	case model.SettlePullOracle:
		winner, err = e.resolvePull(ctx)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("engine: unknown settlement kind %q", e.pool.Kind)
	}

	return e.finalize(ctx, winner)
}

// resolvePush pays for and submits the oracle update, then resolves to
// the outcome nearest the freshly anchored price.
func (e *Engine) resolvePush(ctx context.Context, caller string, update []byte, fee decimal.Decimal) (int, error) {
	quoted, err := e.push.UpdateFee(ctx, update)
	if err != nil {
		return 0, fmt.Errorf("engine: oracle fee quote: %w", err)
	}
	if fee.LessThan(quoted) {
		return 0, fmt.Errorf("%w: attached %s, quoted %s", ErrFeeTooLow, fee, quoted)
	}

	if err := e.wallet.Transfer(ctx, caller, e.oracleAccount, fee); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	// Any failure past this point refunds the fee so the aborted
	// resolution leaves no effects.
	if err := e.push.SubmitUpdate(ctx, update, fee); err != nil {
		return 0, e.refundPushFee(ctx, caller, fee, fmt.Errorf("engine: oracle update: %w", err))
	}

	price, err := e.push.LatestPrice(ctx)
	if err != nil {
		return 0, e.refundPushFee(ctx, caller, fee, fmt.Errorf("engine: oracle price read: %w", err))
	}
	if !oracle.Fresh(price.PublishedAt, e.now()) {
		return 0, e.refundPushFee(ctx, caller, fee, oracle.ErrStale)
	}

	idx, err := odds.Nearest(e.outcomeValues(), oracle.ComparisonValue(price))
	if err != nil {
		return 0, e.refundPushFee(ctx, caller, fee, err)
	}
	return idx, nil
}

// refundPushFee returns cause after sending the already-paid oracle fee
// back to the caller.
func (e *Engine) refundPushFee(ctx context.Context, caller string, fee decimal.Decimal, cause error) error {
	if rbErr := e.wallet.Transfer(ctx, e.oracleAccount, caller, fee); rbErr != nil {
		return fmt.Errorf("engine: oracle resolution failed (%v) and fee refund failed: %w", cause, rbErr)
	}
	return cause
}

// resolvePull reads the pull oracle's latest value and resolves to the
// nearest outcome, rejecting readings outside the freshness window.
func (e *Engine) resolvePull(ctx context.Context) (int, error) {
	reading, err := e.pull.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("engine: oracle read: %w", err)
	}
	if !oracle.Fresh(reading.UpdatedAt, e.now()) {
		return 0, oracle.ErrStale
	}
	return odds.Nearest(e.outcomeValues(), reading.Value)
}

// finalize applies the winner policy. Proportional settles immediately;
// Single pays the randomness fee out of the pool, issues the request,
// and parks the pool in Resolving until OnRandomness.
func (e *Engine) finalize(ctx context.Context, winner int) error {
	switch e.pool.Policy {
	case model.PolicyProportional:
		e.pool.WinningOutcome = winner
		e.pool.ResolvedBalance = e.pool.Balance
		e.pool.Resolved = true
		e.pool.State = model.StateResolved
		return nil

	case model.PolicySingle:
		e.pool.WinningOutcome = winner
		if err := e.requestRandomness(ctx); err != nil {
			return err
		}
		// Frozen after the randomness fee came out of the pot.
		e.pool.ResolvedBalance = e.pool.Balance
		e.pool.State = model.StateResolving
		return nil

	default:
		return fmt.Errorf("engine: unknown winner policy %q", e.pool.Policy)
	}
}

// requestRandomness pays the provider fee from the pool and records the
// outstanding request. At most one request is outstanding per pool.
func (e *Engine) requestRandomness(ctx context.Context) error {
	fee, err := e.random.Fee(ctx)
	if err != nil {
		return fmt.Errorf("engine: randomness fee quote: %w", err)
	}
	if e.pool.Balance.LessThan(fee) {
		return fmt.Errorf("%w: pool holds %s, randomness fee %s", ErrFeeTooLow, e.pool.Balance, fee)
	}

	seed, err := rng.NewSeed()
	if err != nil {
		return err
	}

	if err := e.wallet.Transfer(ctx, e.pool.ID, e.random.Identity(), fee); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	seq, err := e.random.RequestWithCallback(ctx, seed)
	if err != nil {
		if rbErr := e.wallet.Transfer(ctx, e.random.Identity(), e.pool.ID, fee); rbErr != nil {
			return fmt.Errorf("engine: randomness request failed (%v) and fee refund failed: %w", err, rbErr)
		}
		return fmt.Errorf("engine: randomness request: %w", err)
	}

	e.pool.Balance = e.pool.Balance.Sub(fee)
	e.pool.Random = &model.RandomnessRequest{
		Provider:    e.random.Identity(),
		Sequence:    seq,
		RequestedAt: e.now().UTC(),
	}
	return nil
}

// OnRandomness is the provider callback completing a single-winner
// resolution. It is the only way out of Resolving: the callback must
// match the stored sequence number and provider identity exactly.
func (e *Engine) OnRandomness(_ context.Context, sequence uint64, provider string, value uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireState(model.StateResolving); err != nil {
		return err
	}
	if e.pool.Resolved {
		return ErrAlreadyResolved
	}
	req := e.pool.Random
	if req == nil || req.Sequence != sequence || req.Provider != provider {
		return ErrRandomnessMismatch
	}

	req.Value = &value
	e.pool.Resolved = true
	e.pool.State = model.StateResolved
	return nil
}

// ReissueRandomness replaces a stuck randomness request with a fresh
// one, paying the provider fee again. Owner-only and gated on a minimum
// waiting period.
//
// A provider that never calls back otherwise wedges the pool in
// Resolving forever; this escape hatch is a deliberate extension over
// the strict no-timeout model.
func (e *Engine) ReissueRandomness(ctx context.Context, caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if err := e.requireState(model.StateResolving); err != nil {
		return err
	}
	if e.pool.Resolved {
		return ErrAlreadyResolved
	}
	if e.pool.Random != nil && e.now().Before(e.pool.Random.RequestedAt.Add(e.reissueDelay)) {
		return ErrReissueTooSoon
	}
	return e.requestRandomness(ctx)
}
