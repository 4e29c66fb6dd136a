package engine

import "errors"

// Every operation either fully applies or fails with one of these errors
// and no partial effects.
var (
	// ErrNotOwner is returned when an admin operation is invoked by
	// anyone other than the pool owner.
	ErrNotOwner = errors.New("engine: caller is not the pool owner")

	// ErrWrongState is returned when an operation is invoked outside
	// its required lifecycle state.
	ErrWrongState = errors.New("engine: operation not allowed in current pool state")

	// ErrPaused is returned when betting is attempted on a paused pool.
	ErrPaused = errors.New("engine: pool is paused")

	// ErrDeadlineNotReached is returned when the owner tries to close
	// betting before the deadline has passed.
	ErrDeadlineNotReached = errors.New("engine: betting deadline not yet reached")

	// ErrAlreadyResolved is returned when resolution is attempted on a
	// pool that already has an authoritative winner.
	ErrAlreadyResolved = errors.New("engine: pool already resolved")

	// ErrInvalidOutcome is returned for an out-of-range outcome index.
	ErrInvalidOutcome = errors.New("engine: outcome index out of range")

	// ErrInvalidAmount is returned for a zero or negative amount.
	ErrInvalidAmount = errors.New("engine: amount must be positive")

	// ErrCapExceeded is returned when a bet would push the pool past
	// its stake cap.
	ErrCapExceeded = errors.New("engine: stake cap exceeded")

	// ErrFeeTooLow is returned when an attached fee does not cover a
	// provider's quote, or the pool cannot cover the randomness fee.
	ErrFeeTooLow = errors.New("engine: insufficient fee")

	// ErrOutcomeInUse is returned when outcome removal is attempted
	// after the pool has taken stake. Removal swaps indices around,
	// which would silently repoint existing bets at the wrong outcome.
	ErrOutcomeInUse = errors.New("engine: cannot remove outcome once the pool holds stake")

	// ErrNothingToWithdraw is returned when a withdrawal finds no stake.
	ErrNothingToWithdraw = errors.New("engine: caller has no stake to withdraw")

	// ErrAlreadyClaimed is returned on a second claim by the same caller.
	ErrAlreadyClaimed = errors.New("engine: winnings already claimed")

	// ErrNoWinningStake is returned when a claimant holds no stake on
	// the winning outcome.
	ErrNoWinningStake = errors.New("engine: caller has no stake on the winning outcome")

	// ErrNotSelectedWinner is returned under the single-winner policy
	// when the claimant is not the randomly selected participant.
	ErrNotSelectedWinner = errors.New("engine: caller is not the selected winner")

	// ErrRandomnessMismatch is returned when a randomness callback's
	// sequence number or provider does not match the stored request.
	ErrRandomnessMismatch = errors.New("engine: randomness callback does not match outstanding request")

	// ErrReissueTooSoon is returned when a randomness reissue is
	// attempted before the minimum waiting period has elapsed.
	ErrReissueTooSoon = errors.New("engine: randomness request too recent to reissue")

	// ErrTransferFailed wraps a downstream funds-transfer failure. The
	// operation's state changes are rolled back before it is returned.
	ErrTransferFailed = errors.New("engine: funds transfer failed")
)
