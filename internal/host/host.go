// Package host provides the funds-transfer primitive the settlement
// engine runs against. The engine never touches balances directly; every
// stake, refund, fee payment, and payout moves through a Wallet so the
// whole operation can be rolled back when a transfer fails.
package host

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds is returned when an account cannot cover a
	// transfer.
	ErrInsufficientFunds = errors.New("host: insufficient funds")

	// ErrUnknownAccount is returned when a transfer names an account
	// that does not exist.
	ErrUnknownAccount = errors.New("host: unknown account")
)

// Wallet moves funds between accounts. Transfer either fully applies or
// fully fails; Balance reports an account's current holdings.
type Wallet interface {
	Transfer(ctx context.Context, from, to string, amount decimal.Decimal) error
	Balance(ctx context.Context, account string) (decimal.Decimal, error)
}
