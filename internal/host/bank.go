package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Bank implements Wallet with in-memory accounts. Used for development
// and testing; a production deployment would back this with the real
// ledger environment.
type Bank struct {
	mu       sync.Mutex
	accounts map[string]decimal.Decimal
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{accounts: make(map[string]decimal.Decimal)}
}

// Credit adds funds to an account, creating it if needed.
func (b *Bank) Credit(account string, amount decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[account] = b.accounts[account].Add(amount)
}

func (b *Bank) Transfer(_ context.Context, from, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("host: negative transfer amount %s", amount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	balance, ok := b.accounts[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, from)
	}
	if balance.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientFunds, from, balance, amount)
	}

	b.accounts[from] = balance.Sub(amount)
	b.accounts[to] = b.accounts[to].Add(amount)
	return nil
}

func (b *Bank) Balance(_ context.Context, account string) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accounts[account], nil
}
