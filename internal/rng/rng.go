// Package rng defines the randomness-provider boundary used for
// single-winner settlement.
//
// A request is acknowledged synchronously with a sequence number; the
// random value arrives later through a separate callback invocation that
// the engine validates against the stored sequence number and provider
// identity. Seeds are drawn from crypto/rand — never from values a
// requester could influence.
package rng

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/shopspring/decimal"
)

// Callback delivers a provider's random value for a previously issued
// sequence number.
type Callback func(ctx context.Context, sequence uint64, provider string, value uint64) error

// Provider is the randomness-provider call contract. Fee quotes the cost
// of one request; RequestWithCallback pays it inline and returns the
// sequence number correlating the eventual callback.
type Provider interface {
	Identity() string
	Fee(ctx context.Context) (decimal.Decimal, error)
	RequestWithCallback(ctx context.Context, seed []byte) (uint64, error)
}

// SeedSize is the seed length in bytes submitted with each request.
const SeedSize = 32

// NewSeed returns a fresh cryptographically random seed.
func NewSeed() ([]byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("rng: seed generation: %w", err)
	}
	return seed, nil
}
