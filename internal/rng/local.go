package rng

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// LocalProvider is an in-process randomness provider for development and
// testing. It derives the random value deterministically from the seed
// (sha256, first 8 bytes) and delivers it through the registered callback
// after a short delay, mimicking the asynchronous provider round trip.
type LocalProvider struct {
	identity string
	fee      decimal.Decimal
	delay    time.Duration
	deliver  Callback

	mu      sync.Mutex
	nextSeq uint64
}

// NewLocalProvider creates a local provider. deliver receives each
// request's random value asynchronously.
func NewLocalProvider(identity string, fee decimal.Decimal, delay time.Duration, deliver Callback) *LocalProvider {
	return &LocalProvider{
		identity: identity,
		fee:      fee,
		delay:    delay,
		deliver:  deliver,
		nextSeq:  1,
	}
}

func (p *LocalProvider) Identity() string { return p.identity }

func (p *LocalProvider) Fee(_ context.Context) (decimal.Decimal, error) {
	return p.fee, nil
}

func (p *LocalProvider) RequestWithCallback(_ context.Context, seed []byte) (uint64, error) {
	p.mu.Lock()
	seq := p.nextSeq
	p.nextSeq++
	p.mu.Unlock()

	sum := sha256.Sum256(seed)
	value := binary.BigEndian.Uint64(sum[:8])

	go func() {
		if p.delay > 0 {
			time.Sleep(p.delay)
		}
		if err := p.deliver(context.Background(), seq, p.identity, value); err != nil {
			slog.Error("randomness callback rejected", "seq", seq, "provider", p.identity, "err", err)
		}
	}()

	return seq, nil
}
