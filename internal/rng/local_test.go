package rng

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	if len(a) != SeedSize {
		t.Fatalf("seed length = %d, want %d", len(a), SeedSize)
	}
	b, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	if string(a) == string(b) {
		t.Error("two seeds are identical")
	}
}

func TestLocalProvider_DeliversDerivedValue(t *testing.T) {
	type delivery struct {
		seq      uint64
		provider string
		value    uint64
	}
	got := make(chan delivery, 1)

	p := NewLocalProvider("local-rng", decimal.Zero, 0, func(_ context.Context, seq uint64, provider string, value uint64) error {
		got <- delivery{seq, provider, value}
		return nil
	})

	if p.Identity() != "local-rng" {
		t.Errorf("identity = %q", p.Identity())
	}
	fee, err := p.Fee(context.Background())
	if err != nil || !fee.IsZero() {
		t.Errorf("fee = %s, %v", fee, err)
	}

	seed := []byte("deterministic seed")
	seq, err := p.RequestWithCallback(context.Background(), seed)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if seq != 1 {
		t.Errorf("first sequence = %d, want 1", seq)
	}

	sum := sha256.Sum256(seed)
	want := binary.BigEndian.Uint64(sum[:8])

	select {
	case dl := <-got:
		if dl.seq != 1 || dl.provider != "local-rng" || dl.value != want {
			t.Errorf("delivery = %+v, want seq=1 provider=local-rng value=%d", dl, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never delivered")
	}

	// Sequence numbers increase per request.
	seq2, err := p.RequestWithCallback(context.Background(), seed)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if seq2 != 2 {
		t.Errorf("second sequence = %d, want 2", seq2)
	}
	<-got
}
