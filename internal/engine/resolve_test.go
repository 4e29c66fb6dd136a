package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openpool/pool-engine/internal/engine"
	"github.com/openpool/pool-engine/internal/model"
	"github.com/openpool/pool-engine/internal/oracle"
)

// --- Single-winner policy ---

func TestSingleWinner_FullFlow(t *testing.T) {
	env := newTestEnv(t, model.SettleOwnerDeclared, model.PolicySingle)
	mustBet(t, env, "alice", 1, 100)
	mustBet(t, env, "bob", 1, 300)
	mustBet(t, env, "carol", 0, 50)

	env.clk.advance(25 * time.Hour)
	if err := env.eng.Resolve(context.Background(), "owner", 1, nil, decimal.Zero); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	snap := env.eng.Snapshot()
	if snap.State != model.StateResolving {
		t.Fatalf("state = %s, want resolving", snap.State)
	}
	if snap.Resolved {
		t.Fatal("pool marked resolved before the randomness callback")
	}
	if snap.Random == nil || snap.Random.Sequence != 1 || snap.Random.Provider != "vrf-test" {
		t.Fatalf("unexpected randomness request: %+v", snap.Random)
	}

	// Claims are rejected until the callback lands.
	if _, _, err := env.eng.ClaimWinnings(context.Background(), "alice"); !errors.Is(err, engine.ErrWrongState) {
		t.Errorf("claim while resolving: got %v, want ErrWrongState", err)
	}

	// A callback with the wrong sequence or provider is rejected.
	if err := env.eng.OnRandomness(context.Background(), 99, "vrf-test", 7); !errors.Is(err, engine.ErrRandomnessMismatch) {
		t.Errorf("wrong sequence: got %v, want ErrRandomnessMismatch", err)
	}
	if err := env.eng.OnRandomness(context.Background(), 1, "impostor", 7); !errors.Is(err, engine.ErrRandomnessMismatch) {
		t.Errorf("wrong provider: got %v, want ErrRandomnessMismatch", err)
	}

	// 7 mod 2 participants = 1 → bob (alice staked first).
	if err := env.eng.OnRandomness(context.Background(), 1, "vrf-test", 7); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if got := env.eng.Snapshot().State; got != model.StateResolved {
		t.Fatalf("state after callback = %s, want resolved", got)
	}

	if _, _, err := env.eng.ClaimWinnings(context.Background(), "alice"); !errors.Is(err, engine.ErrNotSelectedWinner) {
		t.Errorf("unselected winner claim: got %v, want ErrNotSelectedWinner", err)
	}
	// Carol staked the losing outcome entirely.
	if _, _, err := env.eng.ClaimWinnings(context.Background(), "carol"); !errors.Is(err, engine.ErrNoWinningStake) {
		t.Errorf("loser claim: got %v, want ErrNoWinningStake", err)
	}

	payout, _, err := env.eng.ClaimWinnings(context.Background(), "bob")
	if err != nil {
		t.Fatalf("selected winner claim: %v", err)
	}
	// The selected winner takes the entire pot, losers' stakes included.
	if !payout.Equal(d(450)) {
		t.Errorf("payout = %s, want 450", payout)
	}
	if !env.eng.Snapshot().Balance.IsZero() {
		t.Errorf("balance after claim = %s, want 0", env.eng.Snapshot().Balance)
	}
}

func TestSingleWinner_SelectionWrapsParticipants(t *testing.T) {
	env := newTestEnv(t, model.SettleOwnerDeclared, model.PolicySingle)
	mustBet(t, env, "alice", 0, 10)
	mustBet(t, env, "bob", 0, 10)

	env.clk.advance(25 * time.Hour)
	if err := env.eng.Resolve(context.Background(), "owner", 0, nil, decimal.Zero); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// 4 mod 2 = 0 → alice.
	if err := env.eng.OnRandomness(context.Background(), 1, "vrf-test", 4); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if _, _, err := env.eng.ClaimWinnings(context.Background(), "alice"); err != nil {
		t.Errorf("selected winner claim failed: %v", err)
	}
}

func TestSingleWinner_FeePaidFromPool(t *testing.T) {
	env := newTestEnv(t, model.SettleOwnerDeclared, model.PolicySingle)
	env.rng.fee = d(25)
	mustBet(t, env, "alice", 0, 100)

	env.clk.advance(25 * time.Hour)
	if err := env.eng.Resolve(context.Background(), "owner", 0, nil, decimal.Zero); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if got := env.eng.Snapshot().Balance; !got.Equal(d(75)) {
		t.Errorf("balance after fee = %s, want 75", got)
	}
	if got := bankBalance(t, env, "vrf-test"); !got.Equal(d(25)) {
		t.Errorf("provider received %s, want 25", got)
	}

	if err := env.eng.OnRandomness(context.Background(), 1, "vrf-test", 0); err != nil {
		t.Fatalf("callback: %v", err)
	}
	payout, _, err := env.eng.ClaimWinnings(context.Background(), "alice")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !payout.Equal(d(75)) {
		t.Errorf("payout = %s, want the fee-depleted pot 75", payout)
	}
}

func TestSingleWinner_FeeExceedsPool(t *testing.T) {
	env := newTestEnv(t, model.SettleOwnerDeclared, model.PolicySingle)
	env.rng.fee = d(500)
	mustBet(t, env, "alice", 0, 100)

	env.clk.advance(25 * time.Hour)
	err := env.eng.Resolve(context.Background(), "owner", 0, nil, decimal.Zero)
	if !errors.Is(err, engine.ErrFeeTooLow) {
		t.Fatalf("resolve with unaffordable fee: got %v, want ErrFeeTooLow", err)
	}
	// The pool stays Closed and resolvable.
	if got := env.eng.Snapshot().State; got != model.StateClosed {
		t.Errorf("state = %s, want closed", got)
	}
}

func TestReissueRandomness(t *testing.T) {
	env := newTestEnv(t, model.SettleOwnerDeclared, model.PolicySingle)
	mustBet(t, env, "alice", 0, 100)

	env.clk.advance(25 * time.Hour)
	if err := env.eng.Resolve(context.Background(), "owner", 0, nil, decimal.Zero); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if err := env.eng.ReissueRandomness(context.Background(), "alice"); !errors.Is(err, engine.ErrNotOwner) {
		t.Errorf("non-owner reissue: got %v, want ErrNotOwner", err)
	}
	if err := env.eng.ReissueRandomness(context.Background(), "owner"); !errors.Is(err, engine.ErrReissueTooSoon) {
		t.Errorf("immediate reissue: got %v, want ErrReissueTooSoon", err)
	}

	env.clk.advance(engine.DefaultReissueDelay)
	if err := env.eng.ReissueRandomness(context.Background(), "owner"); err != nil {
		t.Fatalf("reissue after delay: %v", err)
	}

	// The stale sequence no longer completes the pool.
	if err := env.eng.OnRandomness(context.Background(), 1, "vrf-test", 3); !errors.Is(err, engine.ErrRandomnessMismatch) {
		t.Errorf("stale sequence callback: got %v, want ErrRandomnessMismatch", err)
	}
	if err := env.eng.OnRandomness(context.Background(), 2, "vrf-test", 3); err != nil {
		t.Fatalf("fresh sequence callback: %v", err)
	}
}

// --- Push oracle ---

func TestPushOracle_ResolvesNearestOutcome(t *testing.T) {
	env := newTestEnv(t, model.SettlePushOracle, model.PolicyProportional)
	mustBet(t, env, "alice", 0, 100)
	mustBet(t, env, "bob", 1, 100)

	env.clk.advance(25 * time.Hour)
	// Price 110 sits nearer to outcome 0 (value 100) than outcome 1 (200).
	env.push.price = oracle.Price{Mantissa: 110, Expo: 0, PublishedAt: env.clk.t}

	if err := env.eng.Resolve(context.Background(), "owner", 0, []byte("payload"), d(1)); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	snap := env.eng.Snapshot()
	if snap.WinningOutcome != 0 {
		t.Errorf("winner = %d, want 0", snap.WinningOutcome)
	}
	if len(env.push.submitted) != 1 || string(env.push.submitted[0]) != "payload" {
		t.Errorf("update not submitted: %v", env.push.submitted)
	}
	// The attached fee landed in the oracle account.
	if got := bankBalance(t, env, "oracle"); !got.Equal(d(1)) {
		t.Errorf("oracle account = %s, want 1", got)
	}
}

func TestPushOracle_FeeBelowQuote(t *testing.T) {
	env := newTestEnv(t, model.SettlePushOracle, model.PolicyProportional)
	env.push.fee = d(2)
	mustBet(t, env, "alice", 0, 100)

	env.clk.advance(25 * time.Hour)
	before := bankBalance(t, env, "owner")

	err := env.eng.Resolve(context.Background(), "owner", 0, []byte("payload"), d(1))
	if !errors.Is(err, engine.ErrFeeTooLow) {
		t.Fatalf("underpaid resolve: got %v, want ErrFeeTooLow", err)
	}

	// No state change, no update submitted, no fee moved.
	if got := env.eng.Snapshot().State; got != model.StateClosed {
		t.Errorf("state = %s, want closed", got)
	}
	if len(env.push.submitted) != 0 {
		t.Errorf("update submitted despite fee rejection")
	}
	if got := bankBalance(t, env, "owner"); !got.Equal(before) {
		t.Errorf("owner balance changed: %s -> %s", before, got)
	}
}

func TestPushOracle_StalePrice(t *testing.T) {
	env := newTestEnv(t, model.SettlePushOracle, model.PolicyProportional)
	mustBet(t, env, "alice", 0, 100)

	env.clk.advance(25 * time.Hour)
	env.push.price = oracle.Price{
		Mantissa:    110,
		Expo:        0,
		PublishedAt: env.clk.t.Add(-2 * time.Minute),
	}
	before := bankBalance(t, env, "owner")

	err := env.eng.Resolve(context.Background(), "owner", 0, nil, d(1))
	if !errors.Is(err, oracle.ErrStale) {
		t.Fatalf("stale price resolve: got %v, want ErrStale", err)
	}
	if got := env.eng.Snapshot().State; got != model.StateClosed {
		t.Errorf("state = %s, want closed", got)
	}

	// The update fee comes back; the aborted resolution leaves no effects.
	if got := bankBalance(t, env, "owner"); !got.Equal(before) {
		t.Errorf("owner balance = %s, want %s (fee not refunded)", got, before)
	}
	if got := bankBalance(t, env, "oracle"); !got.IsZero() {
		t.Errorf("oracle account kept %s despite failed resolution", got)
	}
}

func TestPushOracle_PriceReadFailureRefundsFee(t *testing.T) {
	env := newTestEnv(t, model.SettlePushOracle, model.PolicyProportional)
	mustBet(t, env, "alice", 0, 100)

	env.clk.advance(25 * time.Hour)
	env.push.priceErr = errors.New("provider unavailable")
	before := bankBalance(t, env, "owner")

	if err := env.eng.Resolve(context.Background(), "owner", 0, nil, d(1)); err == nil {
		t.Fatal("resolve should fail when the price read fails")
	}
	if got := bankBalance(t, env, "owner"); !got.Equal(before) {
		t.Errorf("owner balance = %s, want %s (fee not refunded)", got, before)
	}
	if got := env.eng.Snapshot().State; got != model.StateClosed {
		t.Errorf("state = %s, want closed", got)
	}
}

// --- Pull oracle ---

func TestPullOracle_ResolvesNearestOutcome(t *testing.T) {
	env := newTestEnv(t, model.SettlePullOracle, model.PolicyProportional)
	mustBet(t, env, "alice", 1, 100)

	env.clk.advance(25 * time.Hour)
	// Reading 190 is nearer to outcome 1 (value 200).
	env.pull.reading = oracle.Reading{Value: d(190), UpdatedAt: env.clk.t}

	if err := env.eng.Resolve(context.Background(), "owner", 0, nil, decimal.Zero); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := env.eng.Snapshot().WinningOutcome; got != 1 {
		t.Errorf("winner = %d, want 1", got)
	}
}

func TestPullOracle_StaleReading(t *testing.T) {
	env := newTestEnv(t, model.SettlePullOracle, model.PolicyProportional)
	mustBet(t, env, "alice", 0, 100)

	env.clk.advance(25 * time.Hour)
	env.pull.reading = oracle.Reading{Value: d(190), UpdatedAt: env.clk.t.Add(-61 * time.Second)}

	if err := env.eng.Resolve(context.Background(), "owner", 0, nil, decimal.Zero); !errors.Is(err, oracle.ErrStale) {
		t.Fatalf("stale reading resolve: got %v, want ErrStale", err)
	}
}

// --- Rehydration ---

func TestRehydrate_RestoresLedgerState(t *testing.T) {
	env := newTestEnv(t, model.SettleOwnerDeclared, model.PolicyProportional)
	mustBet(t, env, "alice", 1, 100)
	mustBet(t, env, "bob", 1, 300)
	mustBet(t, env, "alice", 0, 25)

	entries := []model.BetEntry{
		{PoolID: "pool-1", Bettor: "alice", Kind: model.EntryBet, OutcomeIdx: 1, Amount: d(100)},
		{PoolID: "pool-1", Bettor: "bob", Kind: model.EntryBet, OutcomeIdx: 1, Amount: d(300)},
		{PoolID: "pool-1", Bettor: "alice", Kind: model.EntryBet, OutcomeIdx: 0, Amount: d(25)},
	}

	restored := engine.Rehydrate(env.eng.Snapshot(), entries, engine.Deps{
		Wallet: env.bank,
		Random: env.rng,
		Clock:  env.clk.now,
	})

	rec := restored.Bettor("alice")
	if rec == nil || !rec.Stakes[1].Equal(d(100)) || !rec.Stakes[0].Equal(d(25)) {
		t.Fatalf("alice record = %+v", rec)
	}
	// First-stake order survives the replay.
	if got := restored.Participants(1); len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Errorf("participants(1) = %v, want [alice bob]", got)
	}
	if !restored.Snapshot().Balance.Equal(d(425)) {
		t.Errorf("balance = %s, want 425", restored.Snapshot().Balance)
	}

	// The restored engine behaves like the original.
	env.clk.advance(25 * time.Hour)
	if err := restored.Resolve(context.Background(), "owner", 1, nil, decimal.Zero); err != nil {
		t.Fatalf("resolve restored pool: %v", err)
	}
	payout, _, err := restored.ClaimWinnings(context.Background(), "bob")
	if err != nil {
		t.Fatalf("claim on restored pool: %v", err)
	}
	// 300 * 425 / 400 = 318.75.
	if !payout.Equal(d(318.75)) {
		t.Errorf("payout = %s, want 318.75", payout)
	}
}

func TestRehydrate_WithdrawAndClaimEntries(t *testing.T) {
	pool := &model.Pool{
		ID:     "pool-2",
		Owner:  "owner",
		State:  model.StateResolved,
		Kind:   model.SettleOwnerDeclared,
		Policy: model.PolicyProportional,
		Outcomes: []model.Outcome{
			{Name: "a", TotalBets: d(100), PriorBps: 5000},
			{Name: "b", TotalBets: decimal.Zero, PriorBps: 5000},
		},
		Balance:        d(100),
		Resolved:       true,
		WinningOutcome: 0,
	}
	entries := []model.BetEntry{
		{Bettor: "alice", Kind: model.EntryBet, OutcomeIdx: 0, Amount: d(100)},
		{Bettor: "bob", Kind: model.EntryBet, OutcomeIdx: 1, Amount: d(40)},
		{Bettor: "bob", Kind: model.EntryWithdraw, OutcomeIdx: -1, Amount: d(40)},
		{Bettor: "alice", Kind: model.EntryClaim, OutcomeIdx: 0, Amount: d(100)},
	}

	restored := engine.Rehydrate(pool, entries, engine.Deps{Wallet: refusingWallet{}})

	if rec := restored.Bettor("bob"); rec == nil || rec.TotalStake().IsPositive() {
		t.Errorf("bob's withdrawn stake should be zero, got %+v", rec)
	}
	if rec := restored.Bettor("alice"); rec == nil || !rec.Claimed {
		t.Errorf("alice's claim flag lost in replay, got %+v", rec)
	}
	if _, _, err := restored.ClaimWinnings(context.Background(), "alice"); !errors.Is(err, engine.ErrAlreadyClaimed) {
		t.Errorf("replayed claim: got %v, want ErrAlreadyClaimed", err)
	}
}
