// Package service provides the HTTP surface of the pool engine: pool
// creation and administration, bet placement, resolution, the randomness
// provider callback, and winnings claims.
//
// Each pool is backed by one engine instance; the service routes
// requests to it, persists a snapshot plus an immutable ledger entry
// after every mutation, and broadcasts events over WebSocket.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openpool/pool-engine/internal/engine"
	"github.com/openpool/pool-engine/internal/metrics"
	"github.com/openpool/pool-engine/internal/model"
	"github.com/openpool/pool-engine/internal/odds"
	"github.com/openpool/pool-engine/internal/oracle"
	"github.com/openpool/pool-engine/internal/store"
)

// Service routes pool operations to per-pool engines and persists the
// results. Engines serialize their own execution; the service mutex only
// protects the engine map.
type Service struct {
	store store.Store
	deps  engine.Deps
	hub   *WSHub // optional WebSocket hub for real-time broadcasts

	mu      sync.RWMutex
	engines map[string]*engine.Engine
}

// NewService creates a new pool service. Pass nil for hub if WebSocket
// broadcasting is not needed.
func NewService(st store.Store, deps engine.Deps, hub *WSHub) *Service {
	return &Service{
		store:   st,
		deps:    deps,
		hub:     hub,
		engines: make(map[string]*engine.Engine),
	}
}

// Rehydrate rebuilds all engines from persisted snapshots and their bet
// ledgers. Called once at startup.
func (s *Service) Rehydrate(ctx context.Context) error {
	pools, err := s.store.LoadPools(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range pools {
		pool := pools[i]
		entries, err := s.store.GetBetEntriesByPool(ctx, pool.ID)
		if err != nil {
			return err
		}
		s.engines[pool.ID] = engine.Rehydrate(&pool, entries, s.deps)

		if pool.State == model.StateResolving {
			if pool.Random != nil {
				slog.Warn("pool awaiting randomness callback since before restart",
					"pool", pool.ID, "provider", pool.Random.Provider, "seq", pool.Random.Sequence)
			} else {
				slog.Warn("pool stuck resolving with no recorded randomness request", "pool", pool.ID)
			}
		}
	}
	s.refreshGaugesLocked()
	slog.Info("pools rehydrated", "count", len(pools))
	return nil
}

// --- Request/Response types ---

// OutcomeSpec declares one outcome at pool creation or via AddOutcome.
type OutcomeSpec struct {
	Name     string          `json:"name"`
	PriorBps int64           `json:"prior_bps"`
	Value    decimal.Decimal `json:"value"`
}

// CreatePoolRequest is the JSON body for pool creation.
type CreatePoolRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       string               `json:"owner"`
	MaxLimit    decimal.Decimal      `json:"max_limit"` // 0 = unlimited
	Deadline    time.Time            `json:"deadline"`
	Kind        model.SettlementKind `json:"kind"`
	Policy      model.WinnerPolicy   `json:"policy"`
	Outcomes    []OutcomeSpec        `json:"outcomes"`
}

// BetRequest is the JSON body for POST .../bets.
type BetRequest struct {
	Caller  string          `json:"caller"`
	Outcome int             `json:"outcome"`
	Amount  decimal.Decimal `json:"amount"`
}

// CallerRequest is the JSON body for operations that only identify the
// caller (withdraw, close, pause, claim, reissue).
type CallerRequest struct {
	Caller string `json:"caller"`
}

// ExtendRequest is the JSON body for POST .../extend.
type ExtendRequest struct {
	Caller string `json:"caller"`
	Days   int    `json:"days"`
}

// ResolveRequest is the JSON body for POST .../resolve. WinningOutcome
// is only meaningful for owner-declared settlement; OracleUpdate and Fee
// only for push-oracle settlement.
type ResolveRequest struct {
	Caller         string          `json:"caller"`
	WinningOutcome int             `json:"winning_outcome"`
	OracleUpdate   []byte          `json:"oracle_update,omitempty"`
	Fee            decimal.Decimal `json:"fee"`
}

// RandomnessCallback is the JSON body the randomness provider posts to
// .../randomness.
type RandomnessCallback struct {
	Sequence uint64 `json:"sequence"`
	Provider string `json:"provider"`
	Value    uint64 `json:"value"`
}

// ClaimResponse reports a paid claim.
type ClaimResponse struct {
	PoolID string          `json:"pool_id"`
	Bettor string          `json:"bettor"`
	Payout decimal.Decimal `json:"payout"`
}

// --- HTTP Handlers ---

// CreatePool handles POST /api/v1/pools
func (s *Service) CreatePool(w http.ResponseWriter, r *http.Request) {
	var req CreatePoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Owner == "" {
		writeError(w, "name and owner are required", http.StatusBadRequest)
		return
	}
	if req.Kind != model.SettleOwnerDeclared && req.Kind != model.SettlePushOracle && req.Kind != model.SettlePullOracle {
		writeError(w, "kind must be owner_declared, push_oracle, or pull_oracle", http.StatusBadRequest)
		return
	}
	if req.Policy != model.PolicyProportional && req.Policy != model.PolicySingle {
		writeError(w, "policy must be proportional or single", http.StatusBadRequest)
		return
	}
	if req.Kind == model.SettlePushOracle && s.deps.Push == nil {
		writeError(w, "push oracle not configured", http.StatusBadRequest)
		return
	}
	if req.Kind == model.SettlePullOracle && s.deps.Pull == nil {
		writeError(w, "pull oracle not configured", http.StatusBadRequest)
		return
	}
	if !req.Deadline.After(s.now()) {
		writeError(w, "deadline must be in the future", http.StatusBadRequest)
		return
	}
	if req.MaxLimit.IsNegative() {
		writeError(w, "max_limit must not be negative", http.StatusBadRequest)
		return
	}

	outcomes := make([]model.Outcome, 0, len(req.Outcomes))
	for _, spec := range req.Outcomes {
		if err := odds.ValidatePrior(spec.PriorBps); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		outcomes = append(outcomes, model.Outcome{
			Name:      spec.Name,
			TotalBets: decimal.Zero,
			PriorBps:  spec.PriorBps,
			Value:     spec.Value,
		})
	}

	pool := &model.Pool{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Owner:       req.Owner,
		MaxLimit:    req.MaxLimit,
		Deadline:    req.Deadline.UTC(),
		Kind:        req.Kind,
		Policy:      req.Policy,
		State:       model.StateOpen,
		Balance:     decimal.Zero,
		Outcomes:    outcomes,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.store.CreatePool(r.Context(), pool); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	eng := engine.New(pool, s.deps)
	s.mu.Lock()
	s.engines[pool.ID] = eng
	s.mu.Unlock()
	s.refreshGauges()

	slog.Info("pool created",
		"id", pool.ID,
		"name", pool.Name,
		"owner", pool.Owner,
		"kind", pool.Kind,
		"policy", pool.Policy,
		"deadline", pool.Deadline,
	)

	writeJSON(w, http.StatusCreated, eng.Snapshot())
}

// GetPool handles GET /api/v1/pools/{poolID}
func (s *Service) GetPool(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, eng.Snapshot())
}

// GetProbabilities handles GET /api/v1/pools/{poolID}/probabilities
func (s *Service) GetProbabilities(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"probabilities_bps": eng.Probabilities()})
}

// GetBets handles GET /api/v1/pools/{poolID}/bets
func (s *Service) GetBets(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "poolID")
	if _, ok := s.engine(poolID); !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}

	entries, err := s.store.GetBetEntriesByPool(r.Context(), poolID)
	if err != nil {
		writeError(w, "failed to load bet ledger", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.BetEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// AddOutcome handles POST /api/v1/pools/{poolID}/outcomes
func (s *Service) AddOutcome(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}

	var req struct {
		Caller string `json:"caller"`
		OutcomeSpec
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := eng.AddOutcome(req.Caller, req.Name, req.PriorBps, req.Value); err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}
	s.persist(r.Context(), eng)
	writeJSON(w, http.StatusCreated, eng.Snapshot())
}

// RemoveOutcome handles DELETE /api/v1/pools/{poolID}/outcomes/{index}
func (s *Service) RemoveOutcome(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, "invalid outcome index", http.StatusBadRequest)
		return
	}

	var req CallerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := eng.RemoveOutcome(req.Caller, index); err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}
	s.persist(r.Context(), eng)
	writeJSON(w, http.StatusOK, eng.Snapshot())
}

// PlaceBet handles POST /api/v1/pools/{poolID}/bets
func (s *Service) PlaceBet(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}

	var req BetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Caller == "" {
		writeError(w, "caller is required", http.StatusBadRequest)
		return
	}

	entry, err := eng.PlaceBet(r.Context(), req.Caller, req.Outcome, req.Amount)
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}

	s.record(r.Context(), eng, entry)
	metrics.BetsTotal.Inc()

	slog.Info("bet placed",
		"pool", entry.PoolID,
		"bettor", req.Caller,
		"outcome", req.Outcome,
		"amount", req.Amount.String(),
	)

	s.broadcast(Event{
		Type:    "bet_placed",
		PoolID:  entry.PoolID,
		Outcome: req.Outcome,
		Bettor:  req.Caller,
		Amount:  req.Amount.String(),
	})

	writeJSON(w, http.StatusOK, entry)
}

// WithdrawBet handles POST /api/v1/pools/{poolID}/withdrawals
func (s *Service) WithdrawBet(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}

	var req CallerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := eng.WithdrawBet(r.Context(), req.Caller)
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}

	s.record(r.Context(), eng, entry)
	metrics.WithdrawalsTotal.Inc()

	slog.Info("stake withdrawn", "pool", entry.PoolID, "bettor", req.Caller, "amount", entry.Amount.String())

	s.broadcast(Event{
		Type:   "bet_withdrawn",
		PoolID: entry.PoolID,
		Bettor: req.Caller,
		Amount: entry.Amount.String(),
	})

	writeJSON(w, http.StatusOK, entry)
}

// CloseBetting handles POST /api/v1/pools/{poolID}/close
func (s *Service) CloseBetting(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}

	var req CallerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := eng.CloseBetting(req.Caller); err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}
	s.persist(r.Context(), eng)
	s.refreshGauges()

	snap := eng.Snapshot()
	slog.Info("betting closed", "pool", snap.ID)
	s.broadcast(Event{Type: "pool_closed", PoolID: snap.ID, State: string(snap.State)})
	writeJSON(w, http.StatusOK, snap)
}

// ExtendDeadline handles POST /api/v1/pools/{poolID}/extend
func (s *Service) ExtendDeadline(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}

	var req ExtendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := eng.ExtendDeadline(req.Caller, req.Days); err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}
	s.persist(r.Context(), eng)
	writeJSON(w, http.StatusOK, eng.Snapshot())
}

// TogglePause handles POST /api/v1/pools/{poolID}/pause
func (s *Service) TogglePause(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}

	var req CallerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	paused, err := eng.TogglePause(req.Caller)
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}
	s.persist(r.Context(), eng)

	slog.Info("pause toggled", "pool", chi.URLParam(r, "poolID"), "paused", paused)
	writeJSON(w, http.StatusOK, map[string]bool{"paused": paused})
}

// Resolve handles POST /api/v1/pools/{poolID}/resolve
func (s *Service) Resolve(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := eng.Resolve(r.Context(), req.Caller, req.WinningOutcome, req.OracleUpdate, req.Fee); err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}
	s.persist(r.Context(), eng)
	s.refreshGauges()

	snap := eng.Snapshot()
	switch snap.State {
	case model.StateResolved:
		metrics.ResolutionsTotal.WithLabelValues(string(snap.Kind), string(snap.Policy)).Inc()
		slog.Info("pool resolved", "pool", snap.ID, "winner", snap.WinningOutcome, "kind", snap.Kind)
		s.broadcast(Event{Type: "pool_resolved", PoolID: snap.ID, State: string(snap.State), Outcome: snap.WinningOutcome})
	case model.StateResolving:
		// A provider that never calls back leaves this pool stuck here;
		// the gauge and this log line are the operator's signal.
		slog.Warn("pool awaiting randomness callback",
			"pool", snap.ID, "provider", snap.Random.Provider, "seq", snap.Random.Sequence)
	}

	writeJSON(w, http.StatusOK, snap)
}

// OnRandomness handles POST /api/v1/pools/{poolID}/randomness — the
// randomness provider's callback.
func (s *Service) OnRandomness(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}

	var req RandomnessCallback
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := eng.OnRandomness(r.Context(), req.Sequence, req.Provider, req.Value); err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}
	s.finishRandomness(r.Context(), eng)
	writeJSON(w, http.StatusOK, eng.Snapshot())
}

// ReissueRandomness handles POST /api/v1/pools/{poolID}/randomness/reissue
func (s *Service) ReissueRandomness(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}

	var req CallerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := eng.ReissueRandomness(r.Context(), req.Caller); err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}
	s.persist(r.Context(), eng)

	snap := eng.Snapshot()
	slog.Warn("randomness request reissued", "pool", snap.ID, "seq", snap.Random.Sequence)
	writeJSON(w, http.StatusOK, snap)
}

// ClaimWinnings handles POST /api/v1/pools/{poolID}/claims
func (s *Service) ClaimWinnings(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(chi.URLParam(r, "poolID"))
	if !ok {
		writeError(w, "pool not found", http.StatusNotFound)
		return
	}

	var req CallerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	payout, entry, err := eng.ClaimWinnings(r.Context(), req.Caller)
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}

	s.record(r.Context(), eng, entry)
	metrics.ClaimsTotal.Inc()

	slog.Info("winnings claimed", "pool", entry.PoolID, "bettor", req.Caller, "payout", payout.String())

	s.broadcast(Event{
		Type:   "claim_paid",
		PoolID: entry.PoolID,
		Bettor: req.Caller,
		Amount: payout.String(),
	})

	writeJSON(w, http.StatusOK, ClaimResponse{PoolID: entry.PoolID, Bettor: req.Caller, Payout: payout})
}

// --- Randomness delivery for in-process providers ---

// DeliverRandomness routes a callback from an in-process provider to the
// pool holding the matching outstanding request. The HTTP callback
// endpoint addresses pools directly; this path exists for the local
// provider, which only knows the sequence number it issued.
func (s *Service) DeliverRandomness(ctx context.Context, sequence uint64, provider string, value uint64) error {
	s.mu.RLock()
	var target *engine.Engine
	for _, eng := range s.engines {
		snap := eng.Snapshot()
		if snap.State == model.StateResolving && snap.Random != nil &&
			snap.Random.Sequence == sequence && snap.Random.Provider == provider {
			target = eng
			break
		}
	}
	s.mu.RUnlock()

	if target == nil {
		return engine.ErrRandomnessMismatch
	}
	if err := target.OnRandomness(ctx, sequence, provider, value); err != nil {
		return err
	}
	s.finishRandomness(ctx, target)
	return nil
}

// --- Helpers ---

func (s *Service) engine(poolID string) (*engine.Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	eng, ok := s.engines[poolID]
	return eng, ok
}

func (s *Service) now() time.Time {
	if s.deps.Clock != nil {
		return s.deps.Clock()
	}
	return time.Now()
}

// persist writes the pool snapshot; the engine state is authoritative,
// so a failed write is logged rather than unwound.
func (s *Service) persist(ctx context.Context, eng *engine.Engine) {
	snap := eng.Snapshot()
	if err := s.store.SavePool(ctx, snap); err != nil {
		slog.Error("failed to persist pool snapshot", "pool", snap.ID, "err", err)
	}
}

// record persists a ledger entry plus the updated snapshot.
func (s *Service) record(ctx context.Context, eng *engine.Engine, entry *model.BetEntry) {
	if err := s.store.InsertBetEntry(ctx, entry); err != nil {
		slog.Error("failed to persist bet entry", "pool", entry.PoolID, "entry", entry.ID, "err", err)
	}
	s.persist(ctx, eng)
}

// finishRandomness persists and announces a completed single-winner
// resolution.
func (s *Service) finishRandomness(ctx context.Context, eng *engine.Engine) {
	s.persist(ctx, eng)
	s.refreshGauges()

	snap := eng.Snapshot()
	metrics.ResolutionsTotal.WithLabelValues(string(snap.Kind), string(snap.Policy)).Inc()
	slog.Info("pool resolved", "pool", snap.ID, "winner", snap.WinningOutcome, "kind", snap.Kind)
	s.broadcast(Event{Type: "pool_resolved", PoolID: snap.ID, State: string(snap.State), Outcome: snap.WinningOutcome})
}

// refreshGauges recounts the open and awaiting-randomness pools.
func (s *Service) refreshGauges() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.refreshGaugesLocked()
}

// refreshGaugesLocked is refreshGauges for callers already holding s.mu.
func (s *Service) refreshGaugesLocked() {
	var open, pending int
	for _, eng := range s.engines {
		switch eng.Snapshot().State {
		case model.StateOpen:
			open++
		case model.StateResolving:
			pending++
		}
	}
	metrics.ActivePools.Set(float64(open))
	metrics.RandomnessPending.Set(float64(pending))
}

func (s *Service) broadcast(ev Event) {
	if s.hub != nil {
		s.hub.Broadcast(ev)
	}
}

// statusForError maps engine errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrInvalidOutcome),
		errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, odds.ErrPriorOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrFeeTooLow):
		return http.StatusPaymentRequired
	case errors.Is(err, engine.ErrWrongState),
		errors.Is(err, engine.ErrPaused),
		errors.Is(err, engine.ErrDeadlineNotReached),
		errors.Is(err, engine.ErrAlreadyResolved),
		errors.Is(err, engine.ErrCapExceeded),
		errors.Is(err, engine.ErrOutcomeInUse),
		errors.Is(err, engine.ErrNothingToWithdraw),
		errors.Is(err, engine.ErrAlreadyClaimed),
		errors.Is(err, engine.ErrNoWinningStake),
		errors.Is(err, engine.ErrNotSelectedWinner),
		errors.Is(err, engine.ErrRandomnessMismatch),
		errors.Is(err, engine.ErrReissueTooSoon),
		errors.Is(err, oracle.ErrStale):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
