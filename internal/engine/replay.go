package engine

import (
	"github.com/shopspring/decimal"

	"github.com/openpool/pool-engine/internal/model"
)

// Rehydrate rebuilds an engine from a persisted pool snapshot and its
// bet ledger. The snapshot carries the aggregate state (outcome totals,
// balance, lifecycle); replaying the entries in order reconstructs the
// per-bettor stakes, claimed flags, and the per-outcome participant
// lists in their original first-stake order.
func Rehydrate(pool *model.Pool, entries []model.BetEntry, deps Deps) *Engine {
	e := New(pool, deps)

	for _, entry := range entries {
		switch entry.Kind {
		case model.EntryBet:
			if entry.OutcomeIdx < 0 || entry.OutcomeIdx >= len(pool.Outcomes) {
				continue // outcome removed before any stake existed
			}
			if !e.seen[entry.OutcomeIdx][entry.Bettor] {
				e.seen[entry.OutcomeIdx][entry.Bettor] = true
				e.participants[entry.OutcomeIdx] = append(e.participants[entry.OutcomeIdx], entry.Bettor)
			}
			rec := e.bettor(entry.Bettor)
			rec.Stakes[entry.OutcomeIdx] = rec.Stakes[entry.OutcomeIdx].Add(entry.Amount)

		case model.EntryWithdraw:
			if rec, ok := e.bettors[entry.Bettor]; ok {
				rec.Stakes = make(map[int]decimal.Decimal)
			}

		case model.EntryClaim:
			e.bettor(entry.Bettor).Claimed = true
		}
	}

	return e
}
