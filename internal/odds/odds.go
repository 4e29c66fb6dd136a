// Package odds implements the probability and winner-selection math for
// wagering pools.
//
// Probabilities are expressed in basis points (10000 = 100%) and derived
// from the live stake distribution: an outcome holding 30% of the pool's
// stake is priced at 3000 bps. While the pool holds no stake, the
// creator-declared priors are reported instead.
//
// All monetary values use shopspring/decimal — never float64 for money.
package odds

import (
	"errors"

	"github.com/shopspring/decimal"
)

// BasisPoints is the probability scale: 10000 = 100%.
const BasisPoints int64 = 10000

var (
	// ErrPriorOutOfRange is returned when a declared prior probability
	// falls outside [0, 10000] basis points.
	ErrPriorOutOfRange = errors.New("odds: prior probability outside [0, 10000] basis points")

	// ErrNoOutcomes is returned when winner selection runs against an
	// empty outcome set.
	ErrNoOutcomes = errors.New("odds: no outcomes to select from")
)

var bpsScale = decimal.NewFromInt(BasisPoints)

// ValidatePrior checks a declared prior probability in basis points.
func ValidatePrior(priorBps int64) error {
	if priorBps < 0 || priorBps > BasisPoints {
		return ErrPriorOutOfRange
	}
	return nil
}

// Probabilities returns the implied probability of each outcome in basis
// points. With stake in the pool, the probability is
//
//	stake_i * 10000 / balance
//
// using integer (truncating) division, so entries always sum to ≤ 10000.
// With zero balance the declared priors are returned unchanged.
func Probabilities(stakes []decimal.Decimal, priors []int64, balance decimal.Decimal) []int64 {
	probs := make([]int64, len(stakes))
	if balance.IsZero() {
		copy(probs, priors)
		return probs
	}
	for i, stake := range stakes {
		probs[i] = stake.Mul(bpsScale).Div(balance).IntPart()
	}
	return probs
}

// Nearest returns the index of the value with the smallest absolute
// difference from target. Ties break to the first occurrence in index
// order.
func Nearest(values []decimal.Decimal, target decimal.Decimal) (int, error) {
	if len(values) == 0 {
		return 0, ErrNoOutcomes
	}

	best := 0
	bestDist := values[0].Sub(target).Abs()
	for i, v := range values[1:] {
		dist := v.Sub(target).Abs()
		if dist.LessThan(bestDist) {
			best = i + 1
			bestDist = dist
		}
	}
	return best, nil
}
