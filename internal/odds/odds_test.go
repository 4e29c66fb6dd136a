package odds

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestValidatePrior(t *testing.T) {
	for _, bps := range []int64{0, 1, 5000, 10000} {
		if err := ValidatePrior(bps); err != nil {
			t.Errorf("ValidatePrior(%d) = %v, want nil", bps, err)
		}
	}
	for _, bps := range []int64{-1, 10001, 1 << 40} {
		if err := ValidatePrior(bps); !errors.Is(err, ErrPriorOutOfRange) {
			t.Errorf("ValidatePrior(%d) = %v, want ErrPriorOutOfRange", bps, err)
		}
	}
}

func TestProbabilities_ZeroBalanceReportsPriors(t *testing.T) {
	got := Probabilities(
		[]decimal.Decimal{decimal.Zero, decimal.Zero, decimal.Zero},
		[]int64{2000, 3000, 5000},
		decimal.Zero,
	)
	want := []int64{2000, 3000, 5000}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("probabilities = %v, want %v", got, want)
		}
	}
}

func TestProbabilities_StakeWeighted(t *testing.T) {
	got := Probabilities(
		[]decimal.Decimal{d(100), d(300)},
		[]int64{5000, 5000},
		d(400),
	)
	if got[0] != 2500 || got[1] != 7500 {
		t.Errorf("probabilities = %v, want [2500 7500]", got)
	}
}

func TestProbabilities_TruncationSumsBelowScale(t *testing.T) {
	// Three equal stakes of an indivisible total: 3333 each, summing to
	// 9999, never 10001.
	got := Probabilities(
		[]decimal.Decimal{d(1), d(1), d(1)},
		[]int64{0, 0, 0},
		d(3),
	)
	var sum int64
	for _, p := range got {
		if p != 3333 {
			t.Errorf("probabilities = %v, want 3333 each", got)
		}
		sum += p
	}
	if sum > BasisPoints {
		t.Errorf("sum = %d, want <= %d", sum, BasisPoints)
	}
}

func TestNearest(t *testing.T) {
	values := []decimal.Decimal{d(100), d(200), d(300)}

	cases := []struct {
		target decimal.Decimal
		want   int
	}{
		{d(90), 0},
		{d(149), 0},
		{d(151), 1},
		{d(250), 1}, // exact tie breaks to the lower index
		{d(1000), 2},
		{d(300), 2},
	}
	for _, tc := range cases {
		got, err := Nearest(values, tc.target)
		if err != nil {
			t.Fatalf("Nearest(%s): %v", tc.target, err)
		}
		if got != tc.want {
			t.Errorf("Nearest(%s) = %d, want %d", tc.target, got, tc.want)
		}
	}
}

func TestNearest_Empty(t *testing.T) {
	if _, err := Nearest(nil, d(1)); !errors.Is(err, ErrNoOutcomes) {
		t.Errorf("Nearest(empty) = %v, want ErrNoOutcomes", err)
	}
}
