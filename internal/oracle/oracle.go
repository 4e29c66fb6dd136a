// Package oracle defines the price-oracle boundary for pool resolution.
//
// Two oracle styles are supported. A push oracle requires the caller to
// submit a signed update payload (paying the provider's quoted fee)
// before reading the price it just anchored. A pull oracle serves its
// latest value directly and the caller enforces a maximum age.
//
// Push prices arrive as a signed mantissa/exponent pair; ComparisonValue
// converts them to the unsigned value compared against outcome values.
package oracle

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// FreshnessWindow is the maximum allowed age of an oracle reading for it
// to be trusted during resolution.
const FreshnessWindow = 60 * time.Second

var (
	// ErrStale is returned when an oracle reading is older than the
	// freshness window.
	ErrStale = errors.New("oracle: price older than freshness window")

	// ErrFeeTooLow is returned when the fee attached to a push update
	// is below the provider's quote.
	ErrFeeTooLow = errors.New("oracle: attached fee below quoted update fee")
)

// Price is a push-oracle price: value = mantissa × 10^expo, timestamped
// by the provider.
type Price struct {
	Mantissa    int64     `json:"mantissa"`
	Expo        int32     `json:"expo"`
	PublishedAt time.Time `json:"published_at"`
}

// Reading is a pull-oracle observation.
type Reading struct {
	Value     decimal.Decimal `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PushClient is the push-oracle call contract: quote the update fee,
// submit the update with payment, then read the freshly anchored price.
type PushClient interface {
	UpdateFee(ctx context.Context, update []byte) (decimal.Decimal, error)
	SubmitUpdate(ctx context.Context, update []byte, fee decimal.Decimal) error
	LatestPrice(ctx context.Context) (Price, error)
}

// PullClient is the pull-oracle call contract: read the latest value and
// its timestamp; the caller enforces freshness.
type PullClient interface {
	Read(ctx context.Context) (Reading, error)
}

// ComparisonValue converts a signed mantissa/exponent price into the
// unsigned value compared against outcome values:
//
//	expo <  0 → |mantissa| × 10^|expo|
//	expo >= 0 → |mantissa| ÷ 10^expo  (truncating)
func ComparisonValue(p Price) decimal.Decimal {
	m := p.Mantissa
	if m < 0 {
		m = -m
	}
	if p.Expo < 0 {
		return decimal.New(m, -p.Expo)
	}
	return decimal.NewFromInt(m).Div(decimal.New(1, p.Expo)).Floor()
}

// Fresh reports whether a reading published at ts is still inside the
// freshness window at time now.
func Fresh(ts, now time.Time) bool {
	return !ts.Add(FreshnessWindow).Before(now)
}
