package oracle

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestComparisonValue(t *testing.T) {
	cases := []struct {
		name string
		p    Price
		want decimal.Decimal
	}{
		{"zero expo", Price{Mantissa: 6512345, Expo: 0}, decimal.NewFromInt(6512345)},
		{"negative expo scales up", Price{Mantissa: 6512345678, Expo: -8}, decimal.New(6512345678, 8)},
		{"positive expo divides down", Price{Mantissa: 6512345678, Expo: 2}, decimal.NewFromInt(65123456)},
		{"positive expo truncates", Price{Mantissa: 199, Expo: 2}, decimal.NewFromInt(1)},
		{"negative mantissa uses magnitude", Price{Mantissa: -65000, Expo: 0}, decimal.NewFromInt(65000)},
		{"negative mantissa negative expo", Price{Mantissa: -65, Expo: -2}, decimal.NewFromInt(6500)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComparisonValue(tc.p); !got.Equal(tc.want) {
				t.Errorf("ComparisonValue(%+v) = %s, want %s", tc.p, got, tc.want)
			}
		})
	}
}

func TestFresh(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"current", 0, true},
		{"inside window", 30 * time.Second, true},
		{"exactly at window", 60 * time.Second, true},
		{"one second past", 61 * time.Second, false},
		{"future timestamp", -5 * time.Second, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fresh(now.Add(-tc.age), now); got != tc.want {
				t.Errorf("Fresh(age=%s) = %v, want %v", tc.age, got, tc.want)
			}
		})
	}
}
