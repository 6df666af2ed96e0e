package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"half rounds up", "10.005", "10.01"},
		{"below half rounds down", "10.004", "10.00"},
		{"already two digits", "10.10", "10.10"},
		{"many digits", "888.4878397109", "888.49"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundAmount(decimal.RequireFromString(tt.in))
			if got.StringFixed(2) != tt.want {
				t.Errorf("RoundAmount(%s) = %s, want %s", tt.in, got.StringFixed(2), tt.want)
			}
		})
	}
}

func TestRoundRate(t *testing.T) {
	// 12 / 1200 carried to ten digits.
	rate := RoundRate(decimal.NewFromInt(12).Div(decimal.NewFromInt(1200)))

	if rate.String() != "0.01" {
		t.Errorf("RoundRate() = %s, want 0.01", rate)
	}

	// A repeating quotient truncates at ten digits, half up.
	rate = RoundRate(decimal.NewFromInt(10).DivRound(decimal.NewFromInt(1200), 20))
	if rate.String() != "0.0083333333" {
		t.Errorf("RoundRate() = %s, want 0.0083333333", rate)
	}
}

func TestSubClamped(t *testing.T) {
	tests := []struct {
		name string
		a    int64
		b    int64
		want string
	}{
		{"normal subtraction", 1000, 300, "700"},
		{"exact settlement", 1000, 1000, "0"},
		{"overpayment clamps to zero", 1000, 1500, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubClamped(decimal.NewFromInt(tt.a), decimal.NewFromInt(tt.b))
			if got.String() != tt.want {
				t.Errorf("SubClamped(%d, %d) = %s, want %s", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
