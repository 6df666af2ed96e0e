package domain

import "github.com/shopspring/decimal"

// Monetary precision rules. Stored amounts carry two fractional digits;
// intermediate rate computations carry ten so that two independent
// implementations of the EMI formula agree bit for bit.
const (
	AmountScale = 2
	RateScale   = 10
)

// RoundAmount rounds a monetary value to AmountScale digits, half up.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}

// RoundRate rounds an intermediate rate to RateScale digits, half up.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RateScale)
}

// SubClamped subtracts b from a, flooring the result at zero. Outstanding
// balances never go negative: an overpayment settles the loan and the
// surplus is not tracked here.
func SubClamped(a, b decimal.Decimal) decimal.Decimal {
	result := a.Sub(b)
	if result.IsNegative() {
		return decimal.Zero
	}
	return result
}
