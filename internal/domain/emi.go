package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	one            = decimal.NewFromInt(1)
	monthsPerYear  = decimal.NewFromInt(12)
	percentDivisor = decimal.NewFromInt(100)
)

// ComputeEMI calculates the equated monthly installment for a loan:
//
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1)
//
// where r is the monthly rate (annual percent / 1200, ten digits) and n is
// the number of complete calendar months between startDate and endDate.
// Partial trailing days are truncated. A term of zero or fewer months
// degenerates to a single payment of the full principal. A zero rate
// degenerates to an even split of the principal over the term.
func ComputeEMI(principal, annualRatePercent decimal.Decimal, startDate, endDate time.Time) decimal.Decimal {
	termMonths := MonthsBetween(startDate, endDate)
	if termMonths <= 0 {
		return RoundAmount(principal)
	}

	monthlyRate := RoundRate(annualRatePercent.Div(percentDivisor.Mul(monthsPerYear)))
	if monthlyRate.IsZero() {
		return principal.DivRound(decimal.NewFromInt(int64(termMonths)), AmountScale)
	}

	factor := one.Add(monthlyRate).Pow(decimal.NewFromInt(int64(termMonths)))

	return principal.
		Mul(monthlyRate).
		Mul(factor).
		DivRound(factor.Sub(one), AmountScale)
}

// MonthsBetween returns the number of complete calendar months from start
// to end. Jan 15 to Apr 15 is three months; Jan 15 to Apr 14 is two.
// Returns zero when end is not after start.
func MonthsBetween(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}

	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}

	if months < 0 {
		return 0
	}

	return months
}

// AddCalendarMonth advances a date by one calendar month, clamping the day
// to the last day of the target month (Jan 31 advances to Feb 28/29).
func AddCalendarMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()

	day := t.Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, t.Location())
}
