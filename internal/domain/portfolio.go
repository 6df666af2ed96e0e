package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TotalOutstanding sums the outstanding balances across a portfolio of
// loans. Each loan contributes principal minus total paid, floored at zero,
// so PAID loans contribute nothing. The computation goes through every
// ledger rather than trusting the cached field.
func TotalOutstanding(loans []*Loan) decimal.Decimal {
	total := decimal.Zero
	for _, loan := range loans {
		total = total.Add(SubClamped(loan.Principal, loan.Ledger.TotalPaid()))
	}
	return total
}

// OverdueLoans returns the loans whose end date has passed without
// settlement as of the given date, preserving input order.
func OverdueLoans(loans []*Loan, asOf time.Time) []*Loan {
	overdue := make([]*Loan, 0)
	for _, loan := range loans {
		if loan.IsOverdue(asOf) {
			overdue = append(overdue, loan)
		}
	}
	return overdue
}
