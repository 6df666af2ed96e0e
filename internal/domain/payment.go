package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents a single repayment posted against a loan. Payments are
// created exclusively through Loan.PostPayment and are never mutated or
// reordered afterwards; a correcting entry is a new payment.
type Payment struct {
	CreatedAt   time.Time
	PaymentDate time.Time
	ID          string
	LoanID      string
	Amount      decimal.Decimal
}
