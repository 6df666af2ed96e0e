package domain

import "github.com/shopspring/decimal"

// PaymentLedger holds the payments posted against one loan in insertion
// order, which is also chronological posting order. It is the single source
// of truth for how much has been repaid; the loan's outstanding amount is a
// cache derived from it.
type PaymentLedger struct {
	payments []Payment
}

// NewPaymentLedger builds a ledger from already-posted payments, preserving
// their order. Used when rehydrating a loan from storage.
func NewPaymentLedger(payments []Payment) PaymentLedger {
	return PaymentLedger{payments: payments}
}

// Append adds a payment to the end of the ledger.
func (pl *PaymentLedger) Append(p Payment) {
	pl.payments = append(pl.payments, p)
}

// TotalPaid returns the sum of all payment amounts.
func (pl *PaymentLedger) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range pl.payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Payments returns a copy of the ledger entries in posting order.
func (pl *PaymentLedger) Payments() []Payment {
	out := make([]Payment, len(pl.payments))
	copy(out, pl.payments)
	return out
}

// Len returns the number of posted payments.
func (pl *PaymentLedger) Len() int {
	return len(pl.payments)
}
