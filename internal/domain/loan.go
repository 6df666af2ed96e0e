package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	StatusActive    LoanStatus = "ACTIVE"
	StatusPaid      LoanStatus = "PAID"
	StatusOverdue   LoanStatus = "OVERDUE"
	StatusDefaulted LoanStatus = "DEFAULTED"
)

// IsValid checks if the status is a known status.
func (s LoanStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusPaid, StatusOverdue, StatusDefaulted:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
// DEFAULTED is set by an external collections decision, never by this
// package; once a loan is PAID or DEFAULTED it stays there.
func (s LoanStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusDefaulted
}

// Loan is the aggregate holding a loan's financial state. All mutations go
// through its methods; the ledger is the source of truth for repayments and
// Outstanding is recomputed from it on every append.
type Loan struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StartDate       time.Time
	EndDate         time.Time
	NextPaymentDate *time.Time
	ID              string
	ClientID        string
	Principal       decimal.Decimal
	InterestRate    decimal.Decimal
	Outstanding     decimal.Decimal
	Status          LoanStatus
	Ledger          PaymentLedger
}

// NewLoan validates inputs and initializes a loan: outstanding equals the
// principal, the first installment falls due one month after the start
// date, and the status is ACTIVE. The caller assigns ID and ClientID after
// resolving the client.
func NewLoan(clientID string, principal, interestRate decimal.Decimal, startDate, endDate time.Time, now time.Time) (*Loan, error) {
	if err := ValidatePrincipal(principal); err != nil {
		return nil, err
	}
	if err := ValidateInterestRate(interestRate); err != nil {
		return nil, err
	}
	if err := ValidateLoanTerm(startDate, endDate); err != nil {
		return nil, err
	}

	next := AddCalendarMonth(startDate)

	return &Loan{
		ClientID:        clientID,
		Principal:       principal,
		InterestRate:    interestRate,
		StartDate:       startDate,
		EndDate:         endDate,
		NextPaymentDate: &next,
		Status:          StatusActive,
		Outstanding:     principal,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// EMI returns the equated monthly installment for this loan's terms.
func (l *Loan) EMI() decimal.Decimal {
	return ComputeEMI(l.Principal, l.InterestRate, l.StartDate, l.EndDate)
}

// PostPayment appends a payment to the ledger and recomputes the loan's
// state. Validation happens before any mutation, so a rejected payment
// leaves the loan untouched. Returns the new outstanding balance.
//
// Callers must serialize invocations per loan; two concurrent postings
// against the same loan are a lost-update hazard on the outstanding
// balance. The persistence layer owns that boundary (a row lock around the
// read-modify-write).
func (l *Loan) PostPayment(payment Payment, now time.Time) (decimal.Decimal, error) {
	if err := ValidatePaymentAmount(payment.Amount); err != nil {
		return l.Outstanding, err
	}
	if l.Status == StatusPaid {
		return l.Outstanding, ErrLoanAlreadyPaid
	}
	if l.Status == StatusDefaulted {
		return l.Outstanding, ErrLoanDefaulted
	}
	if payment.PaymentDate.After(now) {
		return l.Outstanding, ErrFuturePaymentDate
	}

	l.Ledger.Append(payment)
	l.Outstanding = l.reconcileOutstanding()

	next := AddCalendarMonth(payment.PaymentDate)
	l.NextPaymentDate = &next

	if l.Outstanding.IsZero() {
		l.Status = StatusPaid
		l.NextPaymentDate = nil
	} else if payment.PaymentDate.After(l.EndDate) || now.After(l.EndDate) {
		l.Status = StatusOverdue
	}

	l.UpdatedAt = now

	return l.Outstanding, nil
}

// MarkOverdue transitions an ACTIVE loan past its end date to OVERDUE.
// Reports whether a transition happened. Terminal loans are left alone.
func (l *Loan) MarkOverdue(asOf time.Time) bool {
	if l.Status != StatusActive {
		return false
	}
	if !l.EndDate.Before(asOf) {
		return false
	}

	l.Status = StatusOverdue
	l.UpdatedAt = asOf

	return true
}

// IsOverdue reports whether the loan is unsettled past its end date.
func (l *Loan) IsOverdue(asOf time.Time) bool {
	if l.Status != StatusActive && l.Status != StatusOverdue {
		return false
	}
	return l.EndDate.Before(asOf)
}

// Reconcile recomputes the outstanding cache from the ledger and reports
// whether the stored value already agreed with it.
func (l *Loan) Reconcile() bool {
	expected := l.reconcileOutstanding()
	consistent := l.Outstanding.Equal(expected)
	l.Outstanding = expected
	return consistent
}

func (l *Loan) reconcileOutstanding() decimal.Decimal {
	return SubClamped(l.Principal, l.Ledger.TotalPaid())
}
