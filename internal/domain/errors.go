package domain

import "errors"

var (
	// Loan errors
	ErrLoanNotFound       = errors.New("loan not found")
	ErrLoanAlreadyPaid    = errors.New("loan is already paid off")
	ErrLoanDefaulted      = errors.New("loan is defaulted")
	ErrNonPositivePayment = errors.New("payment amount must be positive")
	ErrFuturePaymentDate  = errors.New("payment date cannot be in the future")
	ErrPaymentNotFound    = errors.New("payment not found")

	// Client errors
	ErrClientNotFound = errors.New("client not found")
)
