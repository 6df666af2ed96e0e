package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/microloan/internal/usecase"
)

// CreateClientRequest represents a request to register a borrower.
type CreateClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateClientRequest) ToUseCaseInput() usecase.CreateClientInput {
	return usecase.CreateClientInput{
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
	}
}

// UpdateClientRequest represents a partial update of a client's details.
type UpdateClientRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// ToUseCaseInput converts to use case input for the given client ID.
func (r *UpdateClientRequest) ToUseCaseInput(id string) usecase.UpdateClientInput {
	return usecase.UpdateClientInput{
		ID:    id,
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
	}
}

// CreateLoanRequest represents a request to originate a loan. Amounts are
// decimal strings, dates are YYYY-MM-DD.
type CreateLoanRequest struct {
	ClientID     string `json:"client_id"`
	Principal    string `json:"principal"`
	InterestRate string `json:"interest_rate"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLoanRequest) ToUseCaseInput() (usecase.CreateLoanInput, error) {
	principal, err := decimal.NewFromString(r.Principal)
	if err != nil {
		return usecase.CreateLoanInput{}, fmt.Errorf("invalid principal: %w", err)
	}

	rate, err := decimal.NewFromString(r.InterestRate)
	if err != nil {
		return usecase.CreateLoanInput{}, fmt.Errorf("invalid interest rate: %w", err)
	}

	startDate, err := parseDate(r.StartDate)
	if err != nil {
		return usecase.CreateLoanInput{}, fmt.Errorf("invalid start date: %w", err)
	}

	endDate, err := parseDate(r.EndDate)
	if err != nil {
		return usecase.CreateLoanInput{}, fmt.Errorf("invalid end date: %w", err)
	}

	return usecase.CreateLoanInput{
		ClientID:     r.ClientID,
		Principal:    principal,
		InterestRate: rate,
		StartDate:    startDate,
		EndDate:      endDate,
	}, nil
}

// PostPaymentRequest represents a request to post a payment against a loan.
type PostPaymentRequest struct {
	Amount      string `json:"amount"`
	PaymentDate string `json:"payment_date"`
}

// ToUseCaseInput converts to use case input for the given loan ID.
func (r *PostPaymentRequest) ToUseCaseInput(loanID string) (usecase.PostPaymentInput, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return usecase.PostPaymentInput{}, fmt.Errorf("invalid amount: %w", err)
	}

	paymentDate, err := parseDate(r.PaymentDate)
	if err != nil {
		return usecase.PostPaymentInput{}, fmt.Errorf("invalid payment date: %w", err)
	}

	return usecase.PostPaymentInput{
		LoanID:      loanID,
		Amount:      amount,
		PaymentDate: paymentDate,
	}, nil
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// parseDate accepts YYYY-MM-DD, falling back to RFC 3339.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
