package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/usecase"
)

// ClientResponse represents a client in API responses.
type ClientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientFromDomain converts a domain client to a response.
func ClientFromDomain(c *domain.Client) *ClientResponse {
	return &ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ClientsFromDomain converts domain clients to responses.
func ClientsFromDomain(clients []*domain.Client) []*ClientResponse {
	result := make([]*ClientResponse, len(clients))
	for i, c := range clients {
		result[i] = ClientFromDomain(c)
	}
	return result
}

// LoanResponse represents a loan in API responses. Money is rendered as
// decimal strings, loan dates as YYYY-MM-DD.
type LoanResponse struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"client_id"`
	Principal       string    `json:"principal"`
	InterestRate    string    `json:"interest_rate"`
	Outstanding     string    `json:"outstanding"`
	Status          string    `json:"status"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	NextPaymentDate *string   `json:"next_payment_date,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LoanFromDomain converts a domain loan to a response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	resp := &LoanResponse{
		ID:           l.ID,
		ClientID:     l.ClientID,
		Principal:    l.Principal.String(),
		InterestRate: l.InterestRate.String(),
		Outstanding:  l.Outstanding.String(),
		Status:       string(l.Status),
		StartDate:    l.StartDate.Format(time.DateOnly),
		EndDate:      l.EndDate.Format(time.DateOnly),
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.NextPaymentDate != nil {
		next := l.NextPaymentDate.Format(time.DateOnly)
		resp.NextPaymentDate = &next
	}
	return resp
}

// LoansFromDomain converts domain loans to responses.
func LoansFromDomain(loans []*domain.Loan) []*LoanResponse {
	result := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = LoanFromDomain(l)
	}
	return result
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID          string    `json:"id"`
	LoanID      string    `json:"loan_id"`
	Amount      string    `json:"amount"`
	PaymentDate string    `json:"payment_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:          p.ID,
		LoanID:      p.LoanID,
		Amount:      p.Amount.String(),
		PaymentDate: p.PaymentDate.Format(time.DateOnly),
		CreatedAt:   p.CreatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i := range payments {
		result[i] = PaymentFromDomain(&payments[i])
	}
	return result
}

// PostPaymentResponse carries the posted payment and the loan's new
// outstanding balance.
type PostPaymentResponse struct {
	Payment     *PaymentResponse `json:"payment"`
	Outstanding string           `json:"outstanding"`
}

// EMIResponse represents a loan's monthly installment.
type EMIResponse struct {
	LoanID         string `json:"loan_id"`
	MonthlyPayment string `json:"monthly_payment"`
}

// OutstandingResponse represents a single loan's outstanding balance.
type OutstandingResponse struct {
	LoanID      string `json:"loan_id"`
	Outstanding string `json:"outstanding"`
}

// PortfolioOutstandingResponse represents the book-wide outstanding total.
type PortfolioOutstandingResponse struct {
	TotalOutstanding string    `json:"total_outstanding"`
	AsOf             time.Time `json:"as_of"`
}

// NewPortfolioOutstandingResponse builds a portfolio summary.
func NewPortfolioOutstandingResponse(total decimal.Decimal, asOf time.Time) *PortfolioOutstandingResponse {
	return &PortfolioOutstandingResponse{
		TotalOutstanding: total.String(),
		AsOf:             asOf,
	}
}

// ReconciliationResponse reports one loan's ledger-vs-balance check.
type ReconciliationResponse struct {
	LoanID            string    `json:"loan_id"`
	RecordedBalance   string    `json:"recorded_balance"`
	CalculatedBalance string    `json:"calculated_balance"`
	Difference        string    `json:"difference"`
	IsReconciled      bool      `json:"is_reconciled"`
	CheckedAt         time.Time `json:"checked_at"`
}

// ReconciliationsFromUseCase converts reconciliation results to responses.
func ReconciliationsFromUseCase(results []*usecase.ReconciliationResult) []*ReconciliationResponse {
	out := make([]*ReconciliationResponse, len(results))
	for i, r := range results {
		out[i] = &ReconciliationResponse{
			LoanID:            r.LoanID,
			RecordedBalance:   r.RecordedBalance.String(),
			CalculatedBalance: r.CalculatedBalance.String(),
			Difference:        r.Difference.String(),
			IsReconciled:      r.IsReconciled,
			CheckedAt:         r.CheckedAt,
		}
	}
	return out
}

// ListClientsResponse wraps a page of clients.
type ListClientsResponse struct {
	Clients []*ClientResponse `json:"clients"`
	Total   int64             `json:"total"`
}

// ListLoansResponse wraps a page of loans.
type ListLoansResponse struct {
	Loans []*LoanResponse `json:"loans"`
	Total int64           `json:"total"`
}

// ListPaymentsResponse wraps a loan's payment history.
type ListPaymentsResponse struct {
	Payments []*PaymentResponse `json:"payments"`
	Total    int64              `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
