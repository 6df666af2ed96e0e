package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/microloan/internal/adapter/http/dto"
	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/usecase"
)

// LoanService defines the behavior needed by LoanHandler.
type LoanService interface {
	CreateLoan(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error)
	GetLoan(ctx context.Context, id string) (*domain.Loan, error)
	ListLoans(ctx context.Context, input usecase.ListLoansInput) ([]*domain.Loan, error)
	DeleteLoan(ctx context.Context, id string) error
	ComputeEMI(ctx context.Context, loanID string) (decimal.Decimal, error)
	GetOutstanding(ctx context.Context, loanID string) (decimal.Decimal, error)
}

// LoanHandler handles loan-related HTTP requests.
type LoanHandler struct {
	loanUC LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService) *LoanHandler {
	return &LoanHandler{loanUC: loanUC}
}

// Create originates a new loan.
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	loan, err := h.loanUC.CreateLoan(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create loan", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// Get retrieves a loan by ID.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	loan, err := h.loanUC.GetLoan(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get loan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// List lists loans, optionally filtered by client.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)
	clientID := r.URL.Query().Get("client_id")

	loans, err := h.loanUC.ListLoans(r.Context(), usecase.ListLoansInput{
		ClientID: clientID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list loans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListLoansResponse{
		Loans: dto.LoansFromDomain(loans),
		Total: int64(len(loans)),
	})
}

// Delete removes a loan and its payment history.
func (h *LoanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	if err := h.loanUC.DeleteLoan(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete loan", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetEMI returns a loan's monthly installment.
func (h *LoanHandler) GetEMI(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	emi, err := h.loanUC.ComputeEMI(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute EMI", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EMIResponse{
		LoanID:         id,
		MonthlyPayment: emi.String(),
	})
}

// GetOutstanding returns a loan's outstanding balance.
func (h *LoanHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	outstanding, err := h.loanUC.GetOutstanding(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get outstanding balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OutstandingResponse{
		LoanID:      id,
		Outstanding: outstanding.String(),
	})
}
