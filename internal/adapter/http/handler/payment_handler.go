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

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	PostPayment(ctx context.Context, input usecase.PostPaymentInput) (*domain.Payment, decimal.Decimal, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	ListPaymentsByLoan(ctx context.Context, loanID string) ([]domain.Payment, error)
}

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Post records a payment against a loan and returns the payment together
// with the new outstanding balance.
func (h *PaymentHandler) Post(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")
	if loanID == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	var req dto.PostPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(loanID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	payment, outstanding, err := h.paymentUC.PostPayment(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PostPaymentResponse{
		Payment:     dto.PaymentFromDomain(payment),
		Outstanding: outstanding.String(),
	})
}

// Get retrieves a payment by ID.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	payment, err := h.paymentUC.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// ListByLoan lists a loan's payments in posting order.
func (h *PaymentHandler) ListByLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")
	if loanID == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	payments, err := h.paymentUC.ListPaymentsByLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list payments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListPaymentsResponse{
		Payments: dto.PaymentsFromDomain(payments),
		Total:    int64(len(payments)),
	})
}
