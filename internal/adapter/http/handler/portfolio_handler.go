package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/microloan/internal/adapter/http/dto"
	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/usecase"
)

// PortfolioService defines the behavior needed by PortfolioHandler.
type PortfolioService interface {
	TotalOutstanding(ctx context.Context) (decimal.Decimal, error)
	OverdueLoans(ctx context.Context, asOf time.Time) ([]*domain.Loan, error)
	SweepOverdue(ctx context.Context) (int, error)
	ReconcilePortfolio(ctx context.Context) ([]*usecase.ReconciliationResult, error)
}

// PortfolioHandler handles portfolio-level HTTP requests.
type PortfolioHandler struct {
	portfolioUC PortfolioService
	clock       usecase.Clock
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioUC PortfolioService, clock usecase.Clock) *PortfolioHandler {
	return &PortfolioHandler{portfolioUC: portfolioUC, clock: clock}
}

// GetOutstanding returns the book-wide outstanding total.
func (h *PortfolioHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	total, err := h.portfolioUC.TotalOutstanding(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to aggregate portfolio", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.NewPortfolioOutstandingResponse(total, h.clock.Now().UTC()))
}

// ListOverdue lists loans past their end date with a balance.
func (h *PortfolioHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	asOf := h.clock.Now().UTC()
	if v := r.URL.Query().Get("as_of"); v != "" {
		parsed, err := time.Parse(time.DateOnly, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
			return
		}
		asOf = parsed
	}

	loans, err := h.portfolioUC.OverdueLoans(r.Context(), asOf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list overdue loans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListLoansResponse{
		Loans: dto.LoansFromDomain(loans),
		Total: int64(len(loans)),
	})
}

// Sweep marks past-due ACTIVE loans as OVERDUE.
func (h *PortfolioHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	swept, err := h.portfolioUC.SweepOverdue(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sweep overdue loans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"swept": swept})
}

// Reconcile recomputes every loan's balance from its ledger and reports
// drift.
func (h *PortfolioHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	results, err := h.portfolioUC.ReconcilePortfolio(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reconcile portfolio", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationsFromUseCase(results))
}
