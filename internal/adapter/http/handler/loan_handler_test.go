package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/microloan/internal/adapter/http/dto"
	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/usecase"
)

type loanServiceStub struct {
	createFn         func(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error)
	getFn            func(ctx context.Context, id string) (*domain.Loan, error)
	listFn           func(ctx context.Context, input usecase.ListLoansInput) ([]*domain.Loan, error)
	deleteFn         func(ctx context.Context, id string) error
	computeEMIFn     func(ctx context.Context, loanID string) (decimal.Decimal, error)
	getOutstandingFn func(ctx context.Context, loanID string) (decimal.Decimal, error)
}

func (s *loanServiceStub) CreateLoan(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error) {
	return s.createFn(ctx, input)
}

func (s *loanServiceStub) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return s.getFn(ctx, id)
}

func (s *loanServiceStub) ListLoans(ctx context.Context, input usecase.ListLoansInput) ([]*domain.Loan, error) {
	return s.listFn(ctx, input)
}

func (s *loanServiceStub) DeleteLoan(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *loanServiceStub) ComputeEMI(ctx context.Context, loanID string) (decimal.Decimal, error) {
	return s.computeEMIFn(ctx, loanID)
}

func (s *loanServiceStub) GetOutstanding(ctx context.Context, loanID string) (decimal.Decimal, error) {
	return s.getOutstandingFn(ctx, loanID)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func activeLoanFixture() *domain.Loan {
	next := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Loan{
		ID:              "loan-1",
		ClientID:        "client-1",
		Principal:       decimal.RequireFromString("10000"),
		InterestRate:    decimal.RequireFromString("12"),
		Outstanding:     decimal.RequireFromString("10000"),
		Status:          domain.StatusActive,
		StartDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		NextPaymentDate: &next,
	}
}

func TestLoanHandler_Create_Success(t *testing.T) {
	loan := activeLoanFixture()
	var captured usecase.CreateLoanInput

	handler := NewLoanHandler(&loanServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error) {
			captured = input
			return loan, nil
		},
	})

	body, _ := json.Marshal(dto.CreateLoanRequest{
		ClientID:     "client-1",
		Principal:    "10000",
		InterestRate: "12",
		StartDate:    "2024-01-01",
		EndDate:      "2025-01-01",
	})

	req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.ClientID != "client-1" || !captured.Principal.Equal(decimal.RequireFromString("10000")) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.LoanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "loan-1" || resp.Status != "ACTIVE" {
		t.Fatalf("unexpected loan response: %+v", resp)
	}
}

func TestLoanHandler_Create_InvalidBody(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error) {
			t.Fatal("CreateLoan should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoanHandler_Create_InvalidAmount(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error) {
			t.Fatal("CreateLoan should not be called")
			return nil, nil
		},
	})

	body, _ := json.Marshal(dto.CreateLoanRequest{
		ClientID:     "client-1",
		Principal:    "much",
		InterestRate: "12",
		StartDate:    "2024-01-01",
		EndDate:      "2025-01-01",
	})

	req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoanHandler_Get_NotFound(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Loan, error) {
			return nil, domain.ErrLoanNotFound
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/loans/nope", nil), "id", "nope")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLoanHandler_GetEMI(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		computeEMIFn: func(ctx context.Context, loanID string) (decimal.Decimal, error) {
			if loanID != "loan-1" {
				t.Fatalf("unexpected loan ID %s", loanID)
			}
			return decimal.RequireFromString("888.49"), nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/loans/loan-1/emi", nil), "id", "loan-1")
	rec := httptest.NewRecorder()

	handler.GetEMI(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.EMIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.MonthlyPayment != "888.49" {
		t.Fatalf("MonthlyPayment = %s, want 888.49", resp.MonthlyPayment)
	}
}

func TestLoanHandler_List_ByClient(t *testing.T) {
	var captured usecase.ListLoansInput
	handler := NewLoanHandler(&loanServiceStub{
		listFn: func(ctx context.Context, input usecase.ListLoansInput) ([]*domain.Loan, error) {
			captured = input
			return []*domain.Loan{activeLoanFixture()}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/loans?client_id=client-1&limit=5", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.ClientID != "client-1" || captured.Limit != 5 {
		t.Fatalf("unexpected list input: %+v", captured)
	}

	var resp dto.ListLoansResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("Total = %d, want 1", resp.Total)
	}
}

func TestLoanHandler_Delete(t *testing.T) {
	deleted := ""
	handler := NewLoanHandler(&loanServiceStub{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/loans/loan-1", nil), "id", "loan-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if deleted != "loan-1" {
		t.Fatalf("expected loan-1 deleted, got %q", deleted)
	}
}
