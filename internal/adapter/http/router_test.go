package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/microloan/internal/adapter/http/handler"
	apimiddleware "github.com/iho/microloan/internal/adapter/http/middleware"
	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_MetricsEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"name":"Amina Diallo","email":"amina@example.com","phone":"+221771234567"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/clients/",
		"GET /api/v1/clients/{id}",
		"POST /api/v1/loans/",
		"GET /api/v1/loans/{id}/emi",
		"POST /api/v1/loans/{id}/payments",
		"GET /api/v1/loans/overdue",
		"GET /api/v1/portfolio/outstanding",
		"POST /api/v1/auth/login",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		HealthHandler:    &handler.HealthHandler{},
		ClientHandler:    handler.NewClientHandler(&stubClientService{}),
		LoanHandler:      handler.NewLoanHandler(&stubLoanService{}),
		PaymentHandler:   handler.NewPaymentHandler(&stubPaymentService{}),
		PortfolioHandler: handler.NewPortfolioHandler(&stubPortfolioService{}, stubClock{}),
		AuthHandler:      handler.NewAuthHandler(&stubUserService{}, nil),
		Logger:           zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

type stubClientService struct{}

func (stubClientService) CreateClient(ctx context.Context, input usecase.CreateClientInput) (*domain.Client, error) {
	return &domain.Client{ID: "client"}, nil
}

func (stubClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return &domain.Client{ID: id}, nil
}

func (stubClientService) UpdateClient(ctx context.Context, input usecase.UpdateClientInput) (*domain.Client, error) {
	return &domain.Client{ID: input.ID}, nil
}

func (stubClientService) DeleteClient(ctx context.Context, id string) error {
	return nil
}

func (stubClientService) ListClients(ctx context.Context, input usecase.ListClientsInput) ([]*domain.Client, error) {
	return []*domain.Client{}, nil
}

type stubLoanService struct{}

func (stubLoanService) CreateLoan(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error) {
	return &domain.Loan{ID: "loan"}, nil
}

func (stubLoanService) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return &domain.Loan{ID: id}, nil
}

func (stubLoanService) ListLoans(ctx context.Context, input usecase.ListLoansInput) ([]*domain.Loan, error) {
	return []*domain.Loan{}, nil
}

func (stubLoanService) DeleteLoan(ctx context.Context, id string) error {
	return nil
}

func (stubLoanService) ComputeEMI(ctx context.Context, loanID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubLoanService) GetOutstanding(ctx context.Context, loanID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubPaymentService struct{}

func (stubPaymentService) PostPayment(ctx context.Context, input usecase.PostPaymentInput) (*domain.Payment, decimal.Decimal, error) {
	return &domain.Payment{ID: "payment"}, decimal.Zero, nil
}

func (stubPaymentService) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return &domain.Payment{ID: id}, nil
}

func (stubPaymentService) ListPaymentsByLoan(ctx context.Context, loanID string) ([]domain.Payment, error) {
	return []domain.Payment{}, nil
}

type stubPortfolioService struct{}

func (stubPortfolioService) TotalOutstanding(ctx context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubPortfolioService) OverdueLoans(ctx context.Context, asOf time.Time) ([]*domain.Loan, error) {
	return []*domain.Loan{}, nil
}

func (stubPortfolioService) SweepOverdue(ctx context.Context) (int, error) {
	return 0, nil
}

func (stubPortfolioService) ReconcilePortfolio(ctx context.Context) ([]*usecase.ReconciliationResult, error) {
	return []*usecase.ReconciliationResult{}, nil
}

type stubUserService struct{}

func (stubUserService) CreateUser(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error) {
	return &domain.User{ID: "user"}, nil
}

func (stubUserService) Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error) {
	return &domain.User{ID: "user"}, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
