package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/microloan/internal/adapter/http/handler"
	"github.com/iho/microloan/internal/adapter/http/middleware"
	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/infrastructure/auth"
	"github.com/iho/microloan/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ClientHandler    *handler.ClientHandler
	LoanHandler      *handler.LoanHandler
	PaymentHandler   *handler.PaymentHandler
	PortfolioHandler *handler.PortfolioHandler
	AuthHandler      *handler.AuthHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	JWTManager       *auth.JWTManager
	AuthEnabled      bool
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		if cfg.AuthHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", cfg.AuthHandler.Login)
				r.Post("/register", cfg.AuthHandler.Register)
				if cfg.AuthEnabled {
					r.With(middleware.AuthMiddleware(cfg.JWTManager)).Get("/me", cfg.AuthHandler.GetCurrentUser)
				} else {
					r.Get("/me", cfg.AuthHandler.GetCurrentUser)
				}
			})
		}

		r.Group(func(r chi.Router) {
			canOriginate := passthrough
			canPostPayments := passthrough
			canDelete := passthrough
			canManagePortfolio := passthrough
			if cfg.AuthEnabled {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
				canOriginate = middleware.RequirePermission(domain.Role.CanOriginate)
				canPostPayments = middleware.RequirePermission(domain.Role.CanPostPayments)
				canDelete = middleware.RequirePermission(domain.Role.CanDelete)
				canManagePortfolio = middleware.RequirePermission(domain.Role.CanManagePortfolio)
			}

			// Clients
			r.Route("/clients", func(r chi.Router) {
				r.With(canOriginate).Post("/", cfg.ClientHandler.Create)
				r.Get("/", cfg.ClientHandler.List)
				r.Get("/{id}", cfg.ClientHandler.Get)
				r.With(canOriginate).Put("/{id}", cfg.ClientHandler.Update)
				r.With(canDelete).Delete("/{id}", cfg.ClientHandler.Delete)
			})

			// Loans
			r.Route("/loans", func(r chi.Router) {
				r.With(canOriginate).Post("/", cfg.LoanHandler.Create)
				r.Get("/", cfg.LoanHandler.List)
				r.Get("/overdue", cfg.PortfolioHandler.ListOverdue)
				r.With(canManagePortfolio).Post("/sweep", cfg.PortfolioHandler.Sweep)
				r.Get("/{id}", cfg.LoanHandler.Get)
				r.With(canDelete).Delete("/{id}", cfg.LoanHandler.Delete)
				r.Get("/{id}/emi", cfg.LoanHandler.GetEMI)
				r.Get("/{id}/outstanding", cfg.LoanHandler.GetOutstanding)
				r.With(canPostPayments).Post("/{id}/payments", cfg.PaymentHandler.Post)
				r.Get("/{id}/payments", cfg.PaymentHandler.ListByLoan)
			})

			// Payments
			r.Get("/payments/{id}", cfg.PaymentHandler.Get)

			// Portfolio
			r.Route("/portfolio", func(r chi.Router) {
				r.Get("/outstanding", cfg.PortfolioHandler.GetOutstanding)
				r.With(canManagePortfolio).Post("/reconcile", cfg.PortfolioHandler.Reconcile)
			})
		})
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
