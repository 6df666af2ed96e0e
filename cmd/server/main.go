package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/microloan/internal/adapter/http"
	"github.com/iho/microloan/internal/adapter/http/handler"
	"github.com/iho/microloan/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/microloan/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/microloan/internal/adapter/repository/redis"
	"github.com/iho/microloan/internal/infrastructure/auth"
	"github.com/iho/microloan/internal/infrastructure/config"
	"github.com/iho/microloan/internal/infrastructure/logger"
	"github.com/iho/microloan/internal/infrastructure/metrics"
	"github.com/iho/microloan/internal/infrastructure/postgres"
	"github.com/iho/microloan/internal/infrastructure/redis"
	"github.com/iho/microloan/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	clientRepo := postgresRepo.NewClientRepository(pool)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()
	clock := usecase.SystemClock{}
	appMetrics := metrics.New()

	// Initialize use cases
	clientUC := usecase.NewClientUseCase(clientRepo, loanRepo, idGen, clock)
	loanUC := usecase.NewLoanUseCase(loanRepo, clientRepo, auditRepo, idGen, clock, cache, appMetrics)
	paymentUC := usecase.NewPaymentUseCase(txManager, loanRepo, paymentRepo, auditRepo, idGen, clock, retrier, cache, appMetrics)
	portfolioUC := usecase.NewPortfolioUseCase(loanRepo, auditRepo, idGen, clock, appMetrics)
	userUC := usecase.NewUserUseCase(userRepo, idGen, clock)

	// Authentication
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		log.Fatal().Msg("AUTH_ENABLED requires JWT_SECRET")
	}

	// Initialize handlers
	clientHandler := handler.NewClientHandler(clientUC)
	loanHandler := handler.NewLoanHandler(loanUC)
	paymentHandler := handler.NewPaymentHandler(paymentUC)
	portfolioHandler := handler.NewPortfolioHandler(portfolioUC, clock)
	authHandler := handler.NewAuthHandler(userUC, jwtManager)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	rateLimiter := middleware.NewRateLimiter(100, 200)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ClientHandler:    clientHandler,
		LoanHandler:      loanHandler,
		PaymentHandler:   paymentHandler,
		PortfolioHandler: portfolioHandler,
		AuthHandler:      authHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      rateLimiter,
		JWTManager:       jwtManager,
		AuthEnabled:      cfg.AuthEnabled,
		Logger:           appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Background overdue sweep
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go runOverdueSweep(sweepCtx, portfolioUC, cfg.OverdueSweepInterval)

	go pruneRateLimiter(sweepCtx, rateLimiter)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopSweep()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// runOverdueSweep periodically marks past-due ACTIVE loans as OVERDUE.
func runOverdueSweep(ctx context.Context, portfolioUC *usecase.PortfolioUseCase, interval time.Duration) {
	ticker := time.NewTicker(sweepIntervalOrDefault(interval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := portfolioUC.SweepOverdue(ctx)
			if err != nil {
				log.Error().Err(err).Msg("overdue sweep failed")
				continue
			}
			if swept > 0 {
				log.Info().Int("swept", swept).Msg("overdue sweep completed")
			}
		}
	}
}

// pruneRateLimiter periodically evicts idle clients from the limiter.
func pruneRateLimiter(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Prune(time.Hour)
		}
	}
}

// sweepIntervalOrDefault guards against a zero interval from config.
func sweepIntervalOrDefault(interval time.Duration) time.Duration {
	if interval <= 0 {
		return time.Hour
	}
	return interval
}
