package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/infrastructure/metrics"
)

// LoanUseCase handles loan origination and lookup.
type LoanUseCase struct {
	loanRepo   LoanRepository
	clientRepo ClientRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	clock      Clock
	cache      Cache
	metrics    *metrics.Metrics
}

// NewLoanUseCase creates a new LoanUseCase.
func NewLoanUseCase(
	loanRepo LoanRepository,
	clientRepo ClientRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	clock Clock,
	cache Cache,
	metrics *metrics.Metrics,
) *LoanUseCase {
	return &LoanUseCase{
		loanRepo:   loanRepo,
		clientRepo: clientRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		clock:      clock,
		cache:      cache,
		metrics:    metrics,
	}
}

// CreateLoanInput represents input for originating a loan.
type CreateLoanInput struct {
	StartDate    time.Time
	EndDate      time.Time
	ClientID     string
	Principal    decimal.Decimal
	InterestRate decimal.Decimal
}

// CreateLoan validates the input, resolves the client and persists a new
// ACTIVE loan.
func (uc *LoanUseCase) CreateLoan(ctx context.Context, input CreateLoanInput) (*domain.Loan, error) {
	if _, err := uc.clientRepo.GetByID(ctx, input.ClientID); err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()

	loan, err := domain.NewLoan(input.ClientID, input.Principal, input.InterestRate,
		input.StartDate, input.EndDate, now)
	if err != nil {
		return nil, err
	}
	loan.ID = uc.idGen.Generate()

	if err := uc.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionLoanCreate, loan.ID, nil, loan)

	if uc.metrics != nil {
		uc.metrics.LoansCreated.Inc()
	}

	return loan, nil
}

// GetLoan retrieves a loan with its full payment ledger.
func (uc *LoanUseCase) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return uc.loanRepo.GetByID(ctx, id)
}

// ListLoansInput represents input for listing loans.
type ListLoansInput struct {
	ClientID string
	Limit    int
	Offset   int
}

// ListLoans lists loans with pagination, optionally filtered by client.
func (uc *LoanUseCase) ListLoans(ctx context.Context, input ListLoansInput) ([]*domain.Loan, error) {
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)

	if input.ClientID != "" {
		return uc.loanRepo.ListByClient(ctx, input.ClientID, limit, offset)
	}

	return uc.loanRepo.List(ctx, limit, offset)
}

// DeleteLoan removes a loan and its ledger.
func (uc *LoanUseCase) DeleteLoan(ctx context.Context, id string) error {
	loan, err := uc.loanRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.loanRepo.Delete(ctx, id); err != nil {
		return err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, emiCacheKey(id))
	}

	uc.audit(ctx, domain.AuditActionLoanDelete, id, loan, nil)

	return nil
}

// ComputeEMI returns the equated monthly installment for a stored loan.
// Loan terms are immutable, so the result is cached.
func (uc *LoanUseCase) ComputeEMI(ctx context.Context, loanID string) (decimal.Decimal, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, emiCacheKey(loanID)); err == nil && cached != nil {
			if emi, err := decimal.NewFromString(string(cached)); err == nil {
				return emi, nil
			}
		}
	}

	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return decimal.Zero, err
	}

	emi := loan.EMI()

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, emiCacheKey(loanID), []byte(emi.String()), EMICacheTTL)
	}

	return emi, nil
}

// GetOutstanding recomputes a loan's outstanding balance from its ledger.
func (uc *LoanUseCase) GetOutstanding(ctx context.Context, loanID string) (decimal.Decimal, error) {
	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.SubClamped(loan.Principal, loan.Ledger.TotalPaid()), nil
}

func (uc *LoanUseCase) audit(ctx context.Context, action domain.AuditAction, resourceID string, before, after any) {
	if uc.auditRepo == nil {
		return
	}

	userID := "system"
	if user, ok := domain.UserFromContext(ctx); ok {
		userID = user.ID
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       userID,
		Action:       string(action),
		ResourceType: "loan",
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    uc.clock.Now().UTC(),
	})
}

func emiCacheKey(loanID string) string {
	return "emi:" + loanID
}
