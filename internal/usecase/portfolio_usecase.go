package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/infrastructure/metrics"
)

// Portfolio reads cover every loan; pages only bound individual repository
// queries and are walked to exhaustion.
const portfolioPageSize = 1000

// PortfolioUseCase rolls up balances and overdue state across loans. Its
// reads are per-loan-consistent snapshots; they may run concurrently with
// postings against unrelated loans.
type PortfolioUseCase struct {
	loanRepo  LoanRepository
	auditRepo AuditRepository
	idGen     IDGenerator
	clock     Clock
	metrics   *metrics.Metrics
}

// NewPortfolioUseCase creates a new PortfolioUseCase.
func NewPortfolioUseCase(
	loanRepo LoanRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	clock Clock,
	metrics *metrics.Metrics,
) *PortfolioUseCase {
	return &PortfolioUseCase{
		loanRepo:  loanRepo,
		auditRepo: auditRepo,
		idGen:     idGen,
		clock:     clock,
		metrics:   metrics,
	}
}

// collectLoans drains a paged listing. A short page marks the end of the
// book; status transitions must not happen while paging, or offsets shift
// under the filter and rows get skipped.
func collectLoans(ctx context.Context, page func(ctx context.Context, limit, offset int) ([]*domain.Loan, error)) ([]*domain.Loan, error) {
	var all []*domain.Loan
	for offset := 0; ; offset += portfolioPageSize {
		loans, err := page(ctx, portfolioPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, loans...)
		if len(loans) < portfolioPageSize {
			return all, nil
		}
	}
}

// TotalOutstanding sums outstanding balances across the whole book.
func (uc *PortfolioUseCase) TotalOutstanding(ctx context.Context) (decimal.Decimal, error) {
	loans, err := collectLoans(ctx, uc.loanRepo.List)
	if err != nil {
		return decimal.Zero, err
	}

	total := domain.TotalOutstanding(loans)

	if uc.metrics != nil {
		value, _ := total.Float64()
		uc.metrics.PortfolioOutstanding.Set(value)
	}

	return total, nil
}

// OverdueLoans returns unsettled loans past their end date as of the given
// date, in storage order.
func (uc *PortfolioUseCase) OverdueLoans(ctx context.Context, asOf time.Time) ([]*domain.Loan, error) {
	loans, err := collectLoans(ctx, func(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
		return uc.loanRepo.ListByStatus(ctx,
			[]domain.LoanStatus{domain.StatusActive, domain.StatusOverdue}, limit, offset)
	})
	if err != nil {
		return nil, err
	}

	overdue := domain.OverdueLoans(loans, asOf)

	if uc.metrics != nil {
		uc.metrics.OverdueLoans.Set(float64(len(overdue)))
	}

	return overdue, nil
}

// SweepOverdue marks ACTIVE loans past their end date as OVERDUE and
// returns how many transitioned. Run periodically by the scheduler or on
// demand from the CLI.
func (uc *PortfolioUseCase) SweepOverdue(ctx context.Context) (int, error) {
	asOf := uc.clock.Now().UTC()

	loans, err := collectLoans(ctx, func(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
		return uc.loanRepo.ListByStatus(ctx, []domain.LoanStatus{domain.StatusActive}, limit, offset)
	})
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, loan := range loans {
		if !loan.MarkOverdue(asOf) {
			continue
		}

		if err := uc.loanRepo.UpdateStatus(ctx, loan.ID, domain.StatusOverdue, asOf); err != nil {
			return swept, fmt.Errorf("failed to mark loan %s overdue: %w", loan.ID, err)
		}

		if uc.auditRepo != nil {
			_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
				ID:           uc.idGen.Generate(),
				UserID:       "system",
				Action:       string(domain.AuditActionLoanOverdue),
				ResourceType: "loan",
				ResourceID:   loan.ID,
				AfterState:   domain.MarshalState(loan),
				Status:       string(domain.AuditStatusSuccess),
				CreatedAt:    asOf,
			})
		}

		swept++
	}

	return swept, nil
}

// ReconciliationResult reports one loan's cached balance against the
// recompute from its ledger.
type ReconciliationResult struct {
	LoanID            string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	CheckedAt         time.Time
}

// ReconcilePortfolio recomputes every loan's outstanding balance from its
// ledger and reports loans whose cached balance drifted. A non-empty
// discrepancy list indicates a write-path bug, not data to be repaired
// here.
func (uc *PortfolioUseCase) ReconcilePortfolio(ctx context.Context) ([]*ReconciliationResult, error) {
	loans, err := collectLoans(ctx, uc.loanRepo.List)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()

	results := make([]*ReconciliationResult, 0, len(loans))
	for _, loan := range loans {
		calculated := domain.SubClamped(loan.Principal, loan.Ledger.TotalPaid())

		results = append(results, &ReconciliationResult{
			LoanID:            loan.ID,
			RecordedBalance:   loan.Outstanding,
			CalculatedBalance: calculated,
			Difference:        loan.Outstanding.Sub(calculated),
			IsReconciled:      loan.Outstanding.Equal(calculated),
			CheckedAt:         now,
		})
	}

	return results, nil
}
