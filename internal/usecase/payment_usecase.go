package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/infrastructure/metrics"
)

// PaymentUseCase posts payments against loans. Each posting runs inside a
// database transaction that row-locks the loan, which is the per-loan
// mutual exclusion the aggregate requires: two postings against the same
// loan serialize on the lock, postings against different loans do not
// contend.
type PaymentUseCase struct {
	txManager   TransactionManager
	loanRepo    LoanRepository
	paymentRepo PaymentRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	clock       Clock
	retrier     Retrier
	cache       Cache
	metrics     *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	paymentRepo PaymentRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	cache Cache,
	metrics *metrics.Metrics,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:   txManager,
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		clock:       clock,
		retrier:     retrier,
		cache:       cache,
		metrics:     metrics,
	}
}

// PostPaymentInput represents input for posting a payment.
type PostPaymentInput struct {
	PaymentDate time.Time
	LoanID      string
	Amount      decimal.Decimal
}

// PostPayment appends a payment to a loan's ledger and returns the payment
// together with the new outstanding balance. The whole read-modify-write is
// atomic: on any error nothing is persisted and the loan is unchanged.
func (uc *PaymentUseCase) PostPayment(ctx context.Context, input PostPaymentInput) (*domain.Payment, decimal.Decimal, error) {
	var (
		payment     *domain.Payment
		outstanding decimal.Decimal
	)

	operation := func() error {
		var err error
		payment, outstanding, err = uc.postPaymentTx(ctx, input)
		return err
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}
	if err != nil {
		return nil, decimal.Zero, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsPosted.Inc()
		amount, _ := input.Amount.Float64()
		uc.metrics.PaymentAmount.Observe(amount)
	}

	return payment, outstanding, nil
}

func (uc *PaymentUseCase) postPaymentTx(ctx context.Context, input PostPaymentInput) (*domain.Payment, decimal.Decimal, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Row lock: serializes concurrent postings against this loan.
	loan, err := uc.loanRepo.GetByIDForUpdate(txCtx, tx, input.LoanID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	now := uc.clock.Now().UTC()

	payment := domain.Payment{
		ID:          uc.idGen.Generate(),
		LoanID:      loan.ID,
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		CreatedAt:   now,
	}

	outstanding, err := loan.PostPayment(payment, now)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if err := uc.paymentRepo.Create(txCtx, tx, &payment); err != nil {
		return nil, decimal.Zero, err
	}

	if err := uc.loanRepo.UpdateState(txCtx, tx, loan); err != nil {
		return nil, decimal.Zero, err
	}

	if uc.auditRepo != nil {
		userID := "system"
		if user, ok := domain.UserFromContext(ctx); ok {
			userID = user.ID
		}

		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       userID,
			Action:       string(domain.AuditActionPaymentPost),
			ResourceType: "payment",
			ResourceID:   payment.ID,
			AfterState:   domain.MarshalState(payment),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, decimal.Zero, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, decimal.Zero, err
	}

	return &payment, outstanding, nil
}

// GetPayment retrieves a payment by ID.
func (uc *PaymentUseCase) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return uc.paymentRepo.GetByID(ctx, id)
}

// ListPaymentsByLoan lists a loan's payments in posting order.
func (uc *PaymentUseCase) ListPaymentsByLoan(ctx context.Context, loanID string) ([]domain.Payment, error) {
	if _, err := uc.loanRepo.GetByID(ctx, loanID); err != nil {
		return nil, err
	}

	return uc.paymentRepo.ListByLoan(ctx, loanID)
}
