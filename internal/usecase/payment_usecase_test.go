package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/usecase"
)

func newPaymentFixture(t *testing.T) (*usecase.PaymentUseCase, *fakeLoanRepo, *fakePaymentRepo, *fakeTxManager, *fakeAuditRepo) {
	t.Helper()

	loanRepo := newFakeLoanRepo()
	paymentRepo := newFakePaymentRepo()
	txManager := &fakeTxManager{}
	auditRepo := &fakeAuditRepo{}
	clock := &fixedClock{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}

	uc := usecase.NewPaymentUseCase(
		txManager, loanRepo, paymentRepo, auditRepo,
		&seqIDGen{}, clock, passthroughRetrier{}, newMemCache(), nil,
	)

	return uc, loanRepo, paymentRepo, txManager, auditRepo
}

func TestPaymentUseCase_PostPayment(t *testing.T) {
	uc, loanRepo, paymentRepo, txManager, auditRepo := newPaymentFixture(t)
	loanRepo.put(testLoan(t, "loan-1"))

	payment, outstanding, err := uc.PostPayment(context.Background(), usecase.PostPaymentInput{
		LoanID:      "loan-1",
		Amount:      decimal.NewFromInt(3000),
		PaymentDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !outstanding.Equal(decimal.NewFromInt(7000)) {
		t.Errorf("expected outstanding 7000, got %s", outstanding)
	}

	if payment.LoanID != "loan-1" {
		t.Errorf("expected payment against loan-1, got %s", payment.LoanID)
	}

	if _, err := paymentRepo.GetByID(context.Background(), payment.ID); err != nil {
		t.Error("expected payment to be persisted")
	}

	loan, _ := loanRepo.GetByID(context.Background(), "loan-1")
	if !loan.Outstanding.Equal(decimal.NewFromInt(7000)) {
		t.Errorf("expected stored loan outstanding 7000, got %s", loan.Outstanding)
	}
	if loan.Ledger.Len() != 1 {
		t.Errorf("expected one ledger entry, got %d", loan.Ledger.Len())
	}

	if txManager.lastTx == nil || !txManager.lastTx.committed {
		t.Error("expected transaction to be committed")
	}

	logs, _ := auditRepo.GetByResourceID(context.Background(), "payment", payment.ID)
	if len(logs) != 1 {
		t.Errorf("expected one audit entry, got %d", len(logs))
	}
}

func TestPaymentUseCase_PostPayment_SettlesLoan(t *testing.T) {
	uc, loanRepo, _, _, _ := newPaymentFixture(t)
	loanRepo.put(testLoan(t, "loan-1"))

	_, outstanding, err := uc.PostPayment(context.Background(), usecase.PostPaymentInput{
		LoanID:      "loan-1",
		Amount:      decimal.NewFromInt(10000),
		PaymentDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !outstanding.IsZero() {
		t.Errorf("expected zero outstanding, got %s", outstanding)
	}

	loan, _ := loanRepo.GetByID(context.Background(), "loan-1")
	if loan.Status != domain.StatusPaid {
		t.Errorf("expected PAID, got %s", loan.Status)
	}
	if loan.NextPaymentDate != nil {
		t.Error("expected next payment date to be cleared")
	}
}

func TestPaymentUseCase_PostPayment_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, loanRepo *fakeLoanRepo)
		input   usecase.PostPaymentInput
		wantErr error
	}{
		{
			name:    "unknown loan",
			prepare: func(*testing.T, *fakeLoanRepo) {},
			input: usecase.PostPaymentInput{
				LoanID:      "missing",
				Amount:      decimal.NewFromInt(100),
				PaymentDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: domain.ErrLoanNotFound,
		},
		{
			name: "non-positive amount",
			prepare: func(t *testing.T, loanRepo *fakeLoanRepo) {
				loanRepo.put(testLoan(t, "loan-1"))
			},
			input: usecase.PostPaymentInput{
				LoanID:      "loan-1",
				Amount:      decimal.Zero,
				PaymentDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: domain.ErrNonPositivePayment,
		},
		{
			name: "future payment date",
			prepare: func(t *testing.T, loanRepo *fakeLoanRepo) {
				loanRepo.put(testLoan(t, "loan-1"))
			},
			input: usecase.PostPaymentInput{
				LoanID:      "loan-1",
				Amount:      decimal.NewFromInt(100),
				PaymentDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: domain.ErrFuturePaymentDate,
		},
		{
			name: "settled loan",
			prepare: func(t *testing.T, loanRepo *fakeLoanRepo) {
				loan := testLoan(t, "loan-1")
				loan.Status = domain.StatusPaid
				loanRepo.put(loan)
			},
			input: usecase.PostPaymentInput{
				LoanID:      "loan-1",
				Amount:      decimal.NewFromInt(100),
				PaymentDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: domain.ErrLoanAlreadyPaid,
		},
		{
			name: "defaulted loan",
			prepare: func(t *testing.T, loanRepo *fakeLoanRepo) {
				loan := testLoan(t, "loan-1")
				loan.Status = domain.StatusDefaulted
				loanRepo.put(loan)
			},
			input: usecase.PostPaymentInput{
				LoanID:      "loan-1",
				Amount:      decimal.NewFromInt(100),
				PaymentDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: domain.ErrLoanDefaulted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, loanRepo, paymentRepo, txManager, _ := newPaymentFixture(t)
			tt.prepare(t, loanRepo)

			_, _, err := uc.PostPayment(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			if len(paymentRepo.payments) != 0 {
				t.Error("expected no payment to be persisted")
			}

			if txManager.lastTx != nil && txManager.lastTx.committed {
				t.Error("expected transaction to be rolled back")
			}
		})
	}
}

func TestPaymentUseCase_PostPayment_PersistFailureRollsBack(t *testing.T) {
	uc, loanRepo, paymentRepo, txManager, _ := newPaymentFixture(t)
	loanRepo.put(testLoan(t, "loan-1"))

	persistErr := errors.New("insert failed")
	paymentRepo.createFn = func(context.Context, usecase.Transaction, *domain.Payment) error {
		return persistErr
	}

	_, _, err := uc.PostPayment(context.Background(), usecase.PostPaymentInput{
		LoanID:      "loan-1",
		Amount:      decimal.NewFromInt(100),
		PaymentDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, persistErr) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	if txManager.lastTx.committed {
		t.Error("expected transaction not to be committed")
	}
	if !txManager.lastTx.rolledBack {
		t.Error("expected transaction to be rolled back")
	}
}

func TestPaymentUseCase_ListPaymentsByLoan_UnknownLoan(t *testing.T) {
	uc, _, _, _, _ := newPaymentFixture(t)

	_, err := uc.ListPaymentsByLoan(context.Background(), "missing")
	if !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("expected ErrLoanNotFound, got %v", err)
	}
}
