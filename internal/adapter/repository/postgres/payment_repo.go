package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository. Payment rows are
// append-only; there is no update or delete path.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create inserts a payment inside the posting transaction.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO payments (id, loan_id, amount, payment_date, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := pgxTx.Exec(ctx, query,
		payment.ID,
		payment.LoanID,
		decimalToNumeric(payment.Amount),
		payment.PaymentDate,
		timeToPgTimestamptz(payment.CreatedAt),
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `
		SELECT id, loan_id, amount, payment_date, created_at
		FROM payments
		WHERE id = $1
	`

	var (
		payment domain.Payment
		amount  pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&payment.ID,
		&payment.LoanID,
		&amount,
		&payment.PaymentDate,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}

	payment.Amount = numericToDecimal(amount)

	return &payment, nil
}

// ListByLoan lists a loan's payments in posting order.
func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]domain.Payment, error) {
	query := `
		SELECT id, loan_id, amount, payment_date, created_at
		FROM payments
		WHERE loan_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPayments(rows)
}

// SumByLoan totals a loan's payments inside a transaction.
func (r *PaymentRepository) SumByLoan(ctx context.Context, tx usecase.Transaction, loanID string) (decimal.Decimal, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE loan_id = $1`

	var sum pgtype.Numeric
	if err := pgxTx.QueryRow(ctx, query, loanID).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}
