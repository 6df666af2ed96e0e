package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/usecase"
)

const loanColumns = `id, client_id, principal, interest_rate, outstanding, status,
	start_date, end_date, next_payment_date, created_at, updated_at`

// LoanRepository implements usecase.LoanRepository. Loans returned by the
// Get and List methods carry their full payment ledger.
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

// Create inserts a new loan.
func (r *LoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		loan.ID,
		loan.ClientID,
		decimalToNumeric(loan.Principal),
		decimalToNumeric(loan.InterestRate),
		decimalToNumeric(loan.Outstanding),
		loan.Status,
		loan.StartDate,
		loan.EndDate,
		loan.NextPaymentDate,
		timeToPgTimestamptz(loan.CreatedAt),
		timeToPgTimestamptz(loan.UpdatedAt),
	)

	return err
}

// GetByID retrieves a loan and its payment ledger.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	loan, err := r.scanLoan(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadLedger(ctx, r.pool, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// GetByIDForUpdate retrieves a loan with a FOR UPDATE row lock. Payments
// are read inside the same transaction, so the ledger snapshot is
// consistent with the lock.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	loan, err := r.scanLoan(pgxTx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadLedger(ctx, pgxTx, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// UpdateState persists a loan's mutable state inside a transaction.
func (r *LoanRepository) UpdateState(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE loans
		SET outstanding = $2, status = $3, next_payment_date = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query,
		loan.ID,
		decimalToNumeric(loan.Outstanding),
		loan.Status,
		loan.NextPaymentDate,
		timeToPgTimestamptz(loan.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

// UpdateStatus updates only a loan's status.
func (r *LoanRepository) UpdateStatus(ctx context.Context, id string, status domain.LoanStatus, updatedAt time.Time) error {
	query := `UPDATE loans SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

// Delete removes a loan. Payments go with it via ON DELETE CASCADE.
func (r *LoanRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

// List lists loans with pagination.
func (r *LoanRepository) List(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	return r.queryLoans(ctx, query, limit, offset)
}

// ListByClient lists a client's loans with pagination.
func (r *LoanRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryLoans(ctx, query, clientID, limit, offset)
}

// ListByStatus lists loans in any of the given statuses.
func (r *LoanRepository) ListByStatus(ctx context.Context, statuses []domain.LoanStatus, limit, offset int) ([]*domain.Loan, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryLoans(ctx, query, values, limit, offset)
}

type rowScanner interface {
	Scan(dest ...any) error
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *LoanRepository) scanLoan(row rowScanner) (*domain.Loan, error) {
	var (
		loan         domain.Loan
		principal    pgtype.Numeric
		interestRate pgtype.Numeric
		outstanding  pgtype.Numeric
	)

	err := row.Scan(
		&loan.ID,
		&loan.ClientID,
		&principal,
		&interestRate,
		&outstanding,
		&loan.Status,
		&loan.StartDate,
		&loan.EndDate,
		&loan.NextPaymentDate,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	loan.Principal = numericToDecimal(principal)
	loan.InterestRate = numericToDecimal(interestRate)
	loan.Outstanding = numericToDecimal(outstanding)

	return &loan, nil
}

func (r *LoanRepository) queryLoans(ctx context.Context, query string, args ...any) ([]*domain.Loan, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*domain.Loan
	for rows.Next() {
		loan, err := r.scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return loans, r.loadLedgers(ctx, loans)
}

// loadLedger rehydrates a single loan's payment ledger in posting order.
func (r *LoanRepository) loadLedger(ctx context.Context, q querier, loan *domain.Loan) error {
	query := `
		SELECT id, loan_id, amount, payment_date, created_at
		FROM payments
		WHERE loan_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, loan.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	payments, err := scanPayments(rows)
	if err != nil {
		return err
	}

	loan.Ledger = domain.NewPaymentLedger(payments)
	return nil
}

// loadLedgers batch-loads payment ledgers for a page of loans.
func (r *LoanRepository) loadLedgers(ctx context.Context, loans []*domain.Loan) error {
	if len(loans) == 0 {
		return nil
	}

	ids := make([]string, len(loans))
	byID := make(map[string]*domain.Loan, len(loans))
	for i, loan := range loans {
		ids[i] = loan.ID
		byID[loan.ID] = loan
	}

	query := `
		SELECT id, loan_id, amount, payment_date, created_at
		FROM payments
		WHERE loan_id = ANY($1)
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	payments, err := scanPayments(rows)
	if err != nil {
		return err
	}

	grouped := make(map[string][]domain.Payment)
	for _, p := range payments {
		grouped[p.LoanID] = append(grouped[p.LoanID], p)
	}

	for id, loan := range byID {
		loan.Ledger = domain.NewPaymentLedger(grouped[id])
	}

	return nil
}

func scanPayments(rows pgx.Rows) ([]domain.Payment, error) {
	var payments []domain.Payment
	for rows.Next() {
		var (
			p      domain.Payment
			amount pgtype.Numeric
		)
		if err := rows.Scan(&p.ID, &p.LoanID, &amount, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Amount = numericToDecimal(amount)
		payments = append(payments, p)
	}

	return payments, rows.Err()
}
