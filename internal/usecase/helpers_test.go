package usecase_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/microloan/internal/domain"
	"github.com/iho/microloan/internal/usecase"
)

// fixedClock returns a constant time so date validation is deterministic.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

// seqIDGen issues id-1, id-2, ... in call order.
type seqIDGen struct {
	mu      sync.Mutex
	counter int
}

func (g *seqIDGen) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("id-%d", g.counter)
}

// passthroughRetrier runs the operation exactly once.
type passthroughRetrier struct{}

func (passthroughRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeTxManager struct {
	lastTx   *fakeTx
	beginErr error
}

func (m *fakeTxManager) Begin(context.Context) (usecase.Transaction, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	m.lastTx = &fakeTx{}
	return m.lastTx, nil
}

// memCache is an in-memory Cache that ignores TTLs.
type memCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// fakeLoanRepo stores loans in memory; individual methods can be overridden.
type fakeLoanRepo struct {
	mu    sync.RWMutex
	loans map[string]*domain.Loan

	getByIDForUpdateFn func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error)
	updateStateFn      func(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error
	updateStatusFn     func(ctx context.Context, id string, status domain.LoanStatus, updatedAt time.Time) error
	listByStatusFn     func(ctx context.Context, statuses []domain.LoanStatus, limit, offset int) ([]*domain.Loan, error)
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[string]*domain.Loan)}
}

func (r *fakeLoanRepo) put(loan *domain.Loan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans[loan.ID] = loan
}

func (r *fakeLoanRepo) Create(_ context.Context, loan *domain.Loan) error {
	r.put(loan)
	return nil
}

func (r *fakeLoanRepo) GetByID(_ context.Context, id string) (*domain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if loan, ok := r.loans[id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

func (r *fakeLoanRepo) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	if r.getByIDForUpdateFn != nil {
		return r.getByIDForUpdateFn(ctx, tx, id)
	}
	return r.GetByID(ctx, id)
}

func (r *fakeLoanRepo) UpdateState(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if r.updateStateFn != nil {
		return r.updateStateFn(ctx, tx, loan)
	}
	r.put(loan)
	return nil
}

func (r *fakeLoanRepo) UpdateStatus(ctx context.Context, id string, status domain.LoanStatus, updatedAt time.Time) error {
	if r.updateStatusFn != nil {
		return r.updateStatusFn(ctx, id, status, updatedAt)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if loan, ok := r.loans[id]; ok {
		loan.Status = status
		loan.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrLoanNotFound
}

func (r *fakeLoanRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[id]; !ok {
		return domain.ErrLoanNotFound
	}
	delete(r.loans, id)
	return nil
}

// sorted returns every stored loan ordered by ID so paging is
// deterministic. Callers must hold the lock.
func (r *fakeLoanRepo) sorted() []*domain.Loan {
	loans := make([]*domain.Loan, 0, len(r.loans))
	for _, loan := range r.loans {
		loans = append(loans, loan)
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans
}

func pageLoans(loans []*domain.Loan, limit, offset int) []*domain.Loan {
	if offset >= len(loans) {
		return nil
	}
	loans = loans[offset:]
	if limit > 0 && limit < len(loans) {
		loans = loans[:limit]
	}
	return loans
}

func (r *fakeLoanRepo) List(_ context.Context, limit, offset int) ([]*domain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pageLoans(r.sorted(), limit, offset), nil
}

func (r *fakeLoanRepo) ListByClient(_ context.Context, clientID string, limit, offset int) ([]*domain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var loans []*domain.Loan
	for _, loan := range r.sorted() {
		if loan.ClientID == clientID {
			loans = append(loans, loan)
		}
	}
	return pageLoans(loans, limit, offset), nil
}

func (r *fakeLoanRepo) ListByStatus(ctx context.Context, statuses []domain.LoanStatus, limit, offset int) ([]*domain.Loan, error) {
	if r.listByStatusFn != nil {
		return r.listByStatusFn(ctx, statuses, limit, offset)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var loans []*domain.Loan
	for _, loan := range r.sorted() {
		for _, status := range statuses {
			if loan.Status == status {
				loans = append(loans, loan)
				break
			}
		}
	}
	return pageLoans(loans, limit, offset), nil
}

// fakePaymentRepo records created payments.
type fakePaymentRepo struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	createFn func(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*domain.Payment)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	if r.createFn != nil {
		return r.createFn(ctx, tx, payment)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = payment
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.payments[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPaymentNotFound
}

func (r *fakePaymentRepo) ListByLoan(_ context.Context, loanID string) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var payments []domain.Payment
	for _, p := range r.payments {
		if p.LoanID == loanID {
			payments = append(payments, *p)
		}
	}
	return payments, nil
}

func (r *fakePaymentRepo) SumByLoan(_ context.Context, _ usecase.Transaction, loanID string) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := decimal.Zero
	for _, p := range r.payments {
		if p.LoanID == loanID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

// fakeAuditRepo collects audit entries.
type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeAuditRepo) CreateTx(_ context.Context, _ usecase.Transaction, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeAuditRepo) List(context.Context, domain.AuditFilter) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.AuditLog(nil), r.logs...), nil
}

func (r *fakeAuditRepo) GetByResourceID(_ context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditLog
	for _, l := range r.logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			out = append(out, l)
		}
	}
	return out, nil
}
