package usecase

import (
	"context"
	"errors"

	"github.com/iho/microloan/internal/domain"
)

// ClientUseCase handles borrower management.
type ClientUseCase struct {
	clientRepo ClientRepository
	loanRepo   LoanRepository
	idGen      IDGenerator
	clock      Clock
}

// NewClientUseCase creates a new ClientUseCase.
func NewClientUseCase(clientRepo ClientRepository, loanRepo LoanRepository, idGen IDGenerator, clock Clock) *ClientUseCase {
	return &ClientUseCase{
		clientRepo: clientRepo,
		loanRepo:   loanRepo,
		idGen:      idGen,
		clock:      clock,
	}
}

// CreateClientInput represents input for registering a client.
type CreateClientInput struct {
	Name  string
	Email string
	Phone string
}

// CreateClient registers a new borrower.
func (uc *ClientUseCase) CreateClient(ctx context.Context, input CreateClientInput) (*domain.Client, error) {
	now := uc.clock.Now().UTC()

	client := &domain.Client{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := client.Validate(); err != nil {
		return nil, err
	}

	if existing, err := uc.clientRepo.GetByEmail(ctx, client.Email); err == nil && existing != nil {
		return nil, errors.New("client with this email already exists")
	}

	if err := uc.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// GetClient retrieves a client by ID.
func (uc *ClientUseCase) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return uc.clientRepo.GetByID(ctx, id)
}

// UpdateClientInput represents input for updating a client's contact
// details.
type UpdateClientInput struct {
	ID    string
	Name  *string
	Email *string
	Phone *string
}

// UpdateClient updates a client's contact details.
func (uc *ClientUseCase) UpdateClient(ctx context.Context, input UpdateClientInput) (*domain.Client, error) {
	client, err := uc.clientRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.Email != nil {
		client.Email = *input.Email
	}
	if input.Phone != nil {
		client.Phone = *input.Phone
	}

	if err := client.Validate(); err != nil {
		return nil, err
	}

	client.UpdatedAt = uc.clock.Now().UTC()

	if err := uc.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient removes a client. Clients with outstanding loans cannot be
// removed.
func (uc *ClientUseCase) DeleteClient(ctx context.Context, id string) error {
	if _, err := uc.clientRepo.GetByID(ctx, id); err != nil {
		return err
	}

	loans, err := uc.loanRepo.ListByClient(ctx, id, 1, 0)
	if err != nil {
		return err
	}
	if len(loans) > 0 {
		return errors.New("client has loans and cannot be deleted")
	}

	return uc.clientRepo.Delete(ctx, id)
}

// ListClientsInput represents input for listing clients.
type ListClientsInput struct {
	Limit  int
	Offset int
}

// ListClients lists clients with pagination.
func (uc *ClientUseCase) ListClients(ctx context.Context, input ListClientsInput) ([]*domain.Client, error) {
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.clientRepo.List(ctx, limit, offset)
}
