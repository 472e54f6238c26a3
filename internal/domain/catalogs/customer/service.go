package customer

import (
	"context"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/id"
	"fabriq/internal/core/tx"
	"fabriq/internal/domain"
)

// Service provides business logic for the Customer catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Customer] // Embedded for delegation
	repo                              Repository
}

// NewService creates a new Customer service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "customer",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkUnique)
	base.Hooks().OnBeforeUpdate(svc.checkUnique)

	return svc
}

// checkUnique rejects a second customer with the same contact email.
func (s *Service) checkUnique(ctx context.Context, c *Customer) error {
	if c.Email == nil || *c.Email == "" {
		return nil
	}

	existing, err := s.repo.FindByEmail(ctx, *c.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID {
		return apperror.NewDuplicate("customer", "email", *c.Email)
	}
	return nil
}

// FindByEmail retrieves customer by primary contact email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Customer, error) {
	return s.repo.FindByEmail(ctx, email)
}

// GetForUpdate retrieves customer with row lock.
func (s *Service) GetForUpdate(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetForUpdate(ctx, customerID)
}
