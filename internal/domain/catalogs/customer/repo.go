package customer

import (
	"context"

	"fabriq/internal/core/id"
	"fabriq/internal/domain"
)

// Repository defines the interface for Customer persistence.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// FindByEmail retrieves customer by primary contact email.
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// GetForUpdate retrieves customer with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Customer, error)
}
