package part

import (
	"context"

	"fabriq/internal/core/id"
	"fabriq/internal/domain"
)

// Repository defines the interface for Part persistence.
type Repository interface {
	domain.CatalogRepository[*Part]

	// ListByCustomer retrieves all parts owned by the customer.
	ListByCustomer(ctx context.Context, customerID id.ID) ([]*Part, error)

	// GetForUpdate retrieves part with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Part, error)
}
