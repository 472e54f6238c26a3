// Package order provides the Order document repository.
package order

import (
	"context"
	"time"

	"fabriq/internal/core/id"
	"fabriq/internal/domain"
)

// Repository defines operations for order documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Order) error
	GetByID(ctx context.Context, docID id.ID) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	Update(ctx context.Context, doc *Order) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Order, error)
}

// ListFilter for filtering orders.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	CustomerID *id.ID
	VendorID   *id.ID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
}
