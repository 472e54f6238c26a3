// Package quote provides the Quote document repository.
package quote

import (
	"context"
	"time"

	"fabriq/internal/core/id"
	"fabriq/internal/domain"
)

// Repository defines operations for quote documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Quote) error
	GetByID(ctx context.Context, docID id.ID) (*Quote, error)
	GetByNumber(ctx context.Context, number string) (*Quote, error)
	Update(ctx context.Context, doc *Quote) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quote], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Quote, error)
}

// ListFilter for filtering quotes.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	CustomerID *id.ID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
}
