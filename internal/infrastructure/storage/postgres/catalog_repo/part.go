package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fabriq/internal/core/id"
	"fabriq/internal/domain/catalogs/part"
	"fabriq/internal/infrastructure/storage/postgres"
)

const partsTable = "cat_parts"

// Compile-time check that PartRepo implements part.Repository.
var _ part.Repository = (*PartRepo)(nil)

// PartRepo implements part.Repository.
type PartRepo struct {
	*BaseCatalogRepo[*part.Part]
}

// NewPartRepo creates a new part repository.
func NewPartRepo(txManager *postgres.TxManager) *PartRepo {
	return &PartRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			partsTable,
			postgres.ExtractDBColumns[part.Part](),
			func() *part.Part { return &part.Part{} },
		),
	}
}

// ListByCustomer retrieves all parts owned by the customer.
func (r *PartRepo) ListByCustomer(ctx context.Context, customerID id.ID) ([]*part.Part, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"customer_id": customerID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var parts []*part.Part
	if err := pgxscan.Select(ctx, r.querier(ctx), &parts, sql, args...); err != nil {
		return nil, fmt.Errorf("list by customer: %w", err)
	}

	return parts, nil
}
