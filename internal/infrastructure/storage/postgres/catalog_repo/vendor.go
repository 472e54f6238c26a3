package catalog_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"fabriq/internal/domain/catalogs/vendor"
	"fabriq/internal/infrastructure/storage/postgres"
)

const vendorsTable = "cat_vendors"

// Compile-time check that VendorRepo implements vendor.Repository.
var _ vendor.Repository = (*VendorRepo)(nil)

// VendorRepo implements vendor.Repository.
// The processes column is a text[] of outside processes the vendor offers.
type VendorRepo struct {
	*BaseCatalogRepo[*vendor.Vendor]
}

// NewVendorRepo creates a new vendor repository.
func NewVendorRepo(txManager *postgres.TxManager) *VendorRepo {
	return &VendorRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			vendorsTable,
			postgres.ExtractDBColumns[vendor.Vendor](),
			func() *vendor.Vendor { return &vendor.Vendor{} },
		),
	}
}

// ListByProcess retrieves vendors offering the given outside process.
func (r *VendorRepo) ListByProcess(ctx context.Context, process string) ([]*vendor.Vendor, error) {
	q := r.baseSelect().
		Where("? = ANY(processes)", process).
		Where("deletion_mark = false").
		OrderBy("lead_time_days", "name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var vendors []*vendor.Vendor
	if err := pgxscan.Select(ctx, r.querier(ctx), &vendors, sql, args...); err != nil {
		return nil, fmt.Errorf("list by process: %w", err)
	}

	return vendors, nil
}
