package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fabriq/internal/core/id"
	"fabriq/internal/domain"
	"fabriq/internal/domain/documents/order"
	"fabriq/internal/infrastructure/storage/postgres"
)

const (
	ordersTable     = "doc_orders"
	orderLinesTable = "doc_order_lines"
)

// Compile-time check that OrderRepo implements order.Repository.
var _ order.Repository = (*OrderRepo)(nil)

// OrderRepo implements order.Repository.
type OrderRepo struct {
	*BaseDocumentRepo[*order.Order]
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			ordersTable,
			postgres.ExtractDBColumns[order.Order](),
			func() *order.Order { return &order.Order{} },
		),
	}
}

// GetLines retrieves lines for an order.
func (r *OrderRepo) GetLines(ctx context.Context, docID id.ID) ([]order.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "part_id", "description",
			"quantity", "unit_price", "vendor_id", "outside_process", "amount",
		).
		From(orderLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []order.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for an order (delete existing + insert new).
func (r *OrderRepo) SaveLines(ctx context.Context, docID id.ID, lines []order.Line) error {
	querier := r.querier(ctx)

	// Delete existing lines
	deleteSQL := "DELETE FROM " + orderLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	// Insert new lines
	q := r.Builder().
		Insert(orderLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "part_id", "description",
			"quantity", "unit_price", "vendor_id", "outside_process", "amount",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.PartID, line.Description,
			line.Quantity, line.UnitPrice, line.VendorID, line.OutsideProcess, line.Amount,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// List retrieves orders with filtering.
func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) (domain.ListResult[*order.Order], error) {
	q := r.applyListFilter(r.baseSelect(), filter.ListFilter)

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	if filter.VendorID != nil {
		// Orders with at least one line outsourced to the vendor
		q = q.Where(squirrel.Expr(
			"id IN (SELECT document_id FROM "+orderLinesTable+" WHERE vendor_id = ?)",
			*filter.VendorID,
		))
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	return r.finishList(ctx, q, filter.ListFilter)
}
