package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fabriq/internal/core/id"
	"fabriq/internal/domain"
	"fabriq/internal/domain/documents/quote"
	"fabriq/internal/infrastructure/storage/postgres"
)

const (
	quotesTable     = "doc_quotes"
	quoteLinesTable = "doc_quote_lines"
)

// Compile-time check that QuoteRepo implements quote.Repository.
var _ quote.Repository = (*QuoteRepo)(nil)

// QuoteRepo implements quote.Repository.
type QuoteRepo struct {
	*BaseDocumentRepo[*quote.Quote]
}

// NewQuoteRepo creates a new quote repository.
func NewQuoteRepo(txManager *postgres.TxManager) *QuoteRepo {
	return &QuoteRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			quotesTable,
			postgres.ExtractDBColumns[quote.Quote](),
			func() *quote.Quote { return &quote.Quote{} },
		),
	}
}

// GetLines retrieves lines for a quote.
func (r *QuoteRepo) GetLines(ctx context.Context, docID id.ID) ([]quote.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "part_id", "description",
			"quantity", "unit_price", "lead_time_days", "amount",
		).
		From(quoteLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []quote.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a quote (delete existing + insert new).
func (r *QuoteRepo) SaveLines(ctx context.Context, docID id.ID, lines []quote.Line) error {
	querier := r.querier(ctx)

	// Delete existing lines
	deleteSQL := "DELETE FROM " + quoteLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	// Insert new lines
	q := r.Builder().
		Insert(quoteLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "part_id", "description",
			"quantity", "unit_price", "lead_time_days", "amount",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.PartID, line.Description,
			line.Quantity, line.UnitPrice, line.LeadTimeDays, line.Amount,
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

// List retrieves quotes with filtering.
func (r *QuoteRepo) List(ctx context.Context, filter quote.ListFilter) (domain.ListResult[*quote.Quote], error) {
	q := r.applyListFilter(r.baseSelect(), filter.ListFilter)

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
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
