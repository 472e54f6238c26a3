package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"fabriq/internal/core/sequence"
)

// Compile-time check that SequenceStore implements sequence.Store.
var _ sequence.Store = (*SequenceStore)(nil)

// kindTables maps a number series to the document table that owns it.
// Each table carries a UNIQUE index on the number column.
var kindTables = map[sequence.Kind]string{
	sequence.KindQuote: "doc_quotes",
	sequence.KindOrder: "doc_orders",
}

// SequenceStore reads the latest issued document number per series.
//
// "Latest" is by creation time, not numeric order: after a fallback reset
// the most recently created row is the one the generator must continue
// from. Number DESC is the deterministic tie-break for rows created in
// the same instant. Soft-deleted documents still hold their numbers, so
// deletion_mark is ignored here on purpose.
type SequenceStore struct {
	txManager *TxManager
}

// NewSequenceStore creates a sequence store over the transaction manager.
func NewSequenceStore(txManager *TxManager) *SequenceStore {
	return &SequenceStore{txManager: txManager}
}

// LatestNumber returns the newest number of the series starting with
// yearPrefix, or sequence.ErrNoNumber when the series has none.
func (s *SequenceStore) LatestNumber(ctx context.Context, kind sequence.Kind, yearPrefix string) (string, error) {
	table, ok := kindTables[kind]
	if !ok {
		return "", fmt.Errorf("no table for series %q", kind)
	}

	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("number").
		From(table).
		Where(squirrel.Like{"number": yearPrefix + "%"}).
		OrderBy("created_at DESC", "number DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var number string
	row := s.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&number); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", sequence.ErrNoNumber
		}
		return "", fmt.Errorf("latest %s number: %w", kind, err)
	}

	return number, nil
}
