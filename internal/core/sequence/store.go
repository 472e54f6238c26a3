package sequence

import (
	"context"
	"errors"
)

// ErrNoNumber is returned by a Store when no number has been issued yet for
// the requested series and year.
var ErrNoNumber = errors.New("sequence: no number issued")

// NumberSource issues the next number of a series for the current year.
// Document services depend on this interface; Generator is the production
// implementation.
type NumberSource interface {
	Next(ctx context.Context, kind Kind) (string, error)
}

// Store answers what number was issued last for a series.
// The PostgreSQL implementation lives in infrastructure/storage/postgres.
type Store interface {
	// LatestNumber returns the number of the single most recently created
	// (not numerically largest) document of the given kind whose number
	// starts with yearPrefix. Returns ErrNoNumber when the series has no
	// documents for that year.
	//
	// Creation time is the tie-break the store must honor: if numbers were
	// ever issued out of strict numeric order, the sequence continues from
	// the newest record, not the highest value.
	LatestNumber(ctx context.Context, kind Kind, yearPrefix string) (string, error)
}
