package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fabriq/internal/core/apperror"
	"fabriq/pkg/logger"
)

// Generator computes the next document number for a series.
//
// Each call is a pure function of store state: it reads the latest issued
// number and derives the successor without writing anything. Calling it twice
// without persisting in between yields the same result.
type Generator struct {
	store Store
	cycle *Cycle
	now   func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithCycle overrides the default Z-to-A letter cycle.
func WithCycle(c *Cycle) Option {
	return func(g *Generator) { g.cycle = c }
}

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// Ensure compile-time interface compliance.
var _ NumberSource = (*Generator)(nil)

// New creates a Generator reading from store.
func New(store Store, opts ...Option) *Generator {
	g := &Generator{
		store: store,
		cycle: DefaultCycle(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NextOrderNumber returns the next number in the order series for the
// current year.
func (g *Generator) NextOrderNumber(ctx context.Context) (string, error) {
	return g.Next(ctx, KindOrder)
}

// NextQuoteNumber returns the next number in the quote series for the
// current year.
func (g *Generator) NextQuoteNumber(ctx context.Context) (string, error) {
	return g.Next(ctx, KindQuote)
}

// Next returns the next number for kind in the current year.
func (g *Generator) Next(ctx context.Context, kind Kind) (string, error) {
	return g.NextForYear(ctx, kind, g.now().Year())
}

// NextForYear returns the next number for kind in the given calendar year.
//
// A failed or empty store read restarts the sequence at the first letter.
// Swallowing read errors trades strict continuity for availability of number
// issuance; the duplicate risk this opens is caught by the unique index on
// the number column at insert time. Exhaustion of the full letter cycle is
// the one hard failure: it surfaces as CodeSequenceExhausted and never wraps
// around to previously issued values.
func (g *Generator) NextForYear(ctx context.Context, kind Kind, year int) (string, error) {
	if !kind.Valid() {
		return "", apperror.NewValidation(fmt.Sprintf("unknown number series %q", kind))
	}

	yy := YearSuffix(year)

	latest, err := g.store.LatestNumber(ctx, kind, yy)
	if err != nil {
		if !errors.Is(err, ErrNoNumber) {
			logger.Warn(ctx, "latest number lookup failed, restarting sequence",
				"kind", kind,
				"year", yy,
				"error", err)
		}
		return Format(yy, g.cycle.First(), 1), nil
	}

	last, perr := Parse(latest)
	if perr != nil {
		logger.Warn(ctx, "stored number is malformed, restarting sequence",
			"kind", kind,
			"year", yy,
			"number", latest)
		return Format(yy, g.cycle.First(), 1), nil
	}

	// The store already filters by year prefix; a mismatch means the filter
	// and the parse disagree, so treat it as no usable prior record.
	if last.YearSuffix != yy || !g.cycle.Contains(last.Letter) {
		return Format(yy, g.cycle.First(), 1), nil
	}

	if last.Counter >= MaxCounter {
		next, ok := g.cycle.Next(last.Letter)
		if !ok {
			return "", apperror.NewSequenceExhausted(kind.String(), year)
		}
		return Format(yy, next, 1), nil
	}

	return Format(yy, last.Letter, last.Counter+1), nil
}

// LockKey returns the lock.Locker key that serializes number issuance for
// one series and year.
func LockKey(kind Kind, year int) string {
	return fmt.Sprintf("seq:%s:%s", kind, YearSuffix(year))
}
