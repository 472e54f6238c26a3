// Package lock provides the domain contract for named mutual exclusion.
// Implementations live in infrastructure (PostgreSQL advisory locks).
package lock

import (
	"context"
)

// Locker serializes units of work that share a named resource.
//
// The lock is scoped to the unit of work: it is acquired before fn runs and
// released automatically when the enclosing scope finishes (for the advisory
// lock implementation, at transaction end). Callers that need exactly-once
// allocation of a document number wrap read-compute-insert in WithLock keyed
// by the number series and year.
type Locker interface {
	// WithLock runs fn while holding the named lock.
	// Concurrent calls with the same key execute one at a time; calls with
	// different keys do not block each other.
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
