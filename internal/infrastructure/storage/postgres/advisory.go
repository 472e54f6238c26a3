package postgres

import (
	"context"
	"fmt"

	"fabriq/internal/core/lock"
)

// Compile-time check that AdvisoryLocker implements lock.Locker.
var _ lock.Locker = (*AdvisoryLocker)(nil)

// AdvisoryLocker serializes critical sections with PostgreSQL
// transaction-scoped advisory locks (pg_advisory_xact_lock).
//
// The lock is keyed by the text key's hash and held until the enclosing
// transaction commits or rolls back, so WithLock must be called inside
// a managed transaction. Document number issuance uses it keyed by
// series and year to make read-compute-insert atomic across writers.
type AdvisoryLocker struct {
	txManager *TxManager
}

// NewAdvisoryLocker creates an advisory locker bound to a transaction manager.
func NewAdvisoryLocker(txManager *TxManager) *AdvisoryLocker {
	return &AdvisoryLocker{txManager: txManager}
}

// WithLock acquires the advisory lock for key and runs fn while holding it.
// Blocks until the lock is granted or ctx is done.
func (l *AdvisoryLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if l.txManager.GetTx(ctx) == nil {
		return fmt.Errorf("advisory lock %q requires an active transaction", key)
	}

	q := l.txManager.GetQuerier(ctx)
	if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return fmt.Errorf("acquire advisory lock %q: %w", key, err)
	}

	return fn(ctx)
}
