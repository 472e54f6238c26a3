// Package order provides the Order document service.
package order

import (
	"context"
	"fmt"
	"time"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/id"
	"fabriq/internal/core/lock"
	"fabriq/internal/core/sequence"
	"fabriq/internal/core/tx"
	"fabriq/internal/domain"
	"fabriq/internal/domain/documents/quote"
	"fabriq/pkg/logger"
)

// maxNumberAttempts bounds the generate-and-insert retry loop.
const maxNumberAttempts = 3

// Service provides business operations for order documents.
type Service struct {
	repo      Repository
	numbers   sequence.NumberSource
	txManager tx.Manager
	locks     lock.Locker // optional; serializes number issuance when set
	hooks     *domain.HookRegistry[*Order]
}

// Option configures a Service.
type Option func(*Service)

// WithLocker makes Create serialize number issuance per series and year.
func WithLocker(l lock.Locker) Option {
	return func(s *Service) { s.locks = l }
}

// NewService creates a new order service.
func NewService(repo Repository, numbers sequence.NumberSource, txManager tx.Manager, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		numbers:   numbers,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Order](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Order] {
	return s.hooks
}

// Create creates a new order document.
//
// Number allocation works the same way as for quotes: documents without a
// number get the next one in the order series for the current year, the
// unique index on the number column catches concurrent writers computing the
// same value, and a bounded retry re-generates after a collision.
func (s *Service) Create(ctx context.Context, doc *Order) error {
	// Run before-create hooks (for enrichment, validation, etc.)
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	// Validate
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	assign := doc.Number == ""
	year := time.Now().Year()

	var lastErr error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			insert := func(ctx context.Context) error {
				if assign {
					number, err := s.numbers.Next(ctx, sequence.KindOrder)
					if err != nil {
						return fmt.Errorf("generate number: %w", err)
					}
					doc.Number = number
				}

				if err := s.repo.Create(ctx, doc); err != nil {
					return fmt.Errorf("create document: %w", err)
				}

				return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
			}

			if s.locks != nil {
				return s.locks.WithLock(ctx, sequence.LockKey(sequence.KindOrder, year), insert)
			}
			return insert(ctx)
		})
		if err == nil {
			lastErr = nil
			break
		}

		lastErr = err
		if !assign || !apperror.IsDuplicate(err) {
			return err
		}

		logger.Warn(ctx, "order number collision, regenerating",
			"number", doc.Number,
			"attempt", attempt)
	}
	if lastErr != nil {
		return apperror.NewConflict("unable to allocate order number, try again").
			WithCause(lastErr)
	}

	// Run after-create hooks
	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "order created",
		"id", doc.ID,
		"number", doc.Number)

	return nil
}

// CreateFromQuote builds an order from an accepted quote and creates it.
// The order carries the quote's customer, currency and lines; the promised
// ship date comes from the longest line lead time.
func (s *Service) CreateFromQuote(ctx context.Context, q *quote.Quote) (*Order, error) {
	if q.Status != quote.StatusAccepted {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "only accepted quotes can become orders").
			WithDetail("quote_number", q.Number).
			WithDetail("status", string(q.Status))
	}

	doc := NewOrder(q.CustomerID)
	quoteID := q.ID
	doc.QuoteID = &quoteID
	doc.Currency = q.Currency

	maxLead := 0
	for _, line := range q.Lines {
		doc.AddLine(line.PartID, line.Description, line.Quantity, line.UnitPrice)
		if line.LeadTimeDays > maxLead {
			maxLead = line.LeadTimeDays
		}
	}
	if maxLead > 0 {
		due := time.Now().UTC().AddDate(0, 0, maxLead)
		doc.DueDate = &due
	}

	if err := s.Create(ctx, doc); err != nil {
		return nil, err
	}

	logger.Info(ctx, "order created from quote",
		"order_number", doc.Number,
		"quote_number", q.Number)

	return doc, nil
}

// GetByID retrieves an order with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Order, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// GetByNumber retrieves an order by its document number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	doc, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update updates an order document.
func (s *Service) Update(ctx context.Context, doc *Order) error {
	// Run before-update hooks
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	// Check if can modify
	if err := doc.CanModify(); err != nil {
		return err
	}

	// Validate
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	// Update in transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterUpdate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}

	return nil
}

// Delete soft-deletes an order. Only new orders can be deleted.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if err := doc.CanModify(); err != nil {
		return err
	}

	return s.repo.Delete(ctx, docID)
}

// Start moves an order into production.
func (s *Service) Start(ctx context.Context, docID id.ID) (*Order, error) {
	return s.transition(ctx, docID, (*Order).Start)
}

// Ship marks an order as shipped.
func (s *Service) Ship(ctx context.Context, docID id.ID) (*Order, error) {
	return s.transition(ctx, docID, (*Order).Ship)
}

// Complete closes a shipped order.
func (s *Service) Complete(ctx context.Context, docID id.ID) (*Order, error) {
	return s.transition(ctx, docID, (*Order).Complete)
}

// Cancel cancels an order that has not shipped yet.
func (s *Service) Cancel(ctx context.Context, docID id.ID) (*Order, error) {
	return s.transition(ctx, docID, (*Order).Cancel)
}

// transition loads the order under a row lock, applies the state change and
// persists it in one transaction.
func (s *Service) transition(ctx context.Context, docID id.ID, change func(*Order) error) (*Order, error) {
	var doc *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		if err := change(doc); err != nil {
			return err
		}

		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order status changed",
		"number", doc.Number,
		"status", doc.Status)

	return doc, nil
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	return s.repo.List(ctx, filter)
}
