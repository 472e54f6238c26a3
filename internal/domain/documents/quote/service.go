// Package quote provides the Quote document service.
package quote

import (
	"context"
	"fmt"
	"time"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/id"
	"fabriq/internal/core/lock"
	"fabriq/internal/core/mail"
	"fabriq/internal/core/sequence"
	"fabriq/internal/core/tx"
	"fabriq/internal/domain"
	"fabriq/pkg/logger"
)

// maxNumberAttempts bounds the generate-and-insert retry loop.
// A duplicate on insert means another writer issued the same number
// concurrently; re-reading the latest number resolves it.
const maxNumberAttempts = 3

// Service provides business operations for quote documents.
type Service struct {
	repo      Repository
	numbers   sequence.NumberSource
	txManager tx.Manager
	locks     lock.Locker // optional; serializes number issuance when set
	mailer    mail.Mailer // optional; Send is a no-op mark when disabled
	hooks     *domain.HookRegistry[*Quote]
}

// Option configures a Service.
type Option func(*Service)

// WithLocker makes Create serialize number issuance per series and year.
func WithLocker(l lock.Locker) Option {
	return func(s *Service) { s.locks = l }
}

// WithMailer enables sending quotes by email.
func WithMailer(m mail.Mailer) Option {
	return func(s *Service) { s.mailer = m }
}

// NewService creates a new quote service.
func NewService(repo Repository, numbers sequence.NumberSource, txManager tx.Manager, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		numbers:   numbers,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Quote](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Quote] {
	return s.hooks
}

// Create creates a new quote document.
//
// When the document has no number, one is taken from the quote series for
// the current year. Generation reads the latest issued number and the insert
// that follows is what actually claims it, so two concurrent creates can
// compute the same number; the unique index on the number column rejects the
// loser and the loop below re-generates. With a Locker configured the
// read-compute-insert sequence is serialized per series and year instead,
// and the unique index remains as a backstop.
func (s *Service) Create(ctx context.Context, doc *Quote) error {
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
					number, err := s.numbers.Next(ctx, sequence.KindQuote)
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
				return s.locks.WithLock(ctx, sequence.LockKey(sequence.KindQuote, year), insert)
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

		logger.Warn(ctx, "quote number collision, regenerating",
			"number", doc.Number,
			"attempt", attempt)
	}
	if lastErr != nil {
		return apperror.NewConflict("unable to allocate quote number, try again").
			WithCause(lastErr)
	}

	// Run after-create hooks
	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "quote created",
		"id", doc.ID,
		"number", doc.Number)

	return nil
}

// GetByID retrieves a quote with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Quote, error) {
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

// GetByNumber retrieves a quote by its document number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Quote, error) {
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

// Update updates a quote document.
func (s *Service) Update(ctx context.Context, doc *Quote) error {
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

// Delete soft-deletes a quote. Only drafts can be deleted.
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

// Send emails the quote to the customer contact and marks it sent.
func (s *Service) Send(ctx context.Context, docID id.ID, toEmail string) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if err := doc.MarkSent(); err != nil {
		return err
	}

	if s.mailer != nil && s.mailer.Enabled() {
		msgID, err := s.mailer.Send(ctx, mail.Message{
			To:      toEmail,
			Subject: fmt.Sprintf("Quote %s", doc.Number),
			Text:    renderQuoteText(doc),
			HTML:    renderQuoteHTML(doc),
		})
		if err != nil {
			return fmt.Errorf("send quote %s: %w", doc.Number, err)
		}
		logger.Info(ctx, "quote emailed",
			"number", doc.Number,
			"to", toEmail,
			"message_id", msgID)
	} else {
		logger.Warn(ctx, "mailer not configured, marking quote sent without email",
			"number", doc.Number)
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// Accept marks a sent quote as accepted by the customer.
func (s *Service) Accept(ctx context.Context, docID id.ID) (*Quote, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if doc.IsExpired(time.Now().UTC()) {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "quote validity has expired").
			WithDetail("number", doc.Number)
	}

	if err := doc.MarkAccepted(); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Decline marks a sent quote as declined by the customer.
func (s *Service) Decline(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if err := doc.MarkDeclined(); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// List retrieves quotes with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quote], error) {
	return s.repo.List(ctx, filter)
}
