package part

import (
	"context"
	"fmt"
	"io"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/id"
	"fabriq/internal/core/objectstore"
	"fabriq/internal/core/tx"
	"fabriq/internal/domain"
	"fabriq/pkg/logger"
)

// Service provides business logic for the Part catalog, including
// drawing/model attachments in object storage.
type Service struct {
	*domain.CatalogService[*Part]
	repo  Repository
	files objectstore.Store // optional; attachments disabled when nil
}

// NewService creates a new Part service.
func NewService(repo Repository, txManager tx.Manager, files objectstore.Store) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Part]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "part",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
		files:          files,
	}
}

// ListByCustomer retrieves all parts owned by the customer.
func (s *Service) ListByCustomer(ctx context.Context, customerID id.ID) ([]*Part, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// AttachDrawing uploads a 2D drawing and links it to the part.
func (s *Service) AttachDrawing(ctx context.Context, partID id.ID, filename, contentType string, body io.Reader) error {
	return s.attach(ctx, partID, "drawing", filename, contentType, body, func(p *Part, key string) {
		p.DrawingKey = &key
	})
}

// AttachModel uploads a 3D model and links it to the part.
func (s *Service) AttachModel(ctx context.Context, partID id.ID, filename, contentType string, body io.Reader) error {
	return s.attach(ctx, partID, "model", filename, contentType, body, func(p *Part, key string) {
		p.ModelKey = &key
	})
}

func (s *Service) attach(ctx context.Context, partID id.ID, kind, filename, contentType string, body io.Reader, set func(*Part, string)) error {
	if s.files == nil {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "attachment storage is not configured")
	}

	p, err := s.repo.GetByID(ctx, partID)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("parts/%s/%s/%s", partID, kind, filename)
	if err := s.files.Put(ctx, key, contentType, body); err != nil {
		return fmt.Errorf("upload %s: %w", kind, err)
	}

	set(p, key)
	if err := s.Update(ctx, p); err != nil {
		// The object is already stored; the orphan is harmless and will be
		// overwritten on retry with the same filename.
		return err
	}

	logger.Info(ctx, "part attachment stored",
		"part_id", partID,
		"kind", kind,
		"key", key)

	return nil
}

// DrawingURL returns a time-limited download URL for the part's drawing.
func (s *Service) DrawingURL(ctx context.Context, partID id.ID) (string, error) {
	if s.files == nil {
		return "", apperror.NewBusinessRule(apperror.CodeBusinessRule, "attachment storage is not configured")
	}

	p, err := s.repo.GetByID(ctx, partID)
	if err != nil {
		return "", err
	}
	if !p.HasDrawing() {
		return "", apperror.NewNotFound("part drawing", partID.String())
	}

	return s.files.PresignedURL(ctx, *p.DrawingKey, 0) // 0 = implementation default expiry
}
