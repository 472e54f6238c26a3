// Package part provides the Part catalog.
// Parts are the machined components the shop quotes and manufactures.
// Each part belongs to a customer and carries its drawing and 3D model
// references in object storage.
package part

import (
	"context"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/entity"
	"fabriq/internal/core/id"
	"fabriq/internal/core/types"
)

// Part represents a machined component.
type Part struct {
	entity.Catalog

	// CustomerID is the owning customer; parts are customer-specific
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Revision is the drawing revision, e.g. "A", "C2"
	Revision string `db:"revision" json:"revision"`

	// Material is the stock material, e.g. "6061-T6", "303 SS"
	Material *string `db:"material" json:"material,omitempty"`

	// Finish is the surface finish or coating, e.g. "anodize black"
	Finish *string `db:"finish" json:"finish,omitempty"`

	// UnitPrice is the last quoted price per piece
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// DrawingKey is the object storage key of the 2D drawing (nullable)
	DrawingKey *string `db:"drawing_key" json:"drawingKey,omitempty"`

	// ModelKey is the object storage key of the 3D model (nullable)
	ModelKey *string `db:"model_key" json:"modelKey,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewPart creates a new Part with required fields.
func NewPart(code, name string, customerID id.ID) *Part {
	return &Part{
		Catalog:    entity.NewCatalog(code, name),
		CustomerID: customerID,
		UnitPrice:  types.ZeroMoney(),
	}
}

// Validate implements entity.Validatable interface.
func (p *Part) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}

	return nil
}

// HasDrawing reports whether a 2D drawing is attached.
func (p *Part) HasDrawing() bool {
	return p.DrawingKey != nil && *p.DrawingKey != ""
}

// HasModel reports whether a 3D model is attached.
func (p *Part) HasModel() bool {
	return p.ModelKey != nil && *p.ModelKey != ""
}
