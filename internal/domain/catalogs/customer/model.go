// Package customer provides the Customer catalog.
// Customers are the manufacturing shop's clients: the companies that
// request quotes and place orders.
package customer

import (
	"context"
	"regexp"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/entity"
)

// Pre-compiled regex patterns for validation
var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Customer represents a client company.
type Customer struct {
	entity.Catalog

	// ContactName is the primary contact person
	ContactName *string `db:"contact_name" json:"contactName,omitempty"`

	// Email is the primary contact email (quotes and order
	// confirmations are sent here)
	Email *string `db:"email" json:"email,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// BillingAddress is where invoices go
	BillingAddress *string `db:"billing_address" json:"billingAddress,omitempty"`

	// ShippingAddress is where finished parts ship
	ShippingAddress *string `db:"shipping_address" json:"shippingAddress,omitempty"`

	// PaymentTermsDays is the agreed net payment term (0 = prepaid)
	PaymentTermsDays int `db:"payment_terms_days" json:"paymentTermsDays"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewCustomer creates a new Customer with required fields.
func NewCustomer(code, name string) *Customer {
	return &Customer{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email").
			WithDetail("value", *c.Email)
	}

	if c.PaymentTermsDays < 0 {
		return apperror.NewValidation("payment terms cannot be negative").
			WithDetail("field", "paymentTermsDays")
	}

	return nil
}
