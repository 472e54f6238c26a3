// Package quote provides the Quote document.
// A quote prices a set of parts for a customer; accepted quotes become
// production orders.
package quote

import (
	"context"
	"time"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/entity"
	"fabriq/internal/core/id"
	"fabriq/internal/core/types"
)

// Status is the quote lifecycle state.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusExpired  Status = "expired"
)

func isValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusDeclined, StatusExpired:
		return true
	}
	return false
}

// Quote represents a priced offer to a customer.
type Quote struct {
	entity.Document

	// CustomerID references the customer the quote is addressed to
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Status is the lifecycle state
	Status Status `db:"status" json:"status"`

	// Currency is the ISO 4217 currency of all amounts
	Currency string `db:"currency" json:"currency"`

	// ValidUntil is the expiry of the offer (nullable)
	ValidUntil *time.Time `db:"valid_until" json:"validUntil,omitempty"`

	// TotalAmount is calculated from lines
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Table part: quoted line items
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a single quoted part.
type Line struct {
	// Line identification
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// Part reference
	PartID id.ID `db:"part_id" json:"partId"`

	// Description shown on the printed quote
	Description string `db:"description" json:"description"`

	// Quantity and pricing
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`

	// LeadTimeDays is the promised production time for this line
	LeadTimeDays int `db:"lead_time_days" json:"leadTimeDays"`

	// Amount is Quantity * UnitPrice
	Amount types.Money `db:"amount" json:"amount"`
}

// NewQuote creates a new draft quote for a customer.
func NewQuote(customerID id.ID) *Quote {
	return &Quote{
		Document:    entity.NewDocument(),
		CustomerID:  customerID,
		Status:      StatusDraft,
		Currency:    "USD",
		TotalAmount: types.ZeroMoney(),
		Lines:       make([]Line, 0),
	}
}

// AddLine adds a quoted part and recalculates totals.
func (q *Quote) AddLine(partID id.ID, description string, quantity types.Quantity, unitPrice types.Money, leadTimeDays int) {
	line := Line{
		LineID:       id.New(),
		LineNo:       len(q.Lines) + 1,
		PartID:       partID,
		Description:  description,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		LeadTimeDays: leadTimeDays,
		Amount:       unitPrice.Mul(quantity),
	}

	q.Lines = append(q.Lines, line)
	q.recalculateTotals()
}

// recalculateTotals updates document totals from lines.
func (q *Quote) recalculateTotals() {
	total := types.ZeroMoney()
	for _, line := range q.Lines {
		total = total.Add(line.Amount)
	}
	q.TotalAmount = total
}

// Validate implements entity.Validatable.
func (q *Quote) Validate(ctx context.Context) error {
	if err := q.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(q.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if !isValidStatus(q.Status) {
		return apperror.NewValidation("invalid quote status").
			WithDetail("field", "status").
			WithDetail("value", string(q.Status))
	}

	if q.Currency == "" {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currency")
	}

	for _, line := range q.Lines {
		if id.IsNil(line.PartID) {
			return apperror.NewValidation("line part is required").
				WithDetail("lineNo", line.LineNo)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("lineNo", line.LineNo)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("line price cannot be negative").
				WithDetail("lineNo", line.LineNo)
		}
	}

	return nil
}

// CanModify checks if quote can be modified.
// Only draft quotes are editable; everything later is a customer-visible
// commitment.
func (q *Quote) CanModify() error {
	if q.Status != StatusDraft {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentFinalized,
			"Cannot modify a quote after it was sent.",
		).WithDetail("quote_id", q.ID.String()).WithDetail("status", string(q.Status))
	}
	return nil
}

// MarkSent transitions draft -> sent.
func (q *Quote) MarkSent() error {
	if q.Status != StatusDraft {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "only draft quotes can be sent").
			WithDetail("status", string(q.Status))
	}
	q.Status = StatusSent
	q.Touch()
	return nil
}

// MarkAccepted transitions sent -> accepted.
func (q *Quote) MarkAccepted() error {
	if q.Status != StatusSent {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "only sent quotes can be accepted").
			WithDetail("status", string(q.Status))
	}
	q.Status = StatusAccepted
	q.Touch()
	return nil
}

// MarkDeclined transitions sent -> declined.
func (q *Quote) MarkDeclined() error {
	if q.Status != StatusSent {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "only sent quotes can be declined").
			WithDetail("status", string(q.Status))
	}
	q.Status = StatusDeclined
	q.Touch()
	return nil
}

// IsExpired reports whether the offer validity has lapsed.
func (q *Quote) IsExpired(now time.Time) bool {
	return q.ValidUntil != nil && now.After(*q.ValidUntil)
}
