// Package order provides the production Order document.
// Orders are usually created from accepted quotes and track a job through
// production, shipping and completion.
package order

import (
	"context"
	"time"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/entity"
	"fabriq/internal/core/id"
	"fabriq/internal/core/types"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusNew          Status = "new"
	StatusInProduction Status = "in_production"
	StatusShipped      Status = "shipped"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

func isValidStatus(s Status) bool {
	switch s {
	case StatusNew, StatusInProduction, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order represents a confirmed production job for a customer.
type Order struct {
	entity.Document

	// CustomerID references the ordering customer
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// QuoteID references the accepted quote this order came from (nullable)
	QuoteID *id.ID `db:"quote_id" json:"quoteId,omitempty"`

	// Status is the lifecycle state
	Status Status `db:"status" json:"status"`

	// Currency is the ISO 4217 currency of all amounts
	Currency string `db:"currency" json:"currency"`

	// DueDate is the promised ship date (nullable)
	DueDate *time.Time `db:"due_date" json:"dueDate,omitempty"`

	// TotalAmount is calculated from lines
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Table part: ordered line items
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a single ordered part.
type Line struct {
	// Line identification
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// Part reference
	PartID id.ID `db:"part_id" json:"partId"`

	// Description shown on travelers and packing slips
	Description string `db:"description" json:"description"`

	// Quantity and pricing
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`

	// Outside processing: which vendor runs the named process, if any
	VendorID       *id.ID `db:"vendor_id" json:"vendorId,omitempty"`
	OutsideProcess string `db:"outside_process" json:"outsideProcess,omitempty"`

	// Amount is Quantity * UnitPrice
	Amount types.Money `db:"amount" json:"amount"`
}

// NewOrder creates a new order for a customer.
func NewOrder(customerID id.ID) *Order {
	return &Order{
		Document:    entity.NewDocument(),
		CustomerID:  customerID,
		Status:      StatusNew,
		Currency:    "USD",
		TotalAmount: types.ZeroMoney(),
		Lines:       make([]Line, 0),
	}
}

// AddLine adds an ordered part and recalculates totals.
func (o *Order) AddLine(partID id.ID, description string, quantity types.Quantity, unitPrice types.Money) {
	line := Line{
		LineID:      id.New(),
		LineNo:      len(o.Lines) + 1,
		PartID:      partID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      unitPrice.Mul(quantity),
	}

	o.Lines = append(o.Lines, line)
	o.recalculateTotals()
}

// recalculateTotals updates document totals from lines.
func (o *Order) recalculateTotals() {
	total := types.ZeroMoney()
	for _, line := range o.Lines {
		total = total.Add(line.Amount)
	}
	o.TotalAmount = total
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(o.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if !isValidStatus(o.Status) {
		return apperror.NewValidation("invalid order status").
			WithDetail("field", "status").
			WithDetail("value", string(o.Status))
	}

	if o.Currency == "" {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currency")
	}

	for _, line := range o.Lines {
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
		if line.OutsideProcess != "" && (line.VendorID == nil || id.IsNil(*line.VendorID)) {
			return apperror.NewValidation("outside process requires a vendor").
				WithDetail("lineNo", line.LineNo).
				WithDetail("process", line.OutsideProcess)
		}
	}

	return nil
}

// CanModify checks if the order can still be edited.
// Once production starts the lines are frozen.
func (o *Order) CanModify() error {
	if o.Status != StatusNew {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentFinalized,
			"Cannot modify an order after production has started.",
		).WithDetail("order_id", o.ID.String()).WithDetail("status", string(o.Status))
	}
	return nil
}

// Start transitions new -> in_production.
func (o *Order) Start() error {
	if o.Status != StatusNew {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "only new orders can start production").
			WithDetail("status", string(o.Status))
	}
	if len(o.Lines) == 0 {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "order has no lines")
	}
	o.Status = StatusInProduction
	o.Touch()
	return nil
}

// Ship transitions in_production -> shipped.
func (o *Order) Ship() error {
	if o.Status != StatusInProduction {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "only orders in production can ship").
			WithDetail("status", string(o.Status))
	}
	o.Status = StatusShipped
	o.Touch()
	return nil
}

// Complete transitions shipped -> completed.
func (o *Order) Complete() error {
	if o.Status != StatusShipped {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "only shipped orders can complete").
			WithDetail("status", string(o.Status))
	}
	o.Status = StatusCompleted
	o.Touch()
	return nil
}

// Cancel transitions new or in_production -> cancelled.
func (o *Order) Cancel() error {
	if o.Status != StatusNew && o.Status != StatusInProduction {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "order can no longer be cancelled").
			WithDetail("status", string(o.Status))
	}
	o.Status = StatusCancelled
	o.Touch()
	return nil
}
