package order

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/id"
	"fabriq/internal/core/sequence"
	"fabriq/internal/core/types"
	"fabriq/internal/domain"
	"fabriq/internal/domain/documents/quote"
)

// mockRepo is a test double for Repository.
type mockRepo struct {
	createFunc       func(ctx context.Context, doc *Order) error
	getForUpdateFunc func(ctx context.Context, docID id.ID) (*Order, error)

	createCalls int
	created     *Order
	updated     *Order
}

func (m *mockRepo) Create(ctx context.Context, doc *Order) error {
	m.createCalls++
	m.created = doc
	if m.createFunc != nil {
		return m.createFunc(ctx, doc)
	}
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, docID id.ID) (*Order, error) {
	return m.GetForUpdate(ctx, docID)
}

func (m *mockRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return nil, apperror.NewNotFound("Order", number)
}

func (m *mockRepo) Update(ctx context.Context, doc *Order) error {
	m.updated = doc
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, docID id.ID) error { return nil }

func (m *mockRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) { return nil, nil }

func (m *mockRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error { return nil }

func (m *mockRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	return domain.ListResult[*Order]{}, nil
}

func (m *mockRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Order, error) {
	if m.getForUpdateFunc != nil {
		return m.getForUpdateFunc(ctx, docID)
	}
	return nil, apperror.NewNotFound("Order", docID)
}

// mockTxManager runs the callback without a real transaction.
type mockTxManager struct{}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func validOrder() *Order {
	o := NewOrder(id.New())
	o.AddLine(id.New(), "shaft, 303 stainless", types.MustQuantity("25"), types.MustMoney("8.00"))
	return o
}

func TestServiceCreateAssignsNumber(t *testing.T) {
	repo := &mockRepo{}
	numbers := &sequence.MockNumberSource{
		NextFunc: func(ctx context.Context, kind sequence.Kind) (string, error) {
			if kind != sequence.KindOrder {
				t.Fatalf("unexpected kind %q", kind)
			}
			return "26Z00105", nil
		},
	}

	svc := NewService(repo, numbers, &mockTxManager{})

	doc := validOrder()
	if err := svc.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if doc.Number != "26Z00105" {
		t.Errorf("Number = %q, want %q", doc.Number, "26Z00105")
	}
}

func TestServiceCreateRetriesOnDuplicateNumber(t *testing.T) {
	issued := 0
	numbers := &sequence.MockNumberSource{
		NextFunc: func(ctx context.Context, kind sequence.Kind) (string, error) {
			issued++
			return fmt.Sprintf("26Z%05d", issued), nil
		},
	}

	repo := &mockRepo{}
	repo.createFunc = func(ctx context.Context, doc *Order) error {
		if doc.Number == "26Z00001" {
			return apperror.NewDuplicate("Order", "number", doc.Number)
		}
		return nil
	}

	svc := NewService(repo, numbers, &mockTxManager{})

	doc := validOrder()
	if err := svc.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if doc.Number != "26Z00002" {
		t.Errorf("Number = %q, want regenerated %q", doc.Number, "26Z00002")
	}
	if repo.createCalls != 2 {
		t.Errorf("Create called %d times, want 2", repo.createCalls)
	}
}

func TestServiceCreateFromQuote(t *testing.T) {
	q := quote.NewQuote(id.New())
	q.Number = "26Z00009"
	q.Currency = "EUR"
	q.AddLine(id.New(), "bracket", types.MustQuantity("10"), types.MustMoney("12.50"), 14)
	q.AddLine(id.New(), "housing", types.MustQuantity("2"), types.MustMoney("210.00"), 21)
	q.Status = quote.StatusAccepted

	repo := &mockRepo{}
	numbers := &sequence.MockNumberSource{
		NextFunc: func(ctx context.Context, kind sequence.Kind) (string, error) {
			return "26Z00110", nil
		},
	}

	svc := NewService(repo, numbers, &mockTxManager{})

	doc, err := svc.CreateFromQuote(context.Background(), q)
	if err != nil {
		t.Fatalf("CreateFromQuote() error = %v", err)
	}

	if doc.Number != "26Z00110" {
		t.Errorf("Number = %q", doc.Number)
	}
	if doc.QuoteID == nil || *doc.QuoteID != q.ID {
		t.Error("QuoteID does not reference the source quote")
	}
	if doc.CustomerID != q.CustomerID {
		t.Error("CustomerID does not match the quote")
	}
	if doc.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", doc.Currency)
	}
	if len(doc.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(doc.Lines))
	}
	if !doc.TotalAmount.Equal(types.MustMoney("545.00")) {
		t.Errorf("TotalAmount = %s, want 545.00", doc.TotalAmount)
	}
	if doc.DueDate == nil {
		t.Error("DueDate not derived from line lead times")
	}
}

func TestServiceCreateFromQuoteRequiresAccepted(t *testing.T) {
	q := quote.NewQuote(id.New())
	q.AddLine(id.New(), "bracket", types.MustQuantity("10"), types.MustMoney("12.50"), 14)

	svc := NewService(&mockRepo{}, &sequence.MockNumberSource{}, &mockTxManager{})

	if _, err := svc.CreateFromQuote(context.Background(), q); err == nil {
		t.Fatal("CreateFromQuote() expected error for draft quote")
	}
}

func TestServiceTransitions(t *testing.T) {
	doc := validOrder()
	repo := &mockRepo{
		getForUpdateFunc: func(ctx context.Context, docID id.ID) (*Order, error) {
			return doc, nil
		},
	}

	svc := NewService(repo, &sequence.MockNumberSource{}, &mockTxManager{})
	ctx := context.Background()

	if _, err := svc.Start(ctx, doc.ID); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if doc.Status != StatusInProduction {
		t.Fatalf("Status = %q after Start", doc.Status)
	}

	if _, err := svc.Ship(ctx, doc.ID); err != nil {
		t.Fatalf("Ship() error = %v", err)
	}
	if doc.Status != StatusShipped {
		t.Fatalf("Status = %q after Ship", doc.Status)
	}

	if _, err := svc.Complete(ctx, doc.ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if doc.Status != StatusCompleted {
		t.Fatalf("Status = %q after Complete", doc.Status)
	}
	if repo.updated == nil {
		t.Error("status changes were not persisted")
	}
}

func TestServiceCancelShippedOrder(t *testing.T) {
	doc := validOrder()
	doc.Status = StatusShipped
	repo := &mockRepo{
		getForUpdateFunc: func(ctx context.Context, docID id.ID) (*Order, error) {
			return doc, nil
		},
	}

	svc := NewService(repo, &sequence.MockNumberSource{}, &mockTxManager{})

	if _, err := svc.Cancel(context.Background(), doc.ID); err == nil {
		t.Fatal("Cancel() expected error for shipped order")
	}
}

func TestServiceUpdateFrozenAfterStart(t *testing.T) {
	svc := NewService(&mockRepo{}, &sequence.MockNumberSource{}, &mockTxManager{})

	doc := validOrder()
	doc.Status = StatusInProduction
	err := svc.Update(context.Background(), doc)

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperror.CodeDocumentFinalized {
		t.Errorf("error = %v, want DOCUMENT_FINALIZED", err)
	}
}

func TestOrderValidateOutsideProcessNeedsVendor(t *testing.T) {
	doc := validOrder()
	doc.Lines[0].OutsideProcess = "anodize"
	doc.Lines[0].VendorID = nil

	err := doc.Validate(context.Background())
	if err == nil {
		t.Fatal("Validate() expected error for outside process without vendor")
	}

	vendorID := id.New()
	doc.Lines[0].VendorID = &vendorID
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
