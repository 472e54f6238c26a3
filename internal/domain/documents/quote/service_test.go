package quote

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/id"
	"fabriq/internal/core/mail"
	"fabriq/internal/core/sequence"
	"fabriq/internal/core/types"
	"fabriq/internal/domain"
)

// mockRepo is a test double for Repository.
type mockRepo struct {
	createFunc    func(ctx context.Context, doc *Quote) error
	getByIDFunc   func(ctx context.Context, docID id.ID) (*Quote, error)
	updateFunc    func(ctx context.Context, doc *Quote) error
	getLinesFunc  func(ctx context.Context, docID id.ID) ([]Line, error)
	saveLinesFunc func(ctx context.Context, docID id.ID, lines []Line) error

	createCalls int
	updated     *Quote
}

func (m *mockRepo) Create(ctx context.Context, doc *Quote) error {
	m.createCalls++
	if m.createFunc != nil {
		return m.createFunc(ctx, doc)
	}
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, docID id.ID) (*Quote, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, docID)
	}
	return nil, apperror.NewNotFound("Quote", docID)
}

func (m *mockRepo) GetByNumber(ctx context.Context, number string) (*Quote, error) {
	return nil, apperror.NewNotFound("Quote", number)
}

func (m *mockRepo) Update(ctx context.Context, doc *Quote) error {
	m.updated = doc
	if m.updateFunc != nil {
		return m.updateFunc(ctx, doc)
	}
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, docID id.ID) error { return nil }

func (m *mockRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	if m.getLinesFunc != nil {
		return m.getLinesFunc(ctx, docID)
	}
	return nil, nil
}

func (m *mockRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	if m.saveLinesFunc != nil {
		return m.saveLinesFunc(ctx, docID, lines)
	}
	return nil
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quote], error) {
	return domain.ListResult[*Quote]{}, nil
}

func (m *mockRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Quote, error) {
	return m.GetByID(ctx, docID)
}

// mockTxManager runs the callback without a real transaction.
type mockTxManager struct {
	calls int
}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// mockLocker records lock keys and runs the callback inline.
type mockLocker struct {
	keys []string
}

func (m *mockLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	m.keys = append(m.keys, key)
	return fn(ctx)
}

// mockMailer records outbound messages.
type mockMailer struct {
	enabled bool
	sent    []mail.Message
	sendErr error
}

func (m *mockMailer) Send(ctx context.Context, msg mail.Message) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sent = append(m.sent, msg)
	return "msg-1", nil
}

func (m *mockMailer) Enabled() bool { return m.enabled }

func validQuote() *Quote {
	q := NewQuote(id.New())
	q.AddLine(id.New(), "bracket, 6061-T6", types.MustQuantity("10"), types.MustMoney("12.50"), 14)
	return q
}

func TestServiceCreateAssignsNumber(t *testing.T) {
	repo := &mockRepo{}
	numbers := &sequence.MockNumberSource{
		NextFunc: func(ctx context.Context, kind sequence.Kind) (string, error) {
			if kind != sequence.KindQuote {
				t.Fatalf("unexpected kind %q", kind)
			}
			return "26Z00042", nil
		},
	}

	svc := NewService(repo, numbers, &mockTxManager{})

	doc := validQuote()
	if err := svc.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if doc.Number != "26Z00042" {
		t.Errorf("Number = %q, want %q", doc.Number, "26Z00042")
	}
	if repo.createCalls != 1 {
		t.Errorf("Create called %d times, want 1", repo.createCalls)
	}
}

func TestServiceCreateKeepsPresetNumber(t *testing.T) {
	repo := &mockRepo{}
	numbers := &sequence.MockNumberSource{
		NextFunc: func(ctx context.Context, kind sequence.Kind) (string, error) {
			t.Fatal("number source must not be called for a preset number")
			return "", nil
		},
	}

	svc := NewService(repo, numbers, &mockTxManager{})

	doc := validQuote()
	doc.Number = "26Z00001"
	if err := svc.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if doc.Number != "26Z00001" {
		t.Errorf("Number = %q, want preset value kept", doc.Number)
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
	repo.createFunc = func(ctx context.Context, doc *Quote) error {
		// First writer claimed 26Z00001 between our read and insert.
		if doc.Number == "26Z00001" {
			return apperror.NewDuplicate("Quote", "number", doc.Number)
		}
		return nil
	}

	svc := NewService(repo, numbers, &mockTxManager{})

	doc := validQuote()
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

func TestServiceCreateGivesUpAfterRetries(t *testing.T) {
	repo := &mockRepo{}
	repo.createFunc = func(ctx context.Context, doc *Quote) error {
		return apperror.NewDuplicate("Quote", "number", doc.Number)
	}

	svc := NewService(repo, &sequence.MockNumberSource{}, &mockTxManager{})

	err := svc.Create(context.Background(), validQuote())
	if err == nil {
		t.Fatal("Create() expected error after exhausting retries")
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperror.CodeConflict {
		t.Errorf("error = %v, want CONFLICT", err)
	}
	if repo.createCalls != maxNumberAttempts {
		t.Errorf("Create called %d times, want %d", repo.createCalls, maxNumberAttempts)
	}
}

func TestServiceCreatePresetNumberDuplicateFailsFast(t *testing.T) {
	repo := &mockRepo{}
	repo.createFunc = func(ctx context.Context, doc *Quote) error {
		return apperror.NewDuplicate("Quote", "number", doc.Number)
	}

	svc := NewService(repo, &sequence.MockNumberSource{}, &mockTxManager{})

	doc := validQuote()
	doc.Number = "26Z00007"
	err := svc.Create(context.Background(), doc)
	if !apperror.IsDuplicate(err) {
		t.Fatalf("error = %v, want duplicate", err)
	}
	if repo.createCalls != 1 {
		t.Errorf("Create called %d times, want 1 (no retry for explicit numbers)", repo.createCalls)
	}
}

func TestServiceCreateSerializesUnderLock(t *testing.T) {
	locker := &mockLocker{}
	svc := NewService(&mockRepo{}, &sequence.MockNumberSource{}, &mockTxManager{}, WithLocker(locker))

	if err := svc.Create(context.Background(), validQuote()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	want := sequence.LockKey(sequence.KindQuote, time.Now().Year())
	if len(locker.keys) != 1 || locker.keys[0] != want {
		t.Errorf("lock keys = %v, want [%s]", locker.keys, want)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(&mockRepo{}, &sequence.MockNumberSource{}, &mockTxManager{})

	doc := NewQuote(id.Nil()) // missing customer
	err := svc.Create(context.Background(), doc)
	if err == nil {
		t.Fatal("Create() expected validation error")
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperror.CodeValidation {
		t.Errorf("error = %v, want VALIDATION_ERROR", err)
	}
}

func TestServiceSend(t *testing.T) {
	doc := validQuote()
	repo := &mockRepo{
		getByIDFunc: func(ctx context.Context, docID id.ID) (*Quote, error) {
			return doc, nil
		},
	}
	mailer := &mockMailer{enabled: true}

	svc := NewService(repo, &sequence.MockNumberSource{}, &mockTxManager{}, WithMailer(mailer))

	doc.Number = "26Z00010"
	if err := svc.Send(context.Background(), doc.ID, "buyer@example.com"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if doc.Status != StatusSent {
		t.Errorf("Status = %q, want %q", doc.Status, StatusSent)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(mailer.sent))
	}
	if mailer.sent[0].To != "buyer@example.com" {
		t.Errorf("To = %q", mailer.sent[0].To)
	}
	if mailer.sent[0].Subject != "Quote 26Z00010" {
		t.Errorf("Subject = %q", mailer.sent[0].Subject)
	}
	if repo.updated == nil {
		t.Error("status change was not persisted")
	}
}

func TestServiceSendWithoutMailer(t *testing.T) {
	doc := validQuote()
	repo := &mockRepo{
		getByIDFunc: func(ctx context.Context, docID id.ID) (*Quote, error) {
			return doc, nil
		},
	}

	svc := NewService(repo, &sequence.MockNumberSource{}, &mockTxManager{})

	if err := svc.Send(context.Background(), doc.ID, "buyer@example.com"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if doc.Status != StatusSent {
		t.Errorf("Status = %q, want %q", doc.Status, StatusSent)
	}
}

func TestServiceAccept(t *testing.T) {
	doc := validQuote()
	doc.Status = StatusSent
	repo := &mockRepo{
		getByIDFunc: func(ctx context.Context, docID id.ID) (*Quote, error) {
			return doc, nil
		},
	}

	svc := NewService(repo, &sequence.MockNumberSource{}, &mockTxManager{})

	got, err := svc.Accept(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if got.Status != StatusAccepted {
		t.Errorf("Status = %q, want %q", got.Status, StatusAccepted)
	}
}

func TestServiceAcceptExpired(t *testing.T) {
	doc := validQuote()
	doc.Status = StatusSent
	past := time.Now().Add(-24 * time.Hour)
	doc.ValidUntil = &past

	repo := &mockRepo{
		getByIDFunc: func(ctx context.Context, docID id.ID) (*Quote, error) {
			return doc, nil
		},
	}

	svc := NewService(repo, &sequence.MockNumberSource{}, &mockTxManager{})

	if _, err := svc.Accept(context.Background(), doc.ID); err == nil {
		t.Fatal("Accept() expected error for expired quote")
	}
	if doc.Status != StatusSent {
		t.Errorf("Status = %q, expired quote must not transition", doc.Status)
	}
}

func TestServiceDecline(t *testing.T) {
	doc := validQuote()
	doc.Status = StatusSent
	repo := &mockRepo{
		getByIDFunc: func(ctx context.Context, docID id.ID) (*Quote, error) {
			return doc, nil
		},
	}

	svc := NewService(repo, &sequence.MockNumberSource{}, &mockTxManager{})

	if err := svc.Decline(context.Background(), doc.ID); err != nil {
		t.Fatalf("Decline() error = %v", err)
	}
	if doc.Status != StatusDeclined {
		t.Errorf("Status = %q, want %q", doc.Status, StatusDeclined)
	}
}

func TestServiceUpdateFinalized(t *testing.T) {
	svc := NewService(&mockRepo{}, &sequence.MockNumberSource{}, &mockTxManager{})

	doc := validQuote()
	doc.Status = StatusAccepted
	err := svc.Update(context.Background(), doc)
	if err == nil {
		t.Fatal("Update() expected error for finalized quote")
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperror.CodeDocumentFinalized {
		t.Errorf("error = %v, want DOCUMENT_FINALIZED", err)
	}
}

func TestServiceGetByIDLoadsLines(t *testing.T) {
	doc := validQuote()
	lines := doc.Lines
	repo := &mockRepo{
		getByIDFunc: func(ctx context.Context, docID id.ID) (*Quote, error) {
			stored := *doc
			stored.Lines = nil
			return &stored, nil
		},
		getLinesFunc: func(ctx context.Context, docID id.ID) ([]Line, error) {
			return lines, nil
		},
	}

	svc := NewService(repo, &sequence.MockNumberSource{}, &mockTxManager{})

	got, err := svc.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(got.Lines))
	}
	if !got.Lines[0].Amount.Equal(types.MustMoney("125.00")) {
		t.Errorf("Amount = %s, want 125.00", got.Lines[0].Amount)
	}
}
