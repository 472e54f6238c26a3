package part

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/id"
	"fabriq/internal/core/types"
	"fabriq/internal/domain"
)

// mockRepo is a test double for Repository.
type mockRepo struct {
	byID map[id.ID]*Part

	updated *Part
}

func newMockRepo(parts ...*Part) *mockRepo {
	m := &mockRepo{byID: make(map[id.ID]*Part)}
	for _, p := range parts {
		m.byID[p.ID] = p
	}
	return m
}

func (m *mockRepo) Create(ctx context.Context, p *Part) error {
	m.byID[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, partID id.ID) (*Part, error) {
	if p, ok := m.byID[partID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("part", partID)
}

func (m *mockRepo) GetByCode(ctx context.Context, code string) (*Part, error) {
	return nil, apperror.NewNotFound("part", code)
}

func (m *mockRepo) Update(ctx context.Context, p *Part) error {
	m.updated = p
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, partID id.ID) error { return nil }

func (m *mockRepo) SetDeletionMark(ctx context.Context, partID id.ID, marked bool) error { return nil }

func (m *mockRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Part], error) {
	return domain.ListResult[*Part]{}, nil
}

func (m *mockRepo) Exists(ctx context.Context, partID id.ID) (bool, error) { return false, nil }

func (m *mockRepo) ExistsByCode(ctx context.Context, code string) (bool, error) { return false, nil }

func (m *mockRepo) ListByCustomer(ctx context.Context, customerID id.ID) ([]*Part, error) {
	var parts []*Part
	for _, p := range m.byID {
		if p.CustomerID == customerID {
			parts = append(parts, p)
		}
	}
	return parts, nil
}

func (m *mockRepo) GetForUpdate(ctx context.Context, partID id.ID) (*Part, error) {
	return m.GetByID(ctx, partID)
}

// mockTxManager runs the callback without a real transaction.
type mockTxManager struct{}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// mockStore records uploaded objects in memory.
type mockStore struct {
	objects map[string][]byte
}

func newMockStore() *mockStore {
	return &mockStore{objects: make(map[string][]byte)}
}

func (m *mockStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := m.objects[key]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("no object at %s", key)
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *mockStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("no object at %s", key)
	}
	return "https://files.example/" + key, nil
}

func testPart() *Part {
	p := NewPart("ACM-1001", "Mounting bracket", id.New())
	p.Revision = "B"
	p.UnitPrice = types.MustMoney("12.50")
	return p
}

func TestServiceAttachDrawing(t *testing.T) {
	p := testPart()
	repo := newMockRepo(p)
	store := newMockStore()
	svc := NewService(repo, &mockTxManager{}, store)

	err := svc.AttachDrawing(context.Background(), p.ID, "bracket-revB.pdf", "application/pdf", bytes.NewReader([]byte("%PDF-")))
	if err != nil {
		t.Fatalf("AttachDrawing() error = %v", err)
	}

	wantKey := fmt.Sprintf("parts/%s/drawing/bracket-revB.pdf", p.ID)
	if _, ok := store.objects[wantKey]; !ok {
		t.Errorf("object not stored at %s", wantKey)
	}
	if p.DrawingKey == nil || *p.DrawingKey != wantKey {
		t.Errorf("DrawingKey = %v, want %s", p.DrawingKey, wantKey)
	}
	if repo.updated == nil {
		t.Error("part was not persisted after attachment")
	}
}

func TestServiceAttachWithoutStore(t *testing.T) {
	p := testPart()
	svc := NewService(newMockRepo(p), &mockTxManager{}, nil)

	err := svc.AttachDrawing(context.Background(), p.ID, "bracket.pdf", "application/pdf", bytes.NewReader(nil))
	if err == nil {
		t.Fatal("AttachDrawing() expected error without configured storage")
	}
}

func TestServiceDrawingURL(t *testing.T) {
	p := testPart()
	repo := newMockRepo(p)
	store := newMockStore()
	svc := NewService(repo, &mockTxManager{}, store)

	// No drawing yet
	if _, err := svc.DrawingURL(context.Background(), p.ID); !apperror.IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}

	if err := svc.AttachDrawing(context.Background(), p.ID, "bracket.pdf", "application/pdf", bytes.NewReader([]byte("%PDF-"))); err != nil {
		t.Fatalf("AttachDrawing() error = %v", err)
	}

	url, err := svc.DrawingURL(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("DrawingURL() error = %v", err)
	}
	if url == "" {
		t.Error("empty presigned URL")
	}
}
