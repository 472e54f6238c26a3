package sequence

import (
	"context"
)

// MockStore is a test implementation of Store.
// Use in unit tests to avoid database dependencies.
type MockStore struct {
	LatestNumberFunc func(ctx context.Context, kind Kind, yearPrefix string) (string, error)
}

// LatestNumber implements Store.
func (m *MockStore) LatestNumber(ctx context.Context, kind Kind, yearPrefix string) (string, error) {
	if m.LatestNumberFunc != nil {
		return m.LatestNumberFunc(ctx, kind, yearPrefix)
	}
	return "", ErrNoNumber
}

// MockNumberSource is a test implementation of NumberSource.
type MockNumberSource struct {
	NextFunc func(ctx context.Context, kind Kind) (string, error)
}

// Next implements NumberSource.
func (m *MockNumberSource) Next(ctx context.Context, kind Kind) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, kind)
	}
	return "25Z00001", nil
}

// Ensure compile-time interface compliance.
var (
	_ Store        = (*MockStore)(nil)
	_ NumberSource = (*MockNumberSource)(nil)
)
