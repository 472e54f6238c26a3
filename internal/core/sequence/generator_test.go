package sequence

import (
	"context"
	"errors"
	"testing"
	"time"

	"fabriq/internal/core/apperror"
)

// fixedStore returns the same latest number for every lookup.
func fixedStore(number string) *MockStore {
	return &MockStore{
		LatestNumberFunc: func(ctx context.Context, kind Kind, yearPrefix string) (string, error) {
			return number, nil
		},
	}
}

func TestNextForYear_FirstNumber(t *testing.T) {
	g := New(&MockStore{}) // empty store: ErrNoNumber for every lookup

	num, err := g.NextForYear(context.Background(), KindOrder, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "25Z00001" {
		t.Errorf("expected 25Z00001, got %s", num)
	}
}

func TestNextForYear_Increment(t *testing.T) {
	g := New(fixedStore("25Z01001"))

	num, err := g.NextForYear(context.Background(), KindOrder, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "25Z01002" {
		t.Errorf("expected 25Z01002, got %s", num)
	}
}

func TestNextForYear_LetterRollover(t *testing.T) {
	g := New(fixedStore("25Z99999"))

	num, err := g.NextForYear(context.Background(), KindOrder, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "25Y00001" {
		t.Errorf("expected 25Y00001, got %s", num)
	}
}

func TestNextForYear_YearRollover(t *testing.T) {
	// The store filters by year prefix, so a fresh year sees no records
	// regardless of how far the previous year's sequence advanced.
	store := &MockStore{
		LatestNumberFunc: func(ctx context.Context, kind Kind, yearPrefix string) (string, error) {
			if yearPrefix == "24" {
				return "24Z05000", nil
			}
			return "", ErrNoNumber
		},
	}
	g := New(store)

	num, err := g.NextForYear(context.Background(), KindOrder, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "25Z00001" {
		t.Errorf("expected 25Z00001, got %s", num)
	}
}

func TestNextForYear_StaleYearInStore(t *testing.T) {
	// A store that ignores the prefix filter returns last year's number.
	// The generator must not continue that sequence.
	g := New(fixedStore("24Z05000"))

	num, err := g.NextForYear(context.Background(), KindOrder, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "25Z00001" {
		t.Errorf("expected 25Z00001, got %s", num)
	}
}

func TestNextForYear_Exhausted(t *testing.T) {
	g := New(fixedStore("25A99999"))

	_, err := g.NextForYear(context.Background(), KindOrder, 2025)
	if err == nil {
		t.Fatal("expected exhaustion error, got nil")
	}
	if !apperror.IsSequenceExhausted(err) {
		t.Errorf("expected SEQUENCE_EXHAUSTED, got %v", err)
	}
}

func TestNextForYear_MalformedNumber(t *testing.T) {
	for _, bad := range []string{"abc", "25z00001", "25Z001", "2025Z00001", ""} {
		g := New(fixedStore(bad))

		num, err := g.NextForYear(context.Background(), KindQuote, 2025)
		if err != nil {
			t.Fatalf("stored %q: unexpected error: %v", bad, err)
		}
		if num != "25Z00001" {
			t.Errorf("stored %q: expected fallback 25Z00001, got %s", bad, num)
		}
	}
}

func TestNextForYear_StoreFailure(t *testing.T) {
	// Read failures degrade to a fresh sequence instead of propagating;
	// the number column's unique index backstops the duplicate risk.
	store := &MockStore{
		LatestNumberFunc: func(ctx context.Context, kind Kind, yearPrefix string) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	g := New(store)

	num, err := g.NextForYear(context.Background(), KindOrder, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "25Z00001" {
		t.Errorf("expected 25Z00001, got %s", num)
	}
}

func TestNextForYear_PureReadNoWrite(t *testing.T) {
	// Two calls without a persisted write in between return the same number.
	g := New(fixedStore("25Z00041"))
	ctx := context.Background()

	first, err := g.NextForYear(ctx, KindOrder, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := g.NextForYear(ctx, KindOrder, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("generator is not a pure function of store state: %s != %s", first, second)
	}
}

func TestNextForYear_UnknownKind(t *testing.T) {
	g := New(&MockStore{})

	_, err := g.NextForYear(context.Background(), Kind("invoice"), 2025)
	if err == nil {
		t.Fatal("expected validation error for unknown series")
	}
}

func TestNextForYear_OutputShape(t *testing.T) {
	stored := []string{"", "25Z00001", "25Z09999", "25Z99999", "25B99999", "07Z00001"}
	years := []int{2025, 2099, 2007}

	g := New(&MockStore{})
	for _, year := range years {
		for _, prior := range stored {
			if prior == "" {
				g = New(&MockStore{})
			} else {
				g = New(fixedStore(prior))
			}

			num, err := g.NextForYear(context.Background(), KindQuote, year)
			if err != nil {
				t.Fatalf("year %d prior %q: unexpected error: %v", year, prior, err)
			}
			if !numberPattern.MatchString(num) {
				t.Errorf("year %d prior %q: output %q does not match ^\\d{2}[A-Z]\\d{5}$", year, prior, num)
			}
		}
	}
}

func TestNext_UsesCurrentYear(t *testing.T) {
	var seenPrefix string
	store := &MockStore{
		LatestNumberFunc: func(ctx context.Context, kind Kind, yearPrefix string) (string, error) {
			seenPrefix = yearPrefix
			return "", ErrNoNumber
		},
	}

	clock := func() time.Time { return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC) }
	g := New(store, WithClock(clock))

	num, err := g.NextOrderNumber(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seenPrefix != "25" {
		t.Errorf("expected lookup with year prefix 25, got %s", seenPrefix)
	}
	if num != "25Z00001" {
		t.Errorf("expected 25Z00001, got %s", num)
	}
}

func TestNextQuoteNumber_SeriesIndependence(t *testing.T) {
	// Each series continues from its own latest record.
	store := &MockStore{
		LatestNumberFunc: func(ctx context.Context, kind Kind, yearPrefix string) (string, error) {
			switch kind {
			case KindOrder:
				return "25Z00100", nil
			case KindQuote:
				return "25Y00007", nil
			}
			return "", ErrNoNumber
		},
	}
	clock := func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }
	g := New(store, WithClock(clock))
	ctx := context.Background()

	orderNum, err := g.NextOrderNumber(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quoteNum, err := g.NextQuoteNumber(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if orderNum != "25Z00101" {
		t.Errorf("expected order number 25Z00101, got %s", orderNum)
	}
	if quoteNum != "25Y00008" {
		t.Errorf("expected quote number 25Y00008, got %s", quoteNum)
	}
}

func TestNextForYear_CustomCycle(t *testing.T) {
	cycle, err := NewCycle("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g := New(fixedStore("25A99999"), WithCycle(cycle))
	num, err := g.NextForYear(context.Background(), KindOrder, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "25B00001" {
		t.Errorf("expected 25B00001, got %s", num)
	}

	g = New(fixedStore("25Z99999"), WithCycle(cycle))
	_, err = g.NextForYear(context.Background(), KindOrder, 2025)
	if !apperror.IsSequenceExhausted(err) {
		t.Errorf("expected SEQUENCE_EXHAUSTED at terminal symbol, got %v", err)
	}
}

func TestLockKey(t *testing.T) {
	if got := LockKey(KindOrder, 2025); got != "seq:order:25" {
		t.Errorf("expected seq:order:25, got %s", got)
	}
	if got := LockKey(KindQuote, 2007); got != "seq:quote:07" {
		t.Errorf("expected seq:quote:07, got %s", got)
	}
}
