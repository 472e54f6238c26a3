// Package sequence generates human-readable document numbers for orders
// and quotes.
//
// A number is an 8-character string such as "25Z01001": a 2-digit year
// suffix, one letter from a fixed 26-symbol cycle, and a 5-digit zero-padded
// counter in [1, 99999]. The counter advances within a letter; when it
// saturates, the letter advances through the cycle; when the cycle is
// exhausted, no further numbers can be issued for that series and year.
//
// The generator is a pure computation over a single read from a Store that
// answers "most recently created number for this series and year". It never
// writes; the caller persists the entity carrying the number. Two concurrent
// callers can therefore compute the same number — the document tables enforce
// uniqueness on the number column, and creating services retry on conflict
// (or serialize issuance with a lock.Locker keyed by series and year).
package sequence

// Kind identifies a number series. Each kind has its own counter per year,
// backed by a distinct document table.
type Kind string

const (
	// KindOrder is the number series for production orders.
	KindOrder Kind = "order"

	// KindQuote is the number series for customer quotes.
	KindQuote Kind = "quote"
)

// Valid reports whether k names a known series.
func (k Kind) Valid() bool {
	switch k {
	case KindOrder, KindQuote:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}
