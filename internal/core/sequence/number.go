package sequence

import (
	"fmt"
	"regexp"
	"strconv"
)

// MaxCounter is the largest value of the 5-digit numeric suffix.
// Issuing beyond it rolls the letter forward.
const MaxCounter = 99999

// numberPattern matches a well-formed document number: 2-digit year suffix,
// one uppercase letter, 5-digit zero-padded counter.
var numberPattern = regexp.MustCompile(`^(\d{2})([A-Z])(\d{5})$`)

// Number is a parsed document number.
type Number struct {
	// YearSuffix is the last two digits of the issue year, e.g. "25".
	YearSuffix string

	// Letter is the cycle symbol, e.g. 'Z'.
	Letter byte

	// Counter is the numeric suffix in [1, MaxCounter].
	Counter int
}

// Parse splits a formatted number into its fields.
func Parse(s string) (Number, error) {
	m := numberPattern.FindStringSubmatch(s)
	if m == nil {
		return Number{}, fmt.Errorf("malformed document number %q", s)
	}

	counter, err := strconv.Atoi(m[3])
	if err != nil {
		return Number{}, fmt.Errorf("malformed document number %q: %w", s, err)
	}

	return Number{
		YearSuffix: m[1],
		Letter:     m[2][0],
		Counter:    counter,
	}, nil
}

// String formats the number back to its canonical 8-character form.
func (n Number) String() string {
	return Format(n.YearSuffix, n.Letter, n.Counter)
}

// Format builds the canonical 8-character number string.
func Format(yearSuffix string, letter byte, counter int) string {
	return fmt.Sprintf("%s%c%05d", yearSuffix, letter, counter)
}

// YearSuffix returns the last two digits of year, zero-padded.
func YearSuffix(year int) string {
	return fmt.Sprintf("%02d", year%100)
}
