package sequence

import (
	"fmt"
)

// defaultLetters is the deployment's letter order: reverse alphabetical,
// starting at 'Z' and ending at 'A'.
const defaultLetters = "ZYXWVUTSRQPONMLKJIHGFEDCBA"

// Cycle is a fixed, deterministic total order over 26 uppercase letters with
// a designated first and last symbol. It is modeled as an explicit ordered
// list with index-based lookup rather than character arithmetic, so the
// traversal direction stays configurable and testable in isolation.
type Cycle struct {
	letters []byte
	index   map[byte]int
}

// NewCycle builds a Cycle from the given letter order.
// The order must contain exactly 26 distinct uppercase ASCII letters.
func NewCycle(letters string) (*Cycle, error) {
	if len(letters) != 26 {
		return nil, fmt.Errorf("letter cycle must have 26 symbols, got %d", len(letters))
	}

	c := &Cycle{
		letters: []byte(letters),
		index:   make(map[byte]int, 26),
	}

	for i := 0; i < len(letters); i++ {
		ch := letters[i]
		if ch < 'A' || ch > 'Z' {
			return nil, fmt.Errorf("letter cycle symbol %q is not an uppercase ASCII letter", ch)
		}
		if _, dup := c.index[ch]; dup {
			return nil, fmt.Errorf("letter cycle symbol %q appears twice", ch)
		}
		c.index[ch] = i
	}

	return c, nil
}

// DefaultCycle returns the standard cycle: 'Z' first, advancing toward 'A'.
func DefaultCycle() *Cycle {
	c, err := NewCycle(defaultLetters)
	if err != nil {
		panic(err) // defaultLetters is a compile-time constant
	}
	return c
}

// First returns the starting symbol of the cycle.
func (c *Cycle) First() byte {
	return c.letters[0]
}

// Last returns the terminal symbol, beyond which no rollover is possible.
func (c *Cycle) Last() byte {
	return c.letters[len(c.letters)-1]
}

// Contains reports whether ch is a symbol of the cycle.
func (c *Cycle) Contains(ch byte) bool {
	_, ok := c.index[ch]
	return ok
}

// Next returns the symbol following ch.
// ok is false when ch is the terminal symbol or not part of the cycle.
func (c *Cycle) Next(ch byte) (next byte, ok bool) {
	i, found := c.index[ch]
	if !found || i == len(c.letters)-1 {
		return 0, false
	}
	return c.letters[i+1], true
}
