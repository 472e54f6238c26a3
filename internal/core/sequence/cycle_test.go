package sequence

import (
	"testing"
)

func TestDefaultCycle(t *testing.T) {
	c := DefaultCycle()

	if c.First() != 'Z' {
		t.Errorf("expected first symbol Z, got %c", c.First())
	}
	if c.Last() != 'A' {
		t.Errorf("expected last symbol A, got %c", c.Last())
	}

	next, ok := c.Next('Z')
	if !ok || next != 'Y' {
		t.Errorf("expected Z -> Y, got %c ok=%v", next, ok)
	}

	next, ok = c.Next('B')
	if !ok || next != 'A' {
		t.Errorf("expected B -> A, got %c ok=%v", next, ok)
	}

	if _, ok := c.Next('A'); ok {
		t.Error("terminal symbol A must have no successor")
	}
	if _, ok := c.Next('1'); ok {
		t.Error("symbols outside the cycle must have no successor")
	}
}

func TestDefaultCycle_CoversAllLetters(t *testing.T) {
	c := DefaultCycle()

	seen := map[byte]bool{c.First(): true}
	ch := c.First()
	for {
		next, ok := c.Next(ch)
		if !ok {
			break
		}
		if seen[next] {
			t.Fatalf("symbol %c visited twice", next)
		}
		seen[next] = true
		ch = next
	}

	if len(seen) != 26 {
		t.Errorf("traversal visited %d symbols, want 26", len(seen))
	}
	if ch != c.Last() {
		t.Errorf("traversal ended at %c, want %c", ch, c.Last())
	}
}

func TestNewCycle_Validation(t *testing.T) {
	tests := []struct {
		name    string
		letters string
	}{
		{"too short", "ABC"},
		{"duplicate", "AABCDEFGHIJKLMNOPQRSTUVWXY"},
		{"lowercase", "abcdefghijklmnopqrstuvwxyz"},
		{"digit", "0BCDEFGHIJKLMNOPQRSTUVWXYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCycle(tt.letters); err == nil {
				t.Errorf("NewCycle(%q) should fail", tt.letters)
			}
		})
	}
}
