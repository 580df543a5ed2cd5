package tonal

import (
	"fmt"
	"strconv"
	"strings"
)

// Camelot wheel numbers indexed by root pitch class.
var (
	camelotMajor = [12]int{8, 3, 10, 5, 12, 7, 2, 9, 4, 11, 6, 1}
	camelotMinor = [12]int{5, 12, 7, 2, 9, 4, 11, 6, 1, 8, 3, 10}
)

// Camelot is a position on the DJ mixing wheel: 1-12 plus A (minor) or
// B (major).
type Camelot struct {
	Number int
	Letter byte
}

func (c Camelot) String() string {
	return strconv.Itoa(c.Number) + string(c.Letter)
}

// CamelotFor returns the wheel position of k.
func CamelotFor(k Key) Camelot {
	if k.Mode == KeyModeMinor {
		return Camelot{Number: camelotMinor[k.Root], Letter: 'A'}
	}
	return Camelot{Number: camelotMajor[k.Root], Letter: 'B'}
}

// ParseCamelot accepts codes like "8B" or "12a".
func ParseCamelot(s string) (Camelot, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Camelot{}, fmt.Errorf("invalid camelot code %q", s)
	}

	letter := s[len(s)-1]
	if letter != 'A' && letter != 'B' {
		return Camelot{}, fmt.Errorf("invalid camelot letter in %q", s)
	}

	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 1 || n > 12 {
		return Camelot{}, fmt.Errorf("invalid camelot number in %q", s)
	}

	return Camelot{Number: n, Letter: letter}, nil
}

// Key converts the wheel position back to a key.
func (c Camelot) Key() Key {
	table, mode := camelotMajor, KeyModeMajor
	if c.Letter == 'A' {
		table, mode = camelotMinor, KeyModeMinor
	}
	for root, n := range table {
		if n == c.Number {
			return Key{Root: root, Mode: mode}
		}
	}
	return Key{}
}

// Relative swaps the letter, keeping the number.
func (c Camelot) Relative() Camelot {
	if c.Letter == 'A' {
		return Camelot{c.Number, 'B'}
	}
	return Camelot{c.Number, 'A'}
}

func (c Camelot) Prev() Camelot {
	if c.Number == 1 {
		return Camelot{12, c.Letter}
	}
	return Camelot{c.Number - 1, c.Letter}
}

func (c Camelot) Next() Camelot {
	if c.Number == 12 {
		return Camelot{1, c.Letter}
	}
	return Camelot{c.Number + 1, c.Letter}
}

// Compatible lists the harmonic mixing neighbours: relative, previous,
// next.
func (c Camelot) Compatible() []Camelot {
	return []Camelot{c.Relative(), c.Prev(), c.Next()}
}

// IsCompatible reports whether other is c or one of its neighbours.
func (c Camelot) IsCompatible(other Camelot) bool {
	if c == other {
		return true
	}
	for _, n := range c.Compatible() {
		if n == other {
			return true
		}
	}
	return false
}
