package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cell is the multi-token value held by one row at one column. It is tagged with the
// owning column's type and validated when built, so a Number cell always holds
// parseable tokens. Cells are immutable.
type Cell struct {
	kind    ColumnType
	tokens  []string
	numbers []float64
}

// EmptyCell returns a cell with no tokens.
func EmptyCell(t ColumnType) Cell {
	return Cell{kind: t}
}

// SplitTokens splits raw input on commas and trims each piece.
// An empty input yields a single empty token.
func SplitTokens(raw string) []string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// NewCell builds a cell of type t from raw user input.
// Number cells require every non-empty token to parse as a finite number; blank tokens
// are kept and read as NaN.
func NewCell(raw string, t ColumnType) (Cell, error) {
	tokens := SplitTokens(raw)
	c := Cell{kind: t, tokens: tokens}
	if t != TypeNumber {
		return c, nil
	}
	c.numbers = make([]float64, len(tokens))
	for i, tok := range tokens {
		if tok == "" {
			c.numbers[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return Cell{}, fmt.Errorf("%w: %q", ErrNotANumber, tok)
		}
		c.numbers[i] = v
	}
	return c, nil
}

// Type returns the column type the cell was validated against.
func (c Cell) Type() ColumnType { return c.kind }

// Tokens returns a copy of the cell's tokens.
func (c Cell) Tokens() []string {
	return append([]string(nil), c.tokens...)
}

// Numbers returns the parsed values of a Number cell, or nil for String cells.
func (c Cell) Numbers() []float64 {
	if c.kind != TypeNumber {
		return nil
	}
	return append([]float64(nil), c.numbers...)
}

// Len returns the number of tokens.
func (c Cell) Len() int { return len(c.tokens) }

// String renders the tokens joined by commas, the form the cell editor shows.
func (c Cell) String() string {
	return strings.Join(c.tokens, ",")
}

// Contains reports whether any token contains substr, ignoring case.
func (c Cell) Contains(substr string) bool {
	needle := strings.ToLower(substr)
	for _, tok := range c.tokens {
		if strings.Contains(strings.ToLower(tok), needle) {
			return true
		}
	}
	return false
}

// SortKey is the numeric value used for sorting: the first token parsed as a number,
// or NaN when the cell is empty or the first token is blank or not numeric.
func (c Cell) SortKey() float64 {
	if len(c.tokens) == 0 {
		return math.NaN()
	}
	if c.kind == TypeNumber {
		return c.numbers[0]
	}
	v, err := strconv.ParseFloat(c.tokens[0], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Values returns the tokens as CEL-friendly values: float64 for Number cells (blank
// tokens dropped) and string otherwise.
func (c Cell) Values() []any {
	out := make([]any, 0, len(c.tokens))
	if c.kind == TypeNumber {
		for _, n := range c.numbers {
			if math.IsNaN(n) {
				continue
			}
			out = append(out, n)
		}
		return out
	}
	for _, tok := range c.tokens {
		out = append(out, tok)
	}
	return out
}
