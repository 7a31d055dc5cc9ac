package sheet

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTokens(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: []string{""}},
		{name: "single", raw: "abc", want: []string{"abc"}},
		{name: "trimmed", raw: " a , b ,c ", want: []string{"a", "b", "c"}},
		{name: "trailing comma", raw: "1,", want: []string{"1", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTokens(tt.raw))
		})
	}
}

func TestNewCellNumber(t *testing.T) {
	c, err := NewCell("1, 2.5 ,-3", TypeNumber)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2.5", "-3"}, c.Tokens())
	assert.Equal(t, []float64{1, 2.5, -3}, c.Numbers())
	assert.Equal(t, "1,2.5,-3", c.String())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, TypeNumber, c.Type())
}

func TestNewCellNumberRejects(t *testing.T) {
	for _, raw := range []string{"abc", "1,x", "Infinity", "NaN", "1e999"} {
		_, err := NewCell(raw, TypeNumber)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrNotANumber), raw)
	}
}

func TestNewCellNumberBlankTokenAccepted(t *testing.T) {
	c, err := NewCell("", TypeNumber)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(c.SortKey()))
	assert.Empty(t, c.Values())

	c, err = NewCell("4,,5", TypeNumber)
	require.NoError(t, err)
	assert.Equal(t, []any{4.0, 5.0}, c.Values())
}

func TestNewCellString(t *testing.T) {
	c, err := NewCell("Hello, World", TypeString)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "World"}, c.Tokens())
	assert.Nil(t, c.Numbers())
	assert.Equal(t, []any{"Hello", "World"}, c.Values())
}

func TestCellContainsIgnoresCase(t *testing.T) {
	c, err := NewCell("Alpha,Beta", TypeString)
	require.NoError(t, err)
	assert.True(t, c.Contains("ALP"))
	assert.True(t, c.Contains("eta"))
	assert.False(t, c.Contains("gamma"))
	assert.False(t, c.Contains("a,b"))
	assert.False(t, EmptyCell(TypeString).Contains("a"))
}

func TestCellSortKey(t *testing.T) {
	c, err := NewCell("7,1", TypeNumber)
	require.NoError(t, err)
	assert.Equal(t, 7.0, c.SortKey())

	assert.True(t, math.IsNaN(EmptyCell(TypeNumber).SortKey()))

	s, err := NewCell("12,x", TypeString)
	require.NoError(t, err)
	assert.Equal(t, 12.0, s.SortKey())

	s, err = NewCell("x", TypeString)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(s.SortKey()))
}

func TestCellTokensAreCopies(t *testing.T) {
	c, err := NewCell("a,b", TypeString)
	require.NoError(t, err)
	toks := c.Tokens()
	toks[0] = "z"
	assert.Equal(t, "a,b", c.String())
}

func TestParseColumnType(t *testing.T) {
	got, err := ParseColumnType("number")
	require.NoError(t, err)
	assert.Equal(t, TypeNumber, got)
	got, err = ParseColumnType(" STRING ")
	require.NoError(t, err)
	assert.Equal(t, TypeString, got)
	_, err = ParseColumnType("date")
	assert.Error(t, err)
}

func TestParseCondition(t *testing.T) {
	got, err := ParseCondition("")
	require.NoError(t, err)
	assert.Equal(t, Condition(""), got)
	got, err = ParseCondition("asc")
	require.NoError(t, err)
	assert.Equal(t, ConditionLess, got)
	got, err = ParseCondition("Greater")
	require.NoError(t, err)
	assert.Equal(t, ConditionGreater, got)
	_, err = ParseCondition("sideways")
	assert.Error(t, err)
	assert.Equal(t, "Greater than or equal to", ConditionGreater.Label())
	assert.Equal(t, "Less than or equal to", ConditionLess.Label())
}
