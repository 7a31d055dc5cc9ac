package sheet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSheet(t *testing.T) *Sheet {
	t.Helper()
	n := 0
	return New(WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("r%d", n)
	}))
}

// numbersSheet builds one Number column "Score" with the given raw values, one row each.
func numbersSheet(t *testing.T, values ...string) *Sheet {
	t.Helper()
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("Score", TypeNumber))
	for i, v := range values {
		s.AddRow()
		require.NoError(t, s.EditCell(i, 0, v))
	}
	return s
}

func visibleStrings(s *Sheet, col int) []string {
	var out []string
	for _, r := range s.Visible() {
		out = append(out, r.Cells[col].String())
	}
	return out
}

func assertShape(t *testing.T, s *Sheet) {
	t.Helper()
	for _, r := range s.Visible() {
		assert.Len(t, r.Cells, s.ColumnCount())
	}
	for _, r := range s.Original() {
		assert.Len(t, r.Cells, s.ColumnCount())
	}
	assert.LessOrEqual(t, s.VisibleLen(), len(s.Original()))
}

func TestNewSheetIsEmpty(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.ColumnCount())
	assert.Equal(t, 0, s.RowCount())
	assert.Empty(t, s.Visible())
	assert.Empty(t, s.Original())
}

func TestAddRowWithoutColumns(t *testing.T) {
	s := newTestSheet(t)
	row := s.AddRow()
	assert.Equal(t, "r1", row.ID)
	assert.Empty(t, row.Cells)
	assert.Equal(t, 1, s.RowCount())
	assert.Len(t, s.Visible(), 1)
	assert.Len(t, s.Original(), 1)
}

func TestAddColumnExtendsRows(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("Name", TypeString))
	s.AddRow()
	s.AddRow()
	require.NoError(t, s.AddColumn("Age", TypeNumber))

	assert.Equal(t, []Column{{Name: "Name", Type: TypeString}, {Name: "Age", Type: TypeNumber}}, s.Columns())
	for _, r := range s.Original() {
		require.Len(t, r.Cells, 2)
		assert.Equal(t, 0, r.Cells[1].Len())
		assert.Equal(t, TypeNumber, r.Cells[1].Type())
	}
	assertShape(t, s)
}

func TestAddColumnRequiresName(t *testing.T) {
	s := newTestSheet(t)
	err := s.AddColumn("   ", TypeString)
	require.ErrorIs(t, err, ErrColumnNameRequired)
	assert.Equal(t, "Column name is required!", err.Error())
	assert.Equal(t, KindMissingSelection, KindOf(err))
	assert.Equal(t, 0, s.ColumnCount())

	require.ErrorIs(t, s.AddColumn("", TypeNumber), ErrColumnNameRequired)

	// Only blank names are rejected; a padded name is stored as typed.
	require.NoError(t, s.AddColumn(" Age ", TypeNumber))
	assert.Equal(t, " Age ", s.Columns()[0].Name)
}

func TestAddColumnMaximum(t *testing.T) {
	s := newTestSheet(t)
	for i := range MaxColumns {
		require.NoError(t, s.AddColumn(fmt.Sprintf("c%d", i), TypeString))
	}
	err := s.AddColumn("extra", TypeString)
	require.ErrorIs(t, err, ErrMaxColumns)
	assert.Equal(t, "You can add a maximum of 10 columns!", err.Error())
	assert.True(t, IsNotice(err))
	assert.Equal(t, MaxColumns, s.ColumnCount())
}

func TestAddColumnLimitCheckedBeforeName(t *testing.T) {
	s := newTestSheet(t)
	for i := range MaxColumns {
		require.NoError(t, s.AddColumn(fmt.Sprintf("c%d", i), TypeString))
	}
	assert.ErrorIs(t, s.AddColumn("", TypeString), ErrMaxColumns)
}

func TestDeleteColumn(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("A", TypeString))
	require.NoError(t, s.AddColumn("B", TypeNumber))
	s.AddRow()
	require.NoError(t, s.EditCell(0, 0, "keep"))
	require.NoError(t, s.EditCell(0, 1, "3"))

	require.NoError(t, s.DeleteColumn(1))
	assert.Equal(t, []Column{{Name: "A", Type: TypeString}}, s.Columns())
	assert.Equal(t, []string{"keep"}, visibleStrings(s, 0))
	assertShape(t, s)
}

func TestDeleteLastColumnRejected(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("A", TypeString))
	err := s.DeleteColumn(0)
	require.ErrorIs(t, err, ErrMinColumns)
	assert.Equal(t, "There should be at least 1 column!", err.Error())
	assert.True(t, IsNotice(err))
	assert.Equal(t, 1, s.ColumnCount())
}

func TestDeleteColumnOutOfRange(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("A", TypeString))
	require.NoError(t, s.AddColumn("B", TypeString))
	assert.ErrorIs(t, s.DeleteColumn(5), ErrColumnIndex)
	assert.ErrorIs(t, s.DeleteColumn(-1), ErrColumnIndex)
	assert.Equal(t, 2, s.ColumnCount())
}

func TestDeleteRow(t *testing.T) {
	s := numbersSheet(t, "1", "2", "3")
	require.NoError(t, s.DeleteRow(1))
	assert.Equal(t, 2, s.RowCount())
	assert.Len(t, s.Original(), 2)
	assert.Equal(t, []string{"1", "3"}, visibleStrings(s, 0))

	err := s.DeleteRow(9)
	require.ErrorIs(t, err, ErrRowIndex)
	assert.Equal(t, KindIndex, KindOf(err))
	assert.Equal(t, 2, s.RowCount())
}

// Deleting by visible position removes the same position from the original copy, which
// may be a different row once the visible copy is sorted.
func TestDeleteRowUsesVisiblePositionInOriginal(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("N", TypeNumber))
	a := s.AddRow()
	b := s.AddRow()
	require.NoError(t, s.EditCell(0, 0, "1"))
	require.NoError(t, s.EditCell(1, 0, "2"))
	require.NoError(t, s.Sort("N", ConditionGreater))
	require.Equal(t, b.ID, s.Visible()[0].ID)

	require.NoError(t, s.DeleteRow(0))
	assert.Equal(t, a.ID, s.Visible()[0].ID)
	assert.Equal(t, b.ID, s.Original()[0].ID)
}

func TestDeleteOnlyRow(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("N", TypeString))
	s.AddRow()
	require.NoError(t, s.DeleteRow(0))
	assert.Equal(t, 0, s.RowCount())
	assert.Empty(t, s.Original())
}

func TestEditCellValidation(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("Name", TypeString))
	require.NoError(t, s.AddColumn("Age", TypeNumber))
	s.AddRow()

	err := s.EditCell(0, 1, "abc")
	require.Error(t, err)
	assert.Equal(t, "Invalid input for Number in column 2", err.Error())
	assert.ErrorIs(t, err, ErrInvalidCell)
	assert.ErrorIs(t, err, ErrNotANumber)
	assert.Equal(t, KindTypeMismatch, KindOf(err))
	c, ok := s.Cell(0, 1)
	require.True(t, ok)
	assert.Equal(t, 0, c.Len())

	require.NoError(t, s.EditCell(0, 1, "30, 31"))
	c, _ = s.Cell(0, 1)
	assert.Equal(t, []float64{30, 31}, c.Numbers())

	require.NoError(t, s.EditCell(0, 0, "a, b"))
	c, _ = s.Cell(0, 0)
	assert.Equal(t, "a,b", c.String())
}

func TestEditCellOutOfRange(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("A", TypeString))
	s.AddRow()
	assert.ErrorIs(t, s.EditCell(3, 0, "x"), ErrRowIndex)
	assert.ErrorIs(t, s.EditCell(0, 3, "x"), ErrColumnIndex)
}

// Edits only touch the visible copy; a search or reset re-reads the unedited original.
func TestEditCellNotMirroredToOriginal(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("Name", TypeString))
	s.AddRow()
	require.NoError(t, s.EditCell(0, 0, "Alice"))

	assert.Equal(t, "Alice", s.Visible()[0].Cells[0].String())
	assert.Equal(t, "", s.Original()[0].Cells[0].String())

	err := s.Search("Name", "ali")
	require.NoError(t, err)
	assert.Empty(t, s.Visible())

	s.ResetSearch()
	assert.Equal(t, []string{""}, visibleStrings(s, 0))
}

func TestSortDirections(t *testing.T) {
	s := numbersSheet(t, "3", "10", "-1", "2.5")

	require.NoError(t, s.Sort("Score", ConditionLess))
	assert.Equal(t, []string{"-1", "2.5", "3", "10"}, visibleStrings(s, 0))

	require.NoError(t, s.Sort("Score", ConditionGreater))
	assert.Equal(t, []string{"10", "3", "2.5", "-1"}, visibleStrings(s, 0))
}

func TestSortIsStableAndSinksBlanks(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("Score", TypeNumber))
	require.NoError(t, s.AddColumn("Tag", TypeString))
	rows := [][2]string{{"2", "a"}, {"", "blank1"}, {"1", "b"}, {"2", "c"}, {"", "blank2"}}
	for i, r := range rows {
		s.AddRow()
		require.NoError(t, s.EditCell(i, 0, r[0]))
		require.NoError(t, s.EditCell(i, 1, r[1]))
	}

	require.NoError(t, s.Sort("Score", ConditionLess))
	assert.Equal(t, []string{"b", "a", "c", "blank1", "blank2"}, visibleStrings(s, 1))

	require.NoError(t, s.Sort("Score", ConditionGreater))
	assert.Equal(t, []string{"a", "c", "b", "blank1", "blank2"}, visibleStrings(s, 1))
}

func TestSortUsesFirstToken(t *testing.T) {
	s := numbersSheet(t, "5,1", "3,100")
	require.NoError(t, s.Sort("Score", ConditionLess))
	assert.Equal(t, []string{"3,100", "5,1"}, visibleStrings(s, 0))
}

func TestSortLeavesOriginal(t *testing.T) {
	s := numbersSheet(t, "2", "1")
	before := s.Original()
	require.NoError(t, s.Sort("Score", ConditionLess))
	assert.Equal(t, before, s.Original())
}

func TestSortErrors(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("Name", TypeString))
	require.NoError(t, s.AddColumn("Score", TypeNumber))

	err := s.Sort("", ConditionLess)
	require.ErrorIs(t, err, ErrSortSelection)
	assert.Equal(t, "Please select a column and sorting condition!", err.Error())
	assert.ErrorIs(t, s.Sort("Score", ""), ErrSortSelection)

	err = s.Sort("Name", ConditionLess)
	require.ErrorIs(t, err, ErrSortNotNumber)
	assert.Equal(t, "Sorting can only be applied to number columns.", err.Error())

	err = s.Sort("Scor", ConditionLess)
	require.ErrorIs(t, err, ErrUnknownColumn)
	assert.Equal(t, KindUnknownColumn, KindOf(err))
	assert.Contains(t, err.Error(), `did you mean "Score"?`)
}

func TestSearch(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("Name", TypeString))
	for _, name := range []string{"Anna", "Bob", "anderson"} {
		_, err := s.AppendRow(name)
		require.NoError(t, err)
	}
	require.NoError(t, s.Search("Name", "AN"))
	assert.Equal(t, []string{"Anna", "anderson"}, visibleStrings(s, 0))

	// A second search starts again from the original rows.
	require.NoError(t, s.Search("Name", "bo"))
	assert.Equal(t, []string{"Bob"}, visibleStrings(s, 0))

	s.ResetSearch()
	assert.Equal(t, []string{"Anna", "Bob", "anderson"}, visibleStrings(s, 0))
}

func TestSearchMatchesAnyToken(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("Tags", TypeString))
	_, err := s.AppendRow("red, green")
	require.NoError(t, err)
	_, err = s.AppendRow("blue")
	require.NoError(t, err)
	require.NoError(t, s.Search("Tags", "GREE"))
	assert.Equal(t, []string{"red,green"}, visibleStrings(s, 0))
}

func TestSearchErrors(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("Name", TypeString))
	_, err := s.AppendRow("x")
	require.NoError(t, err)

	err = s.Search("", "x")
	require.ErrorIs(t, err, ErrSearchSelection)
	assert.Equal(t, "Please select a column and enter a search value!", err.Error())
	assert.ErrorIs(t, s.Search("Name", ""), ErrSearchSelection)
	assert.ErrorIs(t, s.Search("Nope", "x"), ErrUnknownColumn)
	assert.Len(t, s.Visible(), 1)
}

func TestSearchUsesFirstColumnWithName(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("Dup", TypeString))
	require.NoError(t, s.AddColumn("Dup", TypeString))
	_, err := s.AppendRow("left", "right")
	require.NoError(t, err)
	require.NoError(t, s.Search("Dup", "right"))
	assert.Empty(t, s.Visible())
}

func TestAppendRow(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("Name", TypeString))
	require.NoError(t, s.AddColumn("Age", TypeNumber))

	row, err := s.AppendRow("Anna")
	require.NoError(t, err)
	assert.Equal(t, "Anna", row.Cells[0].String())
	assert.Equal(t, 0, row.Cells[1].Len())
	assert.Equal(t, 1, s.RowCount())

	_, err = s.AppendRow("Bob", "old")
	require.ErrorIs(t, err, ErrInvalidCell)
	assert.Equal(t, "Invalid input for Number in column 2", err.Error())

	_, err = s.AppendRow("a", "1", "extra")
	require.ErrorIs(t, err, ErrColumnIndex)
	assert.Equal(t, 1, s.RowCount())
	assertShape(t, s)
}

func TestFilter(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("N", TypeNumber))
	first := s.AddRow()
	s.AddRow()

	keepFirst := func(_ []Column, r Row) (bool, error) { return r.ID == first.ID, nil }
	require.NoError(t, s.Filter(keepFirst))
	require.Len(t, s.Visible(), 1)
	assert.Equal(t, first.ID, s.Visible()[0].ID)

	assert.ErrorIs(t, s.Filter(nil), ErrFilterExpression)

	boom := errors.New("boom")
	err := s.Filter(func([]Column, Row) (bool, error) { return false, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, KindExpression, KindOf(err))
	assert.Len(t, s.Visible(), 1)
}

func TestResetSearchRestoresOriginal(t *testing.T) {
	s := numbersSheet(t, "2", "1")
	require.NoError(t, s.Sort("Score", ConditionLess))
	s.ResetSearch()
	assert.Equal(t, s.Original(), s.Visible())
}

func TestVisibleIsACopy(t *testing.T) {
	s := numbersSheet(t, "1")
	rows := s.Visible()
	rows[0].Cells[0] = EmptyCell(TypeNumber)
	assert.Equal(t, []string{"1"}, visibleStrings(s, 0))
}

func TestNumberColumnsAndIndex(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("A", TypeString))
	require.NoError(t, s.AddColumn("B", TypeNumber))
	require.NoError(t, s.AddColumn("B", TypeString))
	require.NoError(t, s.AddColumn("C", TypeNumber))
	assert.Equal(t, []string{"B", "C"}, s.NumberColumns())
	assert.Equal(t, 1, s.ColumnIndex("B"))
	assert.Equal(t, -1, s.ColumnIndex("Z"))
	assert.Equal(t, []string{"A", "B", "B", "C"}, s.ColumnNames())
}

func TestShapeHoldsAcrossOperations(t *testing.T) {
	s := newTestSheet(t)
	require.NoError(t, s.AddColumn("A", TypeString))
	s.AddRow()
	require.NoError(t, s.AddColumn("B", TypeNumber))
	s.AddRow()
	require.NoError(t, s.Sort("B", ConditionLess))
	require.NoError(t, s.AddColumn("C", TypeString))
	require.NoError(t, s.DeleteColumn(0))
	require.NoError(t, s.DeleteRow(0))
	assertShape(t, s)
	assert.Equal(t, 1, s.RowCount())
}
