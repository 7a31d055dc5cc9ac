package sheet

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
)

// RowMatcher reports whether a row passes a filter. It is given the current columns so
// it can address cells by name.
type RowMatcher func(columns []Column, row Row) (bool, error)

// Sheet is the state container behind the table widget.
type Sheet struct {
	columns  []Column
	visible  []Row
	original []Row
	rowCount int
	newID    func() string
}

// Option configures a Sheet.
type Option func(*Sheet)

// WithIDGenerator overrides how row ids are generated (defaults to random UUIDs).
func WithIDGenerator(fn func() string) Option {
	return func(s *Sheet) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New returns an empty sheet with no columns and no rows.
func New(opts ...Option) *Sheet {
	s := &Sheet{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Columns returns a copy of the column definitions.
func (s *Sheet) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// ColumnCount returns the number of columns.
func (s *Sheet) ColumnCount() int { return len(s.columns) }

// RowCount returns the row counter maintained by AddRow and DeleteRow.
func (s *Sheet) RowCount() int { return s.rowCount }

// Visible returns a copy of the rows currently shown (possibly sorted or filtered).
func (s *Sheet) Visible() []Row { return cloneRows(s.visible) }

// Original returns a copy of the pristine rows used for searching and reset.
func (s *Sheet) Original() []Row { return cloneRows(s.original) }

// VisibleLen returns the number of visible rows.
func (s *Sheet) VisibleLen() int { return len(s.visible) }

// Cell returns the visible cell at (i, j).
func (s *Sheet) Cell(i, j int) (Cell, bool) {
	if i < 0 || i >= len(s.visible) || j < 0 || j >= len(s.columns) {
		return Cell{}, false
	}
	return s.visible[i].Cells[j], true
}

// ColumnIndex returns the position of the first column named name, or -1.
func (s *Sheet) ColumnIndex(name string) int {
	return slices.IndexFunc(s.columns, func(c Column) bool { return c.Name == name })
}

// NumberColumns returns the names of the Number columns in order. These are the only
// valid sort targets.
func (s *Sheet) NumberColumns() []string {
	var names []string
	for _, c := range s.columns {
		if c.Type == TypeNumber {
			names = append(names, c.Name)
		}
	}
	return names
}

// ColumnNames returns every column name in order.
func (s *Sheet) ColumnNames() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// AddColumn appends a column and an empty cell to every row in both copies.
// The column limit is checked before the name.
func (s *Sheet) AddColumn(name string, t ColumnType) error {
	if len(s.columns) >= MaxColumns {
		return ErrMaxColumns
	}
	if strings.TrimSpace(name) == "" {
		return ErrColumnNameRequired
	}
	if t != TypeNumber {
		t = TypeString
	}
	s.columns = append(s.columns, Column{Name: name, Type: t})
	for i := range s.visible {
		s.visible[i].Cells = append(s.visible[i].Cells, EmptyCell(t))
	}
	for i := range s.original {
		s.original[i].Cells = append(s.original[i].Cells, EmptyCell(t))
	}
	return nil
}

// DeleteColumn removes column i and the matching cell from every row in both copies.
func (s *Sheet) DeleteColumn(i int) error {
	if len(s.columns) == 1 {
		return ErrMinColumns
	}
	if i < 0 || i >= len(s.columns) {
		return ErrColumnIndex
	}
	s.columns = slices.Delete(s.columns, i, i+1)
	for r := range s.visible {
		s.visible[r].Cells = slices.Delete(s.visible[r].Cells, i, i+1)
	}
	for r := range s.original {
		s.original[r].Cells = slices.Delete(s.original[r].Cells, i, i+1)
	}
	return nil
}

// AddRow appends an empty row to both copies and returns it.
func (s *Sheet) AddRow() Row {
	cells := make([]Cell, len(s.columns))
	for j, c := range s.columns {
		cells[j] = EmptyCell(c.Type)
	}
	row := Row{ID: s.newID(), Cells: cells}
	s.visible = append(s.visible, row.Clone())
	s.original = append(s.original, row.Clone())
	s.rowCount++
	return row.Clone()
}

// AppendRow appends a row pre-filled with values, one raw input per column, to both
// copies. Missing values leave the cell empty and extra values are an error. Every
// value is validated before anything changes.
func (s *Sheet) AppendRow(values ...string) (Row, error) {
	if len(values) > len(s.columns) {
		return Row{}, &Error{
			Kind: KindIndex,
			Op:   OpAddRow,
			Msg:  fmt.Sprintf("Row has %d values but there are %d columns", len(values), len(s.columns)),
			Err:  ErrColumnIndex,
		}
	}
	cells := make([]Cell, len(s.columns))
	for j, c := range s.columns {
		if j >= len(values) {
			cells[j] = EmptyCell(c.Type)
			continue
		}
		cell, err := NewCell(values[j], c.Type)
		if err != nil {
			return Row{}, &Error{
				Kind: KindTypeMismatch,
				Op:   OpAddRow,
				Msg:  fmt.Sprintf("Invalid input for %s in column %d", c.Type, j+1),
				Err:  fmt.Errorf("%w: %w", ErrInvalidCell, err),
			}
		}
		cells[j] = cell
	}
	row := Row{ID: s.newID(), Cells: cells}
	s.visible = append(s.visible, row.Clone())
	s.original = append(s.original, row.Clone())
	s.rowCount++
	return row.Clone(), nil
}

// DeleteRow removes position i from both copies. The position is taken from the
// visible copy and applied to the original unchanged, so after a sort or filter the
// original may lose a different row than the one shown.
func (s *Sheet) DeleteRow(i int) error {
	if i < 0 || i >= len(s.visible) {
		return &Error{Kind: KindIndex, Op: OpDeleteRow, Msg: fmt.Sprintf("Row %d does not exist", i+1), Err: ErrRowIndex}
	}
	s.visible = slices.Delete(s.visible, i, i+1)
	if i < len(s.original) {
		s.original = slices.Delete(s.original, i, i+1)
	}
	s.rowCount--
	return nil
}

// EditCell validates raw against column j's type and stores it at visible row i.
// The original copy is not updated.
func (s *Sheet) EditCell(i, j int, raw string) error {
	if i < 0 || i >= len(s.visible) {
		return &Error{Kind: KindIndex, Op: OpEditCell, Msg: fmt.Sprintf("Row %d does not exist", i+1), Err: ErrRowIndex}
	}
	if j < 0 || j >= len(s.columns) {
		return &Error{Kind: KindIndex, Op: OpEditCell, Msg: fmt.Sprintf("Column %d does not exist", j+1), Err: ErrColumnIndex}
	}
	t := s.columns[j].Type
	cell, err := NewCell(raw, t)
	if err != nil {
		return &Error{
			Kind: KindTypeMismatch,
			Op:   OpEditCell,
			Msg:  fmt.Sprintf("Invalid input for %s in column %d", t, j+1),
			Err:  fmt.Errorf("%w: %w", ErrInvalidCell, err),
		}
	}
	row := s.visible[i].Clone()
	row.Cells[j] = cell
	s.visible[i] = row
	return nil
}

// Sort orders the visible rows by the numeric value of the named column.
// The sort is stable: equal keys keep their current order. Rows whose key is not a
// number go last in either direction. The original copy is untouched.
func (s *Sheet) Sort(column string, cond Condition) error {
	if column == "" || cond == "" {
		return ErrSortSelection
	}
	if cond != ConditionGreater && cond != ConditionLess {
		return ErrSortSelection
	}
	idx := s.ColumnIndex(column)
	if idx < 0 {
		return s.unknownColumn(OpSort, column)
	}
	if s.columns[idx].Type != TypeNumber {
		return ErrSortNotNumber
	}
	slices.SortStableFunc(s.visible, func(a, b Row) int {
		ka, kb := a.Cells[idx].SortKey(), b.Cells[idx].SortKey()
		nanA, nanB := math.IsNaN(ka), math.IsNaN(kb)
		switch {
		case nanA && nanB:
			return 0
		case nanA:
			return 1
		case nanB:
			return -1
		}
		if cond == ConditionGreater {
			return cmp.Compare(kb, ka)
		}
		return cmp.Compare(ka, kb)
	})
	return nil
}

// Search replaces the visible rows with the original rows whose cell in the named
// column has a token containing value, ignoring case.
func (s *Sheet) Search(column, value string) error {
	if column == "" || value == "" {
		return ErrSearchSelection
	}
	idx := s.ColumnIndex(column)
	if idx < 0 {
		return s.unknownColumn(OpSearch, column)
	}
	matched := make([]Row, 0, len(s.original))
	for _, row := range s.original {
		if row.Cells[idx].Contains(value) {
			matched = append(matched, row.Clone())
		}
	}
	s.visible = matched
	return nil
}

// ResetSearch restores the visible rows to exactly the original rows, discarding any
// sort or filter.
func (s *Sheet) ResetSearch() {
	s.visible = cloneRows(s.original)
}

// Filter replaces the visible rows with the original rows accepted by match. When
// match fails on any row nothing changes.
func (s *Sheet) Filter(match RowMatcher) error {
	if match == nil {
		return ErrFilterExpression
	}
	cols := s.Columns()
	matched := make([]Row, 0, len(s.original))
	for i, row := range s.original {
		ok, err := match(cols, row.Clone())
		if err != nil {
			return &Error{Kind: KindExpression, Op: OpFilter, Msg: fmt.Sprintf("Filter failed on row %d: %v", i+1, err), Err: err}
		}
		if ok {
			matched = append(matched, row.Clone())
		}
	}
	s.visible = matched
	return nil
}

func (s *Sheet) unknownColumn(op, name string) error {
	msg := fmt.Sprintf("Column %q does not exist", name)
	if hint := closestName(name, s.ColumnNames()); hint != "" {
		msg = fmt.Sprintf("%s (did you mean %q?)", msg, hint)
	}
	return &Error{Kind: KindUnknownColumn, Op: op, Msg: msg, Err: ErrUnknownColumn}
}

// closestName returns the candidate within edit distance 2 of name, preferring the
// smallest distance and then the earliest column.
func closestName(name string, candidates []string) string {
	best, bestDist := "", 3
	lower := strings.ToLower(name)
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
