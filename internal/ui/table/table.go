package table

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	lgtable "charm.land/lipgloss/v2/table"
	"github.com/mattn/go-runewidth"
)

// Column describes one data column of the grid.
type Column struct {
	Title string
	// Width caps the rendered cell width; 0 uses the model's max cell width.
	Width int
}

// Row is the rendered text of one record, one entry per column.
type Row []string

// chrome is the number of lines the grid draws around the body: top border, header,
// header separator and bottom border.
const chrome = 4

// Model is a generic cell-cursor grid. It keeps typed row values, renders them through
// toRow and tracks a (row, column) cursor that stays inside the data.
//
// Type parameter V is the row value type; keyFunc gives each value a stable identity so
// the cursor can follow a row after the rows are reordered.
type Model[V any] struct {
	rows    []V
	columns []Column

	toRow   func(V) Row
	keyFunc func(V) string

	cursorRow int
	cursorCol int
	offset    int

	width        int
	height       int
	maxCellWidth int
	showIndex    bool
	emptyText    string
	focused      bool
	noColor      bool
	border       lipgloss.Border

	headerFG   color.Color
	headerBG   color.Color
	selectedFG color.Color
	selectedBG color.Color
	rowFG      color.Color
	borderFG   color.Color
	mutedFG    color.Color
}

// NewModel creates a grid with the given columns.
func NewModel[V any](
	columns []Column,
	toRow func(V) Row,
	keyFunc func(V) string,
) *Model[V] {
	return &Model[V]{
		columns:      columns,
		toRow:        toRow,
		keyFunc:      keyFunc,
		width:        80,
		height:       10,
		maxCellWidth: 24,
		showIndex:    true,
		emptyText:    "No Data Available",
		focused:      true,
		border:       lipgloss.RoundedBorder(),
	}
}

// SetRows replaces the row values and clamps the cursor.
func (m *Model[V]) SetRows(rows []V) {
	m.rows = rows
	m.clamp()
}

// SetColumns replaces the column definitions and clamps the cursor.
func (m *Model[V]) SetColumns(columns []Column) {
	m.columns = columns
	m.clamp()
}

// Rows returns the current row values.
func (m *Model[V]) Rows() []V {
	return m.rows
}

// Columns returns the current column definitions.
func (m *Model[V]) Columns() []Column {
	return m.columns
}

// Cursor returns the cursor row.
func (m *Model[V]) Cursor() int {
	return m.cursorRow
}

// CursorColumn returns the cursor column.
func (m *Model[V]) CursorColumn() int {
	return m.cursorCol
}

// SetCursor moves the cursor to (row, col), clamped to the data.
func (m *Model[V]) SetCursor(row, col int) {
	m.cursorRow = row
	m.cursorCol = col
	m.clamp()
}

// MoveUp moves the cursor n rows up.
func (m *Model[V]) MoveUp(n int) { m.SetCursor(m.cursorRow-n, m.cursorCol) }

// MoveDown moves the cursor n rows down.
func (m *Model[V]) MoveDown(n int) { m.SetCursor(m.cursorRow+n, m.cursorCol) }

// MoveLeft moves the cursor one column left.
func (m *Model[V]) MoveLeft() { m.SetCursor(m.cursorRow, m.cursorCol-1) }

// MoveRight moves the cursor one column right.
func (m *Model[V]) MoveRight() { m.SetCursor(m.cursorRow, m.cursorCol+1) }

// GotoTop moves the cursor to the first row.
func (m *Model[V]) GotoTop() { m.SetCursor(0, m.cursorCol) }

// GotoBottom moves the cursor to the last row.
func (m *Model[V]) GotoBottom() { m.SetCursor(len(m.rows)-1, m.cursorCol) }

// SelectByKey moves the cursor to the row whose key matches. It reports whether the
// row was found; the cursor is unchanged otherwise.
func (m *Model[V]) SelectByKey(key string) bool {
	if m.keyFunc == nil {
		return false
	}
	for i, r := range m.rows {
		if m.keyFunc(r) == key {
			m.SetCursor(i, m.cursorCol)
			return true
		}
	}
	return false
}

// SelectedRow returns the row under the cursor, or nil when there are no rows.
func (m *Model[V]) SelectedRow() *V {
	if m.cursorRow < 0 || m.cursorRow >= len(m.rows) {
		return nil
	}
	return &m.rows[m.cursorRow]
}

// SetSize sets the outer dimensions of the grid.
func (m *Model[V]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clamp()
}

// SetHeight updates only the height, preserving the width.
func (m *Model[V]) SetHeight(height int) {
	m.SetSize(m.width, height)
}

// SetMaxCellWidth caps cell text width for columns without their own width.
func (m *Model[V]) SetMaxCellWidth(w int) {
	if w > 0 {
		m.maxCellWidth = w
	}
}

// SetShowIndex toggles the leading 1-based "#" column.
func (m *Model[V]) SetShowIndex(show bool) { m.showIndex = show }

// SetEmptyText sets the text shown in place of the body when there are no rows.
func (m *Model[V]) SetEmptyText(s string) { m.emptyText = s }

// Focus sets the grid focus state.
func (m *Model[V]) Focus() { m.focused = true }

// Blur removes focus; the cursor cell is no longer highlighted.
func (m *Model[V]) Blur() { m.focused = false }

// Focused returns true if the grid has focus.
func (m *Model[V]) Focused() bool { return m.focused }

// SetNoColor enables/disables color output.
func (m *Model[V]) SetNoColor(noColor bool) { m.noColor = noColor }

// SetBorder sets the border drawn around the grid.
func (m *Model[V]) SetBorder(b lipgloss.Border) { m.border = b }

// SetColors sets the header and cursor colors.
func (m *Model[V]) SetColors(headerFG, headerBG, selectedFG, selectedBG color.Color) {
	m.headerFG = headerFG
	m.headerBG = headerBG
	m.selectedFG = selectedFG
	m.selectedBG = selectedBG
}

// SetAccentColors sets the cursor-row text, border and index column colors.
func (m *Model[V]) SetAccentColors(rowFG, borderFG, mutedFG color.Color) {
	m.rowFG = rowFG
	m.borderFG = borderFG
	m.mutedFG = mutedFG
}

// BodyHeight returns how many rows fit in the current height.
func (m *Model[V]) BodyHeight() int {
	return max(1, m.height-chrome)
}

func (m *Model[V]) clamp() {
	if len(m.rows) == 0 {
		m.cursorRow = 0
	} else {
		m.cursorRow = min(max(m.cursorRow, 0), len(m.rows)-1)
	}
	if len(m.columns) == 0 {
		m.cursorCol = 0
	} else {
		m.cursorCol = min(max(m.cursorCol, 0), len(m.columns)-1)
	}

	body := m.BodyHeight()
	if m.cursorRow < m.offset {
		m.offset = m.cursorRow
	}
	if m.cursorRow >= m.offset+body {
		m.offset = m.cursorRow - body + 1
	}
	m.offset = max(0, min(m.offset, len(m.rows)-body))
}

// Update handles plain navigation keys for standalone use. Callers with their own
// bindings drive the Move methods directly.
func (m *Model[V]) Update(msg tea.Msg) (*Model[V], tea.Cmd) {
	km, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "up":
		m.MoveUp(1)
	case "down":
		m.MoveDown(1)
	case "left":
		m.MoveLeft()
	case "right":
		m.MoveRight()
	case "pgup":
		m.MoveUp(m.BodyHeight())
	case "pgdown":
		m.MoveDown(m.BodyHeight())
	case "home":
		m.GotoTop()
	case "end":
		m.GotoBottom()
	}
	return m, nil
}

func (m *Model[V]) cellWidth(col int) int {
	if col >= 0 && col < len(m.columns) && m.columns[col].Width > 0 {
		return m.columns[col].Width
	}
	return m.maxCellWidth
}

func truncate(s string, w int) string {
	if w <= 0 || runewidth.StringWidth(s) <= w {
		return s
	}
	return runewidth.Truncate(s, w, "…")
}

// View renders the header and the visible window of rows.
func (m *Model[V]) View() string {
	headers := make([]string, 0, len(m.columns)+1)
	if m.showIndex {
		headers = append(headers, "#")
	}
	for j, c := range m.columns {
		headers = append(headers, truncate(c.Title, m.cellWidth(j)))
	}

	end := min(len(m.rows), m.offset+m.BodyHeight())
	body := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		cells := m.toRow(m.rows[i])
		line := make([]string, 0, len(headers))
		if m.showIndex {
			line = append(line, strconv.Itoa(i+1))
		}
		for j := range m.columns {
			text := ""
			if j < len(cells) {
				text = cells[j]
			}
			line = append(line, truncate(text, m.cellWidth(j)))
		}
		body = append(body, line)
	}

	out := m.render(headers, body, 0)
	if m.width > 0 && lipgloss.Width(out) > m.width {
		out = m.render(headers, body, m.width)
	}
	if len(m.rows) == 0 && m.emptyText != "" {
		empty := lipgloss.NewStyle().Italic(!m.noColor)
		if !m.noColor && m.mutedFG != nil {
			empty = empty.Foreground(m.mutedFG)
		}
		out = lipgloss.JoinVertical(lipgloss.Left, out, " "+empty.Render(m.emptyText))
	}
	return out
}

func (m *Model[V]) render(headers []string, body [][]string, width int) string {
	indexShift := 0
	if m.showIndex {
		indexShift = 1
	}
	base := lipgloss.NewStyle().Padding(0, 1)
	header := base.Bold(true)
	selected := base
	cursorRow := base
	index := base
	border := lipgloss.NewStyle()
	if m.noColor {
		selected = selected.Reverse(true)
	} else {
		if m.headerFG != nil {
			header = header.Foreground(m.headerFG)
		}
		if m.headerBG != nil {
			header = header.Background(m.headerBG)
		}
		if m.selectedFG != nil {
			selected = selected.Foreground(m.selectedFG)
		}
		if m.selectedBG != nil {
			selected = selected.Background(m.selectedBG)
		} else {
			selected = selected.Reverse(true)
		}
		if m.rowFG != nil {
			cursorRow = cursorRow.Foreground(m.rowFG)
		}
		if m.mutedFG != nil {
			index = index.Foreground(m.mutedFG)
		}
		if m.borderFG != nil {
			border = border.Foreground(m.borderFG)
		}
	}

	t := lgtable.New().
		Border(m.border).
		BorderStyle(border).
		Headers(headers...).
		Rows(body...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return header
			}
			isCursorRow := m.offset+row == m.cursorRow
			switch {
			case m.focused && isCursorRow && col-indexShift == m.cursorCol:
				return selected
			case m.showIndex && col == 0:
				return index
			case isCursorRow:
				return cursorRow
			default:
				return base
			}
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t.String()
}

// Height returns the rendered height of the grid.
func (m *Model[V]) Height() int {
	return lipgloss.Height(m.View())
}

// Width returns the rendered width of the grid.
func (m *Model[V]) Width() int {
	return lipgloss.Width(m.View())
}

// String returns a string representation for debugging.
func (m *Model[V]) String() string {
	titles := make([]string, len(m.columns))
	for i, c := range m.columns {
		titles[i] = c.Title
	}
	return fmt.Sprintf("Grid[rows=%d, columns=[%s], cursor=(%d,%d), offset=%d]",
		len(m.rows), strings.Join(titles, ","), m.cursorRow, m.cursorCol, m.offset)
}
