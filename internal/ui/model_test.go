package ui

import (
	"os"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/dyntable/internal/sheet"
)

// TestMain stubs the clipboard so that no test in the ui package can touch the real one.
func TestMain(m *testing.M) {
	restore := StubPlatformActions(nil)
	code := m.Run()
	restore()
	os.Exit(code)
}

func scoreSheet(t *testing.T, scores ...string) *sheet.Sheet {
	t.Helper()
	s := sheet.New()
	require.NoError(t, s.AddColumn("Name", sheet.TypeString))
	require.NoError(t, s.AddColumn("Score", sheet.TypeNumber))
	names := []string{"alice", "bob", "carol", "dan", "erin"}
	for i, score := range scores {
		_, err := s.AppendRow(names[i%len(names)], score)
		require.NoError(t, err)
	}
	return s
}

func runKeys(s *sheet.Sheet, keys ...string) *Model {
	return SnapshotModel(s, SnapshotConfig{Width: 100, Height: 30, NoColor: true, StartKeys: keys})
}

func visibleColumn(s *sheet.Sheet, col int) []string {
	var out []string
	for _, r := range s.Visible() {
		out = append(out, r.Cells[col].String())
	}
	return out
}

func TestModel_InitialRenderShowsEmptyTable(t *testing.T) {
	out := ansi.Strip(RenderSnapshot(nil, SnapshotConfig{Width: 80, Height: 20, NoColor: true}))
	assert.Contains(t, out, "dyntable")
	assert.Contains(t, out, "Columns: 0  Rows: 0")
	assert.Contains(t, out, "No Data Available")
	assert.Len(t, strings.Split(out, "\n"), 20)
}

func TestModel_AddColumnThroughForm(t *testing.T) {
	s := sheet.New()
	m := runKeys(s, "c", "Score", "<Tab>", "<Right>", "<CR>")

	require.Equal(t, []sheet.Column{{Name: "Score", Type: sheet.TypeNumber}}, s.Columns())
	assert.False(t, m.Form.Open(), "form should close after a successful add")
	assert.Empty(t, m.ColumnName, "column name input resets after add")
	assert.Equal(t, sheet.TypeString, m.ColumnType)
	assert.Contains(t, ansi.Strip(m.Render()), "Score (Number)")
}

func TestModel_AddColumnWithoutNameKeepsFormOpen(t *testing.T) {
	s := sheet.New()
	m := runKeys(s, "c", "<CR>")

	assert.Equal(t, 0, s.ColumnCount())
	assert.True(t, m.Form.Open())
	assert.Equal(t, LevelError, m.Notice.Level)
	assert.Equal(t, sheet.ErrColumnNameRequired.Msg, m.Notice.Message)
}

func TestModel_EleventhColumnIsANotice(t *testing.T) {
	s := sheet.New()
	for i := 0; i < sheet.MaxColumns; i++ {
		require.NoError(t, s.AddColumn(string(rune('A'+i)), sheet.TypeString))
	}
	m := runKeys(s, "c", "K", "<CR>")

	assert.Equal(t, sheet.MaxColumns, s.ColumnCount())
	assert.Equal(t, LevelNotice, m.Notice.Level)
	assert.Equal(t, "You can add a maximum of 10 columns!", m.Notice.Message)
	assert.Contains(t, ansi.Strip(m.Render()), "You can add a maximum of 10 columns!")
}

func TestModel_DeleteLastColumnIsRejected(t *testing.T) {
	s := sheet.New()
	require.NoError(t, s.AddColumn("Only", sheet.TypeString))
	m := runKeys(s, "X")

	assert.Equal(t, 1, s.ColumnCount())
	assert.Equal(t, LevelNotice, m.Notice.Level)
	assert.Equal(t, "There should be at least 1 column!", m.Notice.Message)
}

func TestModel_DeleteColumnWithNoColumns(t *testing.T) {
	m := runKeys(sheet.New(), "X")
	assert.Equal(t, LevelError, m.Notice.Level)
	assert.Equal(t, "There are no columns to delete.", m.Notice.Message)
}

func TestModel_DeleteColumnAtCursor(t *testing.T) {
	s := scoreSheet(t, "1", "2")
	m := runKeys(s, "l", "X")

	require.Equal(t, []sheet.Column{{Name: "Name", Type: sheet.TypeString}}, s.Columns())
	assert.Empty(t, m.Notice.Message)
	for _, r := range s.Visible() {
		assert.Len(t, r.Cells, 1)
	}
}

func TestModel_AddAndDeleteRows(t *testing.T) {
	s := scoreSheet(t, "1", "2")
	m := runKeys(s, "a")
	require.Equal(t, 3, s.RowCount())
	assert.Equal(t, 2, m.Grid.Cursor(), "new row is selected")

	m = runKeys(s, "g", "x")
	assert.Equal(t, 2, s.RowCount())
	assert.Equal(t, []string{"2", ""}, visibleColumn(s, 1))
	assert.Empty(t, m.Notice.Message)
}

func TestModel_DeleteRowOnEmptyTable(t *testing.T) {
	s := scoreSheet(t)
	m := runKeys(s, "x")
	assert.Equal(t, LevelError, m.Notice.Level)
	assert.Equal(t, "Row 1 does not exist", m.Notice.Message)
}

func TestModel_EditCellRejectsNonNumber(t *testing.T) {
	s := scoreSheet(t, "1")
	m := runKeys(s, "l", "e", "<BS>", "abc", "<CR>")

	require.True(t, m.Form.Open(), "editor stays open on invalid input")
	assert.Equal(t, FormEditCell, m.Form.Kind)
	assert.Equal(t, LevelError, m.Notice.Level)
	assert.Equal(t, "Invalid input for Number in column 2", m.Notice.Message)
	assert.Equal(t, []string{"1"}, visibleColumn(s, 1))
}

func TestModel_EditCellStoresTokens(t *testing.T) {
	s := scoreSheet(t, "")
	m := runKeys(s, "l", "e", "4, 5", "<CR>")

	assert.False(t, m.Form.Open())
	assert.Equal(t, []string{"4,5"}, visibleColumn(s, 1))
	// Edits only touch the visible rows.
	assert.Equal(t, "", s.Original()[0].Cells[1].String())
}

func TestModel_EditCellTitleNamesColumn(t *testing.T) {
	m := runKeys(scoreSheet(t, "7"), "e")
	require.True(t, m.Form.Open())
	assert.Equal(t, "Edit row 1, column 1: Name (String)", m.Form.Title)
	assert.Equal(t, "alice", m.Form.Value(0))
}

func TestModel_EditCellWithoutCells(t *testing.T) {
	m := runKeys(sheet.New(), "e")
	assert.False(t, m.Form.Open())
	assert.Equal(t, "Add a row and a column before editing cells.", m.Notice.Message)
}

func TestModel_SortGreaterAndLess(t *testing.T) {
	s := scoreSheet(t, "1", "3", "2")

	m := runKeys(s, "s", "<Right>", "<Tab>", "<Right>", "<CR>")
	assert.False(t, m.Form.Open())
	assert.Equal(t, []string{"3", "2", "1"}, visibleColumn(s, 1))
	assert.Equal(t, "Score", m.SortColumn)
	assert.Equal(t, sheet.ConditionGreater, m.SortCondition)

	runKeys(s, "s", "<Right>", "<Tab>", "<Right>", "<Right>", "<CR>")
	assert.Equal(t, []string{"1", "2", "3"}, visibleColumn(s, 1))
}

func TestModel_SortWithoutSelection(t *testing.T) {
	s := scoreSheet(t, "1", "3")
	m := runKeys(s, "s", "<CR>")

	assert.True(t, m.Form.Open())
	assert.Equal(t, "Please select a column and sorting condition!", m.Notice.Message)
	assert.Equal(t, []string{"1", "3"}, visibleColumn(s, 1))
}

func TestModel_SortOffersOnlyNumberColumns(t *testing.T) {
	m := runKeys(scoreSheet(t, "1"), "s")
	require.True(t, m.Form.Open())
	assert.Equal(t, []string{"Score"}, m.Form.Fields[0].Options)
	assert.Equal(t, []string{"Greater than or equal to", "Less than or equal to"}, m.Form.Fields[1].Labels)
}

func TestModel_SearchAndReset(t *testing.T) {
	s := scoreSheet(t, "1", "2", "3")

	m := runKeys(s, "/", "<Right>", "<Tab>", "AR", "<CR>")
	assert.False(t, m.Form.Open())
	assert.True(t, m.Filtered)
	assert.Equal(t, []string{"carol"}, visibleColumn(s, 0))
	out := ansi.Strip(m.Render())
	assert.Contains(t, out, "Shown: 1")
	assert.Contains(t, out, "filtered  1/1")

	m.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	assert.False(t, m.Filtered)
	assert.Empty(t, m.SearchValue)
	assert.Equal(t, []string{"alice", "bob", "carol"}, visibleColumn(s, 0))
}

func TestModel_SearchRequiresValue(t *testing.T) {
	s := scoreSheet(t, "1")
	m := runKeys(s, "/", "<Right>", "<CR>")

	assert.True(t, m.Form.Open())
	assert.Equal(t, "Please select a column and enter a search value!", m.Notice.Message)
	assert.False(t, m.Filtered)
}

func TestModel_CancelKeepsInputs(t *testing.T) {
	s := scoreSheet(t, "1")
	m := runKeys(s, "/", "<Right>", "<Tab>", "bo", "<Esc>")

	assert.False(t, m.Form.Open())
	assert.Equal(t, "Name", m.SearchColumn)
	assert.Equal(t, "bo", m.SearchValue)

	m.Update(tea.KeyPressMsg{Code: '/', Text: "/"})
	require.True(t, m.Form.Open())
	assert.Equal(t, "Name", m.Form.Value(0))
	assert.Equal(t, "bo", m.Form.Value(1))
}

func TestModel_FilterWithCEL(t *testing.T) {
	s := scoreSheet(t, "1", "5", "9")
	m := runKeys(s, "f", `row["Score"].exists(n, n > 4.0)`, "<CR>")

	require.False(t, m.Form.Open(), "notice: %s", m.Notice.Message)
	assert.True(t, m.Filtered)
	assert.Equal(t, []string{"5", "9"}, visibleColumn(s, 1))
}

func TestModel_FilterRejectsBadExpression(t *testing.T) {
	s := scoreSheet(t, "1")
	m := runKeys(s, "f", "row[", "<CR>")

	assert.True(t, m.Form.Open())
	assert.Equal(t, LevelError, m.Notice.Level)
	assert.NotEmpty(t, m.Notice.Message)
	assert.False(t, m.Filtered)
}

func TestModel_CopyCell(t *testing.T) {
	var copied []string
	restore := StubPlatformActions(&copied)
	defer restore()

	m := runKeys(scoreSheet(t, "1, 2"), "l", "y")
	assert.Equal(t, []string{"1,2"}, copied)
	assert.Equal(t, LevelSuccess, m.Notice.Level)
	assert.Equal(t, `Copied "1,2"`, m.Notice.Message)
}

func TestModel_NotificationExpiresByID(t *testing.T) {
	m := runKeys(sheet.New(), "X")
	require.NotEmpty(t, m.Notice.Message)
	first := m.Notice.ID

	m.Update(tea.KeyPressMsg{Code: 'X', Text: "X"})
	require.Greater(t, m.Notice.ID, first)

	m.Update(notificationExpiredMsg{ID: first})
	assert.NotEmpty(t, m.Notice.Message, "a stale tick must not clear a newer notice")

	m.Update(notificationExpiredMsg{ID: m.Notice.ID})
	assert.Empty(t, m.Notice.Message)
}

func TestModel_NotifySchedulesExpiry(t *testing.T) {
	m := InitialModel(nil)
	assert.NotNil(t, m.notify(LevelError, "boom"))

	m.NotifyDuration = 0
	assert.Nil(t, m.notify(LevelError, "sticky"))
}

func TestModel_HelpIsModal(t *testing.T) {
	s := scoreSheet(t, "1")
	m := runKeys(s, "?")
	require.True(t, m.HelpVisible)
	out := ansi.Strip(m.Render())
	assert.Contains(t, out, "Keys")
	assert.Contains(t, out, "Add column")
	assert.Contains(t, out, "Help: press ? or Esc to close")

	// Action keys are ignored while help is shown.
	m.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	assert.Equal(t, 1, s.RowCount())

	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.False(t, m.HelpVisible)
}

func TestModel_QuitKeys(t *testing.T) {
	m := InitialModel(nil)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m.Update(tea.KeyPressMsg{Code: 'c', Text: "c"})
	require.True(t, m.Form.Open())
	_, cmd = m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_ForcedWindowSizeIgnoresResize(t *testing.T) {
	m := InitialModel(nil)
	m.ForceWindowSize = true
	m.DesiredWinWidth = 90
	m.DesiredWinHeight = 20
	m.Update(tea.WindowSizeMsg{Width: 200, Height: 60})
	assert.Equal(t, 90, m.WinWidth)
	assert.Equal(t, 20, m.WinHeight)

	m.ForceWindowSize = false
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.WinWidth)
	assert.Equal(t, 40, m.WinHeight)
}

func TestModel_DebugEventsAreCapped(t *testing.T) {
	m := SnapshotModel(sheet.New(), SnapshotConfig{
		Width: 100, Height: 30, NoColor: true,
		Configure: func(m *Model) {
			m.DebugMode = true
			m.MaxDebugEvents = 3
		},
		StartKeys: []string{"a", "a", "a", "a", "a"},
	})
	require.Len(t, m.DebugEvents, 3)
	assert.Contains(t, m.DebugEvents[2].Message, "rows=5")
	assert.Contains(t, ansi.Strip(m.Render()), "DBG: win=100x30")
}

func TestModel_RenderFitsWindowHeight(t *testing.T) {
	s := scoreSheet(t, "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12")
	for _, keys := range [][]string{nil, {"c"}, {"?"}} {
		m := SnapshotModel(s, SnapshotConfig{Width: 80, Height: 18, NoColor: true, StartKeys: keys})
		lines := strings.Split(m.Render(), "\n")
		assert.LessOrEqual(t, len(lines), 18, "keys %v", keys)
	}
}

func TestModel_CursorFollowsRowAfterSort(t *testing.T) {
	s := scoreSheet(t, "1", "3", "2")
	m := runKeys(s, "G")
	require.Equal(t, 2, m.Grid.Cursor())
	selected := m.Grid.SelectedRow()
	require.NotNil(t, selected)
	id := selected.ID

	m.Update(tea.KeyPressMsg{Code: 's', Text: "s"})
	for _, k := range []tea.KeyPressMsg{
		{Code: tea.KeyRight}, {Code: tea.KeyTab}, {Code: tea.KeyRight}, {Code: tea.KeyEnter},
	} {
		m.Update(k)
	}
	require.NotNil(t, m.Grid.SelectedRow())
	assert.Equal(t, id, m.Grid.SelectedRow().ID)
	assert.Equal(t, 1, m.Grid.Cursor())
}
