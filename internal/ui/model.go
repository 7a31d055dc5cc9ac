package ui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/oakwood-commons/dyntable/internal/cel"
	"github.com/oakwood-commons/dyntable/internal/sheet"
	"github.com/oakwood-commons/dyntable/internal/ui/table"
)

// DefaultNotifyDuration is how long a notification stays on the status line.
const DefaultNotifyDuration = 3 * time.Second

// Model is the Bubble Tea model of the table widget. It owns one sheet and the state of
// every control bound to it.
type Model struct {
	Sheet *sheet.Sheet
	Eval  *cel.Evaluator
	Grid  *table.Model[sheet.Row]

	Keys    KeyMap
	KeyMode KeyMode

	Form   FormModel
	Status StatusModel
	Footer FooterModel
	Help   HelpModel
	Debug  DebugModel

	AppName          string
	AboutLines       []string
	NoColor          bool
	WinWidth         int
	WinHeight        int
	ForceWindowSize  bool
	DesiredWinWidth  int
	DesiredWinHeight int
	MaxCellWidth     int
	NotifyDuration   time.Duration
	HelpVisible      bool
	DebugMode        bool
	MaxDebugEvents   int
	DebugEvents      []DebugEvent
	LastKey          string

	// Control inputs persist between form openings. The column inputs reset after a
	// successful add.
	ColumnName    string
	ColumnType    sheet.ColumnType
	SortColumn    string
	SortCondition sheet.Condition
	SearchColumn  string
	SearchValue   string
	FilterExpr    string

	// Filtered is set while the visible rows come from a search or filter.
	Filtered bool

	Notice    Notification
	notifySeq int
}

func rowCells(r sheet.Row) table.Row {
	out := make(table.Row, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.String()
	}
	return out
}

func rowID(r sheet.Row) string { return r.ID }

// InitialModel creates a model over s. A nil sheet starts empty.
func InitialModel(s *sheet.Sheet) Model {
	if s == nil {
		s = sheet.New()
	}
	keys := DefaultKeyMap()
	m := Model{
		Sheet:          s,
		Grid:           table.NewModel[sheet.Row](nil, rowCells, rowID),
		Keys:           keys,
		KeyMode:        DefaultKeyMode,
		Form:           NewFormModel(),
		Status:         NewStatusModel(),
		Footer:         NewFooterModel(),
		Help:           NewHelpModel(),
		Debug:          NewDebugModel(),
		AppName:        "dyntable",
		WinWidth:       80,
		WinHeight:      24,
		MaxCellWidth:   24,
		NotifyDuration: DefaultNotifyDuration,
		MaxDebugEvents: DefaultMaxDebugEvents,
		ColumnType:     sheet.TypeString,
	}
	m.syncGrid()
	m.ApplyColorScheme()
	m.syncAllComponents()
	return m
}

// SetKeyMap replaces the key bindings used by the model, footer and help overlay.
func (m *Model) SetKeyMap(mode KeyMode, keys KeyMap) {
	m.KeyMode = mode
	m.Keys = keys
	m.Footer.Keys = keys
	m.Help.Keys = keys
	m.Help.KeyMode = mode
}

// ApplyColorScheme pushes the current theme into the grid.
func (m *Model) ApplyColorScheme() {
	th := CurrentTheme()
	m.Grid.SetNoColor(m.NoColor)
	m.Grid.SetBorder(borderForStyle(th.BorderStyle))
	if m.NoColor {
		m.Grid.SetColors(nil, nil, nil, nil)
		m.Grid.SetAccentColors(nil, nil, nil)
		return
	}
	m.Grid.SetColors(th.HeaderFG, th.HeaderBG, th.SelectedFG, th.SelectedBG)
	m.Grid.SetAccentColors(th.RowFG, th.SeparatorColor, th.MutedColor)
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// syncGrid reloads columns and visible rows from the sheet, keeping the cursor on the
// same row when it is still visible.
func (m *Model) syncGrid() {
	key := ""
	if r := m.Grid.SelectedRow(); r != nil {
		key = r.ID
	}
	cols := m.Sheet.Columns()
	gridCols := make([]table.Column, len(cols))
	for i, c := range cols {
		gridCols[i] = table.Column{Title: fmt.Sprintf("%s (%s)", c.Name, c.Type)}
	}
	m.Grid.SetColumns(gridCols)
	m.Grid.SetRows(m.Sheet.Visible())
	if key != "" {
		m.Grid.SelectByKey(key)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Keep View() free of mutations.
	defer m.syncAllComponents()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		targetW := msg.Width
		targetH := msg.Height
		if m.ForceWindowSize {
			if m.DesiredWinWidth > 0 {
				targetW = m.DesiredWinWidth
			}
			if m.DesiredWinHeight > 0 {
				targetH = m.DesiredWinHeight
			}
		}
		if m.WinWidth == targetW && m.WinHeight == targetH {
			return m, nil
		}
		m.WinWidth = targetW
		m.WinHeight = targetH
		return m, nil

	case notificationExpiredMsg:
		if msg.ID == m.Notice.ID {
			m.Notice = Notification{}
		}
		return m, nil

	case tea.KeyMsg:
		keyStr := msg.String()
		m.LastKey = keyStr
		m.logKeyEvent(keyStr)

		// Help is modal: close with its own keys or esc, quit with ctrl+c.
		if m.HelpVisible {
			switch {
			case keyStr == "ctrl+c":
				return m, tea.Quit
			case keyStr == "esc", m.Keys.Action(keyStr) == ActionHelp:
				m.HelpVisible = false
			}
			return m, nil
		}

		if m.Form.Open() {
			switch keyStr {
			case "esc":
				m.cancelForm()
				return m, nil
			case "enter":
				return m, m.submitForm()
			case "ctrl+c":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.Form, cmd = m.Form.Update(msg)
			return m, cmd
		}

		return m, m.handleAction(m.Keys.Action(keyStr))
	}

	if m.Form.Open() {
		var cmd tea.Cmd
		m.Form, cmd = m.Form.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleAction runs the action bound to a key while no form is open.
func (m *Model) handleAction(action Action) tea.Cmd {
	switch action {
	case ActionNone:
		return nil
	case ActionUp:
		m.Grid.MoveUp(1)
	case ActionDown:
		m.Grid.MoveDown(1)
	case ActionLeft:
		m.Grid.MoveLeft()
	case ActionRight:
		m.Grid.MoveRight()
	case ActionTop:
		m.Grid.GotoTop()
	case ActionBottom:
		m.Grid.GotoBottom()
	case ActionPageUp:
		m.Grid.MoveUp(m.Grid.BodyHeight())
	case ActionPageDown:
		m.Grid.MoveDown(m.Grid.BodyHeight())
	case ActionAddRow:
		row := m.Sheet.AddRow()
		m.logEvent(sheet.OpAddRow)
		m.syncGrid()
		m.Grid.SelectByKey(row.ID)
	case ActionDeleteRow:
		return m.apply(sheet.OpDeleteRow, m.Sheet.DeleteRow(m.Grid.Cursor()))
	case ActionDeleteColumn:
		if m.Sheet.ColumnCount() == 0 {
			return m.notify(LevelError, "There are no columns to delete.")
		}
		return m.apply(sheet.OpDeleteColumn, m.Sheet.DeleteColumn(m.Grid.CursorColumn()))
	case ActionResetSearch:
		m.SearchColumn = ""
		m.SearchValue = ""
		m.Sheet.ResetSearch()
		m.Filtered = false
		m.logEvent(sheet.OpResetSearch)
		m.syncGrid()
	case ActionAddColumn, ActionSort, ActionSearch, ActionFilter, ActionEditCell:
		return m.openForm(action)
	case ActionCopy:
		return m.copyCell()
	case ActionHelp:
		m.HelpVisible = true
	case ActionQuit:
		return tea.Quit
	}
	return nil
}

// apply reports the outcome of a sheet operation: a rejected operation becomes a
// notification, an accepted one refreshes the grid.
func (m *Model) apply(op string, err error) tea.Cmd {
	if err != nil {
		m.logEvent(fmt.Sprintf("%s rejected: %v", op, err))
		level := LevelError
		if sheet.IsNotice(err) {
			level = LevelNotice
		}
		return m.notify(level, err.Error())
	}
	m.logEvent(op)
	m.syncGrid()
	return nil
}

// notify shows msg on the status line and schedules its expiry.
func (m *Model) notify(level NotifyLevel, msg string) tea.Cmd {
	m.notifySeq++
	m.Notice = Notification{ID: m.notifySeq, Level: level, Message: msg}
	if m.NotifyDuration <= 0 {
		return nil
	}
	return expireNotification(m.notifySeq, m.NotifyDuration)
}

func (m *Model) openForm(action Action) tea.Cmd {
	f := NewFormModel()
	f.NoColor = m.NoColor
	f.Width = m.WinWidth

	switch action {
	case ActionAddColumn:
		types := make([]string, len(sheet.ColumnTypes))
		for i, t := range sheet.ColumnTypes {
			types[i] = string(t)
		}
		colType := m.ColumnType
		if colType == "" {
			colType = sheet.TypeString
		}
		f.Kind = FormColumn
		f.Title = "Add Column"
		f.Fields = []FormField{
			newTextField("Column Name", "Enter column name", m.ColumnName),
			newSelectField("Type", "Select type", types, nil, string(colType)),
		}
	case ActionSort:
		conds := make([]string, len(sheet.Conditions))
		labels := make([]string, len(sheet.Conditions))
		for i, c := range sheet.Conditions {
			conds[i] = string(c)
			labels[i] = c.Label()
		}
		f.Kind = FormSort
		f.Title = "Sort Data"
		f.Fields = []FormField{
			newSelectField("Column", "Select column", m.Sheet.NumberColumns(), nil, m.SortColumn),
			newSelectField("Condition", "Select condition", conds, labels, string(m.SortCondition)),
		}
	case ActionSearch:
		f.Kind = FormSearch
		f.Title = "Search"
		f.Fields = []FormField{
			newSelectField("Column", "Select column", m.Sheet.ColumnNames(), nil, m.SearchColumn),
			newTextField("Value", "Search value", m.SearchValue),
		}
	case ActionFilter:
		f.Kind = FormFilter
		f.Title = "Filter rows (CEL)"
		f.Fields = []FormField{
			newTextField("Expression", `row["Name"].exists(t, t.contains("an"))`, m.FilterExpr),
		}
	case ActionEditCell:
		row, col := m.Grid.Cursor(), m.Grid.CursorColumn()
		cell, ok := m.Sheet.Cell(row, col)
		if !ok {
			return m.notify(LevelError, "Add a row and a column before editing cells.")
		}
		column := m.Sheet.Columns()[col]
		f.Kind = FormEditCell
		f.Title = fmt.Sprintf("Edit row %d, column %d: %s (%s)", row+1, col+1, column.Name, column.Type)
		f.Fields = []FormField{
			newTextField("Value", "comma separated values", cell.String()),
		}
	default:
		return nil
	}

	m.Form = f
	m.logEvent("open:" + f.Kind.String())
	return m.Form.focusField(0)
}

// saveFormInputs copies the open form's values into the persistent control inputs.
func (m *Model) saveFormInputs() {
	switch m.Form.Kind {
	case FormColumn:
		m.ColumnName = m.Form.Value(0)
		m.ColumnType = sheet.ColumnType(m.Form.Value(1))
	case FormSort:
		m.SortColumn = m.Form.Value(0)
		m.SortCondition = sheet.Condition(m.Form.Value(1))
	case FormSearch:
		m.SearchColumn = m.Form.Value(0)
		m.SearchValue = m.Form.Value(1)
	case FormFilter:
		m.FilterExpr = m.Form.Value(0)
	}
}

func (m *Model) cancelForm() {
	m.saveFormInputs()
	m.logEvent("cancel:" + m.Form.Kind.String())
	m.Form.Close()
}

// submitForm runs the operation behind the open form. A rejected operation keeps the
// form open so the input can be corrected.
func (m *Model) submitForm() tea.Cmd {
	m.saveFormInputs()

	var (
		op  string
		err error
	)
	switch m.Form.Kind {
	case FormColumn:
		op = sheet.OpAddColumn
		err = m.Sheet.AddColumn(m.ColumnName, m.ColumnType)
		if err == nil {
			m.ColumnName = ""
			m.ColumnType = sheet.TypeString
		}
	case FormSort:
		op = sheet.OpSort
		err = m.Sheet.Sort(m.SortColumn, m.SortCondition)
	case FormSearch:
		op = sheet.OpSearch
		err = m.Sheet.Search(m.SearchColumn, m.SearchValue)
		if err == nil {
			m.Filtered = true
		}
	case FormFilter:
		op = sheet.OpFilter
		err = m.runFilter(m.FilterExpr)
		if err == nil {
			m.Filtered = true
		}
	case FormEditCell:
		op = sheet.OpEditCell
		err = m.Sheet.EditCell(m.Grid.Cursor(), m.Grid.CursorColumn(), m.Form.Value(0))
	default:
		return nil
	}

	if err != nil {
		return m.apply(op, err)
	}
	m.Form.Close()
	cmd := m.apply(op, nil)
	if op == sheet.OpAddColumn {
		m.Grid.SetCursor(m.Grid.Cursor(), m.Sheet.ColumnCount()-1)
	}
	return cmd
}

func (m *Model) runFilter(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return sheet.ErrFilterExpression
	}
	if m.Eval == nil {
		ev, err := cel.NewEvaluator()
		if err != nil {
			return fmt.Errorf("create CEL evaluator: %w", err)
		}
		m.Eval = ev
	}
	match, err := m.Eval.Matcher(expr)
	if err != nil {
		return err
	}
	return m.Sheet.Filter(match)
}

func (m *Model) copyCell() tea.Cmd {
	cell, ok := m.Sheet.Cell(m.Grid.Cursor(), m.Grid.CursorColumn())
	if !ok {
		return m.notify(LevelError, "Nothing to copy.")
	}
	text := cell.String()
	if err := CopyToClipboard(text); err != nil {
		m.logEvent(fmt.Sprintf("copy failed: %v", err))
		return m.notify(LevelError, fmt.Sprintf("Copy failed: %v", err))
	}
	m.logEvent("copy")
	return m.notify(LevelSuccess, fmt.Sprintf("Copied %q", text))
}

// logEvent captures a debug event snapshot for later printing on exit.
func (m *Model) logEvent(label string) {
	entry := fmt.Sprintf("%s | cols=%d rows=%d shown=%d orig=%d cursor=(%d,%d) form=%s filtered=%v",
		label, m.Sheet.ColumnCount(), m.Sheet.RowCount(), m.Sheet.VisibleLen(), len(m.Sheet.Original()),
		m.Grid.Cursor(), m.Grid.CursorColumn(), m.Form.Kind, m.Filtered)
	m.DebugEvents = append(m.DebugEvents, DebugEvent{Time: time.Now(), Message: entry})
	limit := m.MaxDebugEvents
	if limit <= 0 {
		limit = DefaultMaxDebugEvents
	}
	if len(m.DebugEvents) > limit {
		m.DebugEvents = m.DebugEvents[len(m.DebugEvents)-limit:]
	}
}

// logKeyEvent records keys that trigger something.
func (m *Model) logKeyEvent(keyStr string) {
	switch {
	case keyStr == "enter", keyStr == "esc":
		m.logEvent("key:" + keyStr)
	case !m.Form.Open() && m.Keys.Action(keyStr) != ActionNone:
		m.logEvent("key:" + keyStr)
	}
}

// layoutHeights returns the heights of the title, form, grid and bottom bars.
func (m *Model) layoutHeights() (formH, gridH int) {
	if m.Form.Open() {
		formH = lipgloss.Height(m.Form.View())
	}
	fixed := 3 // title, status, footer
	if m.DebugMode {
		fixed++
	}
	gridH = max(m.WinHeight-fixed-formH, 5)
	return formH, gridH
}

// syncAllComponents pushes model state into the child components.
func (m *Model) syncAllComponents() {
	width := m.WinWidth
	if width <= 0 {
		width = 80
	}
	m.Grid.SetMaxCellWidth(m.MaxCellWidth)
	m.Form.NoColor = m.NoColor
	m.Form.SetWidth(width)
	_, gridH := m.layoutHeights()
	m.Grid.SetSize(width, gridH)
	if m.Form.Open() {
		m.Grid.Blur()
	} else {
		m.Grid.Focus()
	}

	m.Status.SetWidth(width)
	m.Status.NoColor = m.NoColor
	m.Status.Notice = m.Notice
	m.Status.HelpVisible = m.HelpVisible
	m.Status.Filtered = m.Filtered
	m.Status.TotalRows = m.Sheet.VisibleLen()
	m.Status.CursorIndex = 0
	if m.Sheet.VisibleLen() > 0 {
		m.Status.CursorIndex = m.Grid.Cursor() + 1
	}

	m.Footer.SetWidth(width)
	m.Footer.NoColor = m.NoColor
	m.Footer.FormOpen = m.Form.Open()

	m.Help.SetWidth(width)
	m.Help.NoColor = m.NoColor
	m.Help.SetVisible(m.HelpVisible)
	m.Help.AboutTitle = m.AppName
	m.Help.AboutLines = m.AboutLines

	m.Debug.SetWidth(width)
	m.Debug.NoColor = m.NoColor
	m.Debug.SetVisible(m.DebugMode)
	if m.DebugMode {
		m.Debug.UpdateDebugInfo(DebugInfo{
			WinWidth:   m.WinWidth,
			WinHeight:  m.WinHeight,
			GridHeight: gridH,
			Columns:    m.Sheet.ColumnCount(),
			RowCount:   m.Sheet.RowCount(),
			Shown:      m.Sheet.VisibleLen(),
			Original:   len(m.Sheet.Original()),
			CursorRow:  m.Grid.Cursor(),
			CursorCol:  m.Grid.CursorColumn(),
			Form:       m.Form.Kind,
			LastKey:    m.LastKey,
		})
	}
}

func (m *Model) titleView() string {
	width := m.WinWidth
	if width <= 0 {
		width = 80
	}
	name := strings.TrimSpace(m.AppName)
	if name == "" {
		name = "dyntable"
	}
	counters := fmt.Sprintf("Columns: %d  Rows: %d", m.Sheet.ColumnCount(), m.Sheet.RowCount())
	if m.Filtered {
		counters += fmt.Sprintf("  Shown: %d", m.Sheet.VisibleLen())
	}
	gap := max(width-lipgloss.Width(name)-lipgloss.Width(counters)-2, 2)
	line := " " + name + strings.Repeat(" ", gap) + counters + " "
	line = ansi.Truncate(line, width, "…")

	style := lipgloss.NewStyle().Bold(true)
	if !m.NoColor {
		th := CurrentTheme()
		style = style.Foreground(th.TitleFG).Background(th.TitleBG)
	} else {
		style = style.Reverse(true)
	}
	return style.Render(line)
}

// fitLines clips or pads s to exactly n lines.
func fitLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Render returns the full screen as a string.
func (m *Model) Render() string {
	formH, gridH := m.layoutHeights()
	parts := []string{m.titleView()}
	if formH > 0 {
		parts = append(parts, m.Form.View())
	}
	body := m.Grid.View()
	if m.HelpVisible {
		body = m.Help.View()
	}
	parts = append(parts, fitLines(body, gridH), m.Status.View())
	if m.DebugMode {
		parts = append(parts, m.Debug.View())
	}
	parts = append(parts, m.Footer.View())
	return strings.Join(parts, "\n")
}

func (m *Model) View() tea.View {
	m.syncAllComponents()
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}
