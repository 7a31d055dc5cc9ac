package ui

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// DefaultMaxDebugEvents caps the debug event buffer when the config does not.
const DefaultMaxDebugEvents = 200

// DebugEvent captures a debug message with a timestamp for post-exit logging.
type DebugEvent struct {
	Time    time.Time
	Message string
}

// DebugModel represents the debug bar component
type DebugModel struct {
	Visible         bool
	NoColor         bool
	Width           int
	LastDebugOutput string // Cached output to prevent flicker
	LastDebugValues string // Key of the values that produced the cached output
}

// NewDebugModel creates a new debug model
func NewDebugModel() DebugModel {
	return DebugModel{
		Width: 80,
	}
}

// Update handles messages for the debug component
func (m DebugModel) Update(_ tea.Msg) (DebugModel, tea.Cmd) {
	return m, nil
}

// View renders the debug bar if visible
func (m DebugModel) View() string {
	if !m.Visible {
		return ""
	}
	return m.LastDebugOutput
}

// DebugInfo contains the state shown in the debug bar
type DebugInfo struct {
	WinWidth   int
	WinHeight  int
	GridHeight int
	Columns    int
	RowCount   int
	Shown      int
	Original   int
	CursorRow  int
	CursorCol  int
	Form       FormKind
	LastKey    string
}

func (d DebugInfo) key() string {
	return fmt.Sprintf("%+v", d)
}

// UpdateDebugInfo regenerates the bar when the state changed
func (m *DebugModel) UpdateDebugInfo(info DebugInfo) {
	stateKey := info.key()
	if m.LastDebugValues == stateKey {
		return
	}
	debugStyle := lipgloss.NewStyle()
	if !m.NoColor {
		debugStyle = debugStyle.Foreground(CurrentTheme().MutedColor)
	}
	message := fmt.Sprintf("DBG: win=%dx%d grid=%d | cols=%d rows=%d shown=%d orig=%d | cursor=(%d,%d) form=%s key=%q",
		info.WinWidth, info.WinHeight, info.GridHeight,
		info.Columns, info.RowCount, info.Shown, info.Original,
		info.CursorRow, info.CursorCol, info.Form, info.LastKey)

	target := 80
	if m.Width > 0 {
		target = m.Width
	}
	padded := ansi.Truncate(message, target, "...")
	if w := lipgloss.Width(padded); w < target {
		padded += strings.Repeat(" ", target-w)
	}
	m.LastDebugOutput = debugStyle.Render(padded)
	m.LastDebugValues = stateKey
}

// SetWidth sets the width of the debug bar
func (m *DebugModel) SetWidth(width int) {
	m.Width = width
}

// SetVisible sets the visibility of the debug bar
func (m *DebugModel) SetVisible(visible bool) {
	m.Visible = visible
	if !visible {
		m.LastDebugOutput = ""
		m.LastDebugValues = ""
	}
}
