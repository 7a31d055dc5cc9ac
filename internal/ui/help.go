package ui

import (
	"fmt"
	"strings"
	"sync"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/dyntable/internal/cel"
)

// HelpModel represents the help overlay component
type HelpModel struct {
	Visible    bool
	NoColor    bool
	Width      int
	Keys       KeyMap
	KeyMode    KeyMode
	AboutTitle string
	AboutLines []string
}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{
		Width:   80,
		Keys:    DefaultKeyMap(),
		KeyMode: DefaultKeyMode,
	}
}

// Update handles messages for the help component
func (m HelpModel) Update(_ tea.Msg) (HelpModel, tea.Cmd) {
	return m, nil
}

// helpRows returns one {keys, description} row per bound action.
func helpRows(keys KeyMap) [][]string {
	rows := make([][]string, 0, len(Actions))
	for _, action := range Actions {
		bound := keys.KeysFor(action)
		if len(bound) == 0 {
			continue
		}
		labels := make([]string, len(bound))
		for i, k := range bound {
			labels[i] = formatKeyLabel(k)
		}
		rows = append(rows, []string{strings.Join(labels, " / "), action.Description()})
	}
	return rows
}

var (
	filterFuncsOnce sync.Once
	filterFuncs     []string
)

// filterFunctions returns the function names usable in filter expressions, discovered once.
func filterFunctions() []string {
	filterFuncsOnce.Do(func() {
		names, err := cel.DiscoverCELFunctions()
		if err == nil {
			filterFuncs = names
		}
	})
	return filterFuncs
}

// View renders the help overlay if visible
func (m HelpModel) View() string {
	if !m.Visible {
		return ""
	}

	th := CurrentTheme()
	leftStyle := lipgloss.NewStyle().PaddingLeft(1)
	rightStyle := lipgloss.NewStyle()
	headingStyle := lipgloss.NewStyle().Bold(true)
	boxStyle := lipgloss.NewStyle().Border(borderForStyle(th.BorderStyle)).PaddingLeft(1).PaddingRight(1)
	if !m.NoColor {
		leftStyle = leftStyle.Foreground(th.HelpKey).Bold(true)
		rightStyle = rightStyle.Foreground(th.HelpValue)
		headingStyle = headingStyle.Foreground(th.HeaderFG)
		boxStyle = boxStyle.BorderForeground(th.SeparatorColor)
	} else {
		leftStyle = leftStyle.Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ffffff")).Bold(true)
	}

	lines := []string{}
	if m.AboutTitle != "" {
		lines = append(lines, headingStyle.Render(m.AboutTitle))
	}
	for _, l := range m.AboutLines {
		lines = append(lines, rightStyle.Render(l))
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}

	lines = append(lines, headingStyle.Render("Keys"))
	for _, row := range helpRows(m.Keys) {
		lines = append(lines, leftStyle.Render(fmt.Sprintf("%-18s", row[0]))+" "+rightStyle.Render(row[1]))
	}

	lines = append(lines, "", headingStyle.Render("Forms"))
	for _, row := range [][]string{
		{"enter", "submit"},
		{"esc", "cancel"},
		{"tab / shift+tab", "next / previous field"},
		{"← / → / space", "change selection"},
	} {
		lines = append(lines, leftStyle.Render(fmt.Sprintf("%-18s", row[0]))+" "+rightStyle.Render(row[1]))
	}

	lines = append(lines, "", headingStyle.Render("Filter expressions (CEL)"))
	lines = append(lines, rightStyle.Render(`row["Name"] is the token list of column Name; cells[0] is the first column`))
	for _, p := range cel.GetCommonPatterns() {
		lines = append(lines, rightStyle.Render("  "+p))
	}
	if fns := filterFunctions(); len(fns) > 0 {
		lines = append(lines, rightStyle.Render("Functions: "+strings.Join(fns, ", ")))
	}

	lines = append(lines, "", rightStyle.Render(fmt.Sprintf("Mode: %s  (switch with --key-mode vim|emacs)", m.KeyMode)))

	content := strings.Join(lines, "\n")
	if m.Width > 4 && lipgloss.Width(content) > m.Width-4 {
		return boxStyle.Width(m.Width - 2).Render(content)
	}
	return boxStyle.Render(content)
}

// SetWidth sets the width of the help overlay
func (m *HelpModel) SetWidth(width int) {
	m.Width = width
}

// SetVisible sets the visibility of the help overlay
func (m *HelpModel) SetVisible(visible bool) {
	m.Visible = visible
}
