package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// FooterModel represents the footer component with key hints
type FooterModel struct {
	NoColor  bool
	Width    int
	Keys     KeyMap
	FormOpen bool
}

// NewFooterModel creates a new footer model
func NewFooterModel() FooterModel {
	return FooterModel{
		Width: 80,
		Keys:  DefaultKeyMap(),
	}
}

// Update handles messages for the footer component
func (m FooterModel) Update(_ tea.Msg) (FooterModel, tea.Cmd) {
	return m, nil
}

var footerActions = []Action{
	ActionHelp, ActionAddRow, ActionDeleteRow, ActionAddColumn, ActionDeleteColumn,
	ActionEditCell, ActionSort, ActionSearch, ActionResetSearch, ActionFilter, ActionQuit,
}

// View renders the footer with the key for each main action
func (m FooterModel) View() string {
	fkeyStyle := lipgloss.NewStyle()
	if !m.NoColor {
		fkeyStyle = fkeyStyle.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("240")).Bold(true)
	} else {
		fkeyStyle = fkeyStyle.Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ffffff")).Bold(true)
	}
	labelStyle := lipgloss.NewStyle()
	if !m.NoColor {
		labelStyle = labelStyle.Foreground(CurrentTheme().FooterFG)
	}

	parts := []string{}
	if m.FormOpen {
		parts = append(parts,
			fkeyStyle.Render("enter"), labelStyle.Render("submit"),
			fkeyStyle.Render("esc"), labelStyle.Render("cancel"),
			fkeyStyle.Render("tab"), labelStyle.Render("next field"),
		)
	} else {
		for _, action := range footerActions {
			key := formatKeyLabel(m.Keys.Label(action))
			if key == "" {
				continue
			}
			parts = append(parts, fkeyStyle.Render(key), labelStyle.Render(footerLabel(action)))
		}
	}

	line := strings.Join(parts, " ")
	if m.Width > 0 {
		line = ansi.Truncate(line, m.Width, "…")
	}
	return line
}

func footerLabel(a Action) string {
	switch a {
	case ActionAddRow:
		return "+row"
	case ActionDeleteRow:
		return "-row"
	case ActionAddColumn:
		return "+col"
	case ActionDeleteColumn:
		return "-col"
	case ActionEditCell:
		return "edit"
	case ActionResetSearch:
		return "reset"
	default:
		return strings.ToLower(a.Description())
	}
}

// formatKeyLabel converts internal key format to display format (ctrl+s -> C-s).
func formatKeyLabel(key string) string {
	if key == "" {
		return ""
	}
	if len(key) >= 2 && (key[0] == 'f' || key[0] == 'F') && key[1] >= '0' && key[1] <= '9' {
		return strings.ToUpper(key)
	}
	key = strings.ReplaceAll(key, "ctrl+", "C-")
	key = strings.ReplaceAll(key, "alt+", "M-")
	return key
}

// SetWidth sets the width of the footer
func (m *FooterModel) SetWidth(width int) {
	m.Width = width
}
