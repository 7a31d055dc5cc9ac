package ui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// FormKind identifies which control panel is open.
type FormKind int

const (
	FormNone FormKind = iota
	FormColumn
	FormSort
	FormSearch
	FormFilter
	FormEditCell
)

func (k FormKind) String() string {
	switch k {
	case FormColumn:
		return "column"
	case FormSort:
		return "sort"
	case FormSearch:
		return "search"
	case FormFilter:
		return "filter"
	case FormEditCell:
		return "edit_cell"
	default:
		return "none"
	}
}

// FormField is either a text input or a selector over fixed options.
type FormField struct {
	Label string

	Input textinput.Model

	IsSelect    bool
	Options     []string
	Labels      []string // display text per option; falls back to Options
	Selected    int      // -1 until the user picks an option
	Placeholder string
}

func newTextField(label, placeholder, value string) FormField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.SetWidth(40)
	ti.Prompt = ""
	ti.SetValue(value)
	ti.CursorEnd()
	return FormField{Label: label, Input: ti}
}

func newSelectField(label, placeholder string, options, labels []string, selected string) FormField {
	f := FormField{
		Label:       label,
		IsSelect:    true,
		Options:     options,
		Labels:      labels,
		Selected:    -1,
		Placeholder: placeholder,
	}
	for i, opt := range options {
		if opt == selected && selected != "" {
			f.Selected = i
			break
		}
	}
	return f
}

// Value returns the text input value or the selected option ("" when nothing is selected).
func (f FormField) Value() string {
	if !f.IsSelect {
		return f.Input.Value()
	}
	if f.Selected < 0 || f.Selected >= len(f.Options) {
		return ""
	}
	return f.Options[f.Selected]
}

func (f FormField) display() string {
	if f.Selected < 0 || f.Selected >= len(f.Options) {
		return ""
	}
	if f.Selected < len(f.Labels) && f.Labels[f.Selected] != "" {
		return f.Labels[f.Selected]
	}
	return f.Options[f.Selected]
}

func (f *FormField) cycle(step int) {
	n := len(f.Options)
	if n == 0 {
		return
	}
	if f.Selected < 0 {
		if step > 0 {
			f.Selected = 0
		} else {
			f.Selected = n - 1
		}
		return
	}
	f.Selected = ((f.Selected+step)%n + n) % n
}

// FormModel is the control panel shown above the grid while a form is open.
type FormModel struct {
	Kind    FormKind
	Title   string
	Fields  []FormField
	Focus   int
	NoColor bool
	Width   int
}

// NewFormModel creates an empty, closed form.
func NewFormModel() FormModel {
	return FormModel{Width: 80}
}

// Open reports whether a form is shown.
func (m FormModel) Open() bool {
	return m.Kind != FormNone
}

// Value returns the value of field i.
func (m FormModel) Value(i int) string {
	if i < 0 || i >= len(m.Fields) {
		return ""
	}
	return m.Fields[i].Value()
}

// focusField moves focus to field i and focuses its text input.
func (m *FormModel) focusField(i int) tea.Cmd {
	if len(m.Fields) == 0 {
		return nil
	}
	i = ((i % len(m.Fields)) + len(m.Fields)) % len(m.Fields)
	for j := range m.Fields {
		if !m.Fields[j].IsSelect {
			m.Fields[j].Input.Blur()
		}
	}
	m.Focus = i
	if m.Fields[i].IsSelect {
		return nil
	}
	return m.Fields[i].Input.Focus()
}

// Update handles focus movement, selector toggling and text entry. Enter and Esc are
// left to the parent model.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if !m.Open() || len(m.Fields) == 0 {
		return m, nil
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		// Cursor blink and other input messages go to the focused text field.
		if f := &m.Fields[m.Focus]; !f.IsSelect {
			var cmd tea.Cmd
			f.Input, cmd = f.Input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	switch km.String() {
	case "tab", "down":
		return m, m.focusField(m.Focus + 1)
	case "shift+tab", "up":
		return m, m.focusField(m.Focus - 1)
	}

	field := &m.Fields[m.Focus]
	if field.IsSelect {
		switch km.String() {
		case "right", "space", " ", "l":
			field.cycle(1)
		case "left", "h":
			field.cycle(-1)
		}
		return m, nil
	}
	var cmd tea.Cmd
	field.Input, cmd = field.Input.Update(msg)
	return m, cmd
}

// View renders the form fields, one per line.
func (m FormModel) View() string {
	if !m.Open() {
		return ""
	}
	th := CurrentTheme()
	panel := lipgloss.NewStyle()
	title := lipgloss.NewStyle().Bold(true)
	label := lipgloss.NewStyle()
	muted := lipgloss.NewStyle()
	active := lipgloss.NewStyle().Bold(true)
	if !m.NoColor {
		panel = panel.Background(th.InputBG).Foreground(th.InputFG)
		title = title.Foreground(th.LabelColor)
		label = label.Foreground(th.LabelColor)
		muted = muted.Foreground(th.MutedColor)
	}

	width := m.Width
	if width <= 0 {
		width = 80
	}

	lines := []string{title.Render(m.Title)}
	for i, f := range m.Fields {
		marker := "  "
		if i == m.Focus {
			marker = active.Render("> ")
		}
		var value string
		switch {
		case f.IsSelect && f.Selected < 0:
			value = muted.Render("‹ " + f.Placeholder + " ›")
		case f.IsSelect:
			value = "‹ " + f.display() + " ›"
		default:
			value = f.Input.View()
		}
		lines = append(lines, marker+label.Render(f.Label+":")+" "+value)
	}
	lines = append(lines, muted.Render("enter submit · esc cancel · tab next field · ←/→ change selection"))

	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "…")
	}
	return panel.Width(width).Render(strings.Join(lines, "\n"))
}

// SetWidth sets the width of the form panel.
func (m *FormModel) SetWidth(width int) {
	m.Width = width
}

// Close hides the form and drops its fields.
func (m *FormModel) Close() {
	*m = FormModel{NoColor: m.NoColor, Width: m.Width}
}
