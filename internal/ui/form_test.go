package ui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortForm() FormModel {
	f := NewFormModel()
	f.Kind = FormSort
	f.Title = "Sort Data"
	f.NoColor = true
	f.Fields = []FormField{
		newSelectField("Column", "Select column", []string{"Age", "Score"}, nil, ""),
		newSelectField("Condition", "Select condition", []string{"greater", "less"}, []string{"Greater than or equal to", "Less than or equal to"}, "less"),
	}
	return f
}

func TestFormField_SelectCycles(t *testing.T) {
	f := newSelectField("Type", "Select type", []string{"String", "Number"}, nil, "")
	assert.Equal(t, "", f.Value())

	f.cycle(-1)
	assert.Equal(t, "Number", f.Value(), "stepping back from no selection picks the last option")
	f.cycle(1)
	assert.Equal(t, "String", f.Value())
	f.cycle(1)
	assert.Equal(t, "Number", f.Value())

	empty := newSelectField("Column", "none", nil, nil, "")
	empty.cycle(1)
	assert.Equal(t, -1, empty.Selected)
}

func TestFormModel_FocusAndSelection(t *testing.T) {
	f := sortForm()
	require.True(t, f.Open())
	assert.Equal(t, "less", f.Value(1), "preselected option is kept")

	f, _ = f.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	assert.Equal(t, "Age", f.Value(0))

	f, _ = f.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, 1, f.Focus)
	f, _ = f.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	assert.Equal(t, "greater", f.Value(1))

	f, _ = f.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, 0, f.Focus, "focus wraps")
	f, _ = f.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	assert.Equal(t, 1, f.Focus)

	assert.Equal(t, "", f.Value(7))
}

func TestFormModel_TextEntry(t *testing.T) {
	f := NewFormModel()
	f.Kind = FormFilter
	f.Fields = []FormField{newTextField("Expression", "", "")}
	f.focusField(0)

	for _, r := range "size(cells)" {
		f, _ = f.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	assert.Equal(t, "size(cells)", f.Value(0))
}

func TestFormModel_ViewShowsFieldsAndSelections(t *testing.T) {
	f := sortForm()
	f.Width = 120
	out := ansi.Strip(f.View())
	assert.Contains(t, out, "Sort Data")
	assert.Contains(t, out, "> Column: ‹ Select column ›")
	assert.Contains(t, out, "Condition: ‹ Less than or equal to ›")
	assert.Contains(t, out, "enter submit")

	f.Close()
	assert.False(t, f.Open())
	assert.Empty(t, f.View())
	assert.True(t, f.NoColor, "close keeps display settings")
}

func TestFormKind_String(t *testing.T) {
	assert.Equal(t, "column", FormColumn.String())
	assert.Equal(t, "edit_cell", FormEditCell.String())
	assert.Equal(t, "none", FormNone.String())
}
