package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ApplyStartupKeys simulates startup keypresses (Vim-like tokens and literal text).
// It mutates the provided model in place. Commands returned by Update are dropped, so
// notifications stay visible.
func ApplyStartupKeys(m *Model, keys []string) {
	if len(keys) == 0 || m == nil {
		return
	}
	send := func(msg tea.KeyPressMsg) {
		if updated, _ := m.Update(msg); updated != nil {
			if um, ok := updated.(*Model); ok {
				*m = *um
			}
		}
	}
	for _, raw := range keys {
		token := raw
		if strings.TrimSpace(token) == "" {
			continue
		}
		// Leading backslash forces literal text (e.g., "\\<F1>").
		if strings.HasPrefix(token, `\`) {
			for _, r := range strings.TrimPrefix(token, `\`) {
				send(tea.KeyPressMsg{Code: r, Text: string(r)})
			}
			continue
		}
		for _, segment := range parseTokenSegments(token) {
			if !segment.isVimKey {
				for _, r := range segment.text {
					send(tea.KeyPressMsg{Code: r, Text: string(r)})
				}
				continue
			}
			msgs, ok := keyMsgsFromToken(segment.text)
			if !ok {
				// Unknown <...> tokens are typed as text.
				for _, r := range segment.text {
					send(tea.KeyPressMsg{Code: r, Text: string(r)})
				}
				continue
			}
			for _, msg := range msgs {
				send(msg)
			}
		}
	}
}

// tokenSegment is a parsed piece of a token: a <Key> or literal text.
type tokenSegment struct {
	text     string
	isVimKey bool
}

// parseTokenSegments splits a token into segments of vim-style keys and literal text.
// Example: "c<Tab>Score<CR>" -> ["c", "<Tab>", "Score", "<CR>"]
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token

	for len(remaining) > 0 {
		startIdx := strings.Index(remaining, "<")
		if startIdx == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if startIdx > 0 {
			segments = append(segments, tokenSegment{text: remaining[:startIdx]})
		}
		endIdx := strings.Index(remaining[startIdx:], ">")
		if endIdx == -1 {
			segments = append(segments, tokenSegment{text: remaining[startIdx:]})
			break
		}
		segments = append(segments, tokenSegment{text: remaining[startIdx : startIdx+endIdx+1], isVimKey: true})
		remaining = remaining[startIdx+endIdx+1:]
	}

	return segments
}

var namedKeys = map[string]tea.KeyPressMsg{
	"esc":       {Code: tea.KeyEscape},
	"escape":    {Code: tea.KeyEscape},
	"c-[":       {Code: tea.KeyEscape},
	"cr":        {Code: tea.KeyEnter},
	"enter":     {Code: tea.KeyEnter},
	"return":    {Code: tea.KeyEnter},
	"tab":       {Code: tea.KeyTab},
	"s-tab":     {Code: tea.KeyTab, Mod: tea.ModShift},
	"space":     {Code: tea.KeySpace, Text: " "},
	"bs":        {Code: tea.KeyBackspace},
	"backspace": {Code: tea.KeyBackspace},
	"del":       {Code: tea.KeyDelete},
	"left":      {Code: tea.KeyLeft},
	"right":     {Code: tea.KeyRight},
	"up":        {Code: tea.KeyUp},
	"down":      {Code: tea.KeyDown},
	"home":      {Code: tea.KeyHome},
	"end":       {Code: tea.KeyEnd},
	"pageup":    {Code: tea.KeyPgUp},
	"pagedown":  {Code: tea.KeyPgDown},
	"lt":        {Code: '<', Text: "<"},
	"gt":        {Code: '>', Text: ">"},
}

var functionKeys = []rune{
	tea.KeyF1, tea.KeyF2, tea.KeyF3, tea.KeyF4, tea.KeyF5, tea.KeyF6,
	tea.KeyF7, tea.KeyF8, tea.KeyF9, tea.KeyF10, tea.KeyF11, tea.KeyF12,
}

// keyMsgsFromToken parses a Vim-like token into key messages.
// Examples: "<Esc>", "<CR>", "<Tab>", "<S-Tab>", "<Space>", "<BS>", "<C-c>", "<M-w>", "<F1>".
// Only <...> forms are treated as keys; everything else is literal text.
func keyMsgsFromToken(token string) ([]tea.KeyPressMsg, bool) {
	if !strings.HasPrefix(token, "<") || !strings.HasSuffix(token, ">") || len(token) < 3 {
		return nil, false
	}
	inner := token[1 : len(token)-1]
	lower := strings.ToLower(inner)
	if msg, ok := namedKeys[lower]; ok {
		return []tea.KeyPressMsg{msg}, true
	}
	if strings.HasPrefix(lower, "f") {
		var n int
		for _, r := range lower[1:] {
			if r < '0' || r > '9' {
				n = -1
				break
			}
			n = n*10 + int(r-'0')
		}
		if n >= 1 && n <= len(functionKeys) {
			return []tea.KeyPressMsg{{Code: functionKeys[n-1]}}, true
		}
	}
	// <C-x> and <M-x> for a single character.
	if len(inner) == 3 && inner[1] == '-' {
		r := rune(inner[2])
		switch lower[0] {
		case 'c':
			return []tea.KeyPressMsg{{Code: r, Mod: tea.ModCtrl}}, true
		case 'm', 'a':
			return []tea.KeyPressMsg{{Code: r, Mod: tea.ModAlt}}, true
		}
	}
	return nil, false
}
