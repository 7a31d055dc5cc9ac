package ui

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// KeyMode represents the keybinding mode for the UI.
type KeyMode string

const (
	// KeyModeVim enables vim-style keybindings (h/j/k/l navigation, / search).
	KeyModeVim KeyMode = "vim"
	// KeyModeEmacs enables emacs-style keybindings with ctrl/alt modifiers.
	KeyModeEmacs KeyMode = "emacs"
)

// DefaultKeyMode is the default keybinding mode.
const DefaultKeyMode = KeyModeVim

// ValidKeyModes lists all valid key modes for validation.
var ValidKeyModes = []KeyMode{KeyModeVim, KeyModeEmacs}

// IsValidKeyMode checks if a key mode string is valid.
func IsValidKeyMode(mode string) bool {
	for _, m := range ValidKeyModes {
		if string(m) == mode {
			return true
		}
	}
	return false
}

// Action is a named table operation or navigation step a key can trigger.
type Action string

const (
	ActionNone         Action = ""
	ActionUp           Action = "up"
	ActionDown         Action = "down"
	ActionLeft         Action = "left"
	ActionRight        Action = "right"
	ActionTop          Action = "top"
	ActionBottom       Action = "bottom"
	ActionPageUp       Action = "page_up"
	ActionPageDown     Action = "page_down"
	ActionAddRow       Action = "add_row"
	ActionDeleteRow    Action = "delete_row"
	ActionAddColumn    Action = "add_column"
	ActionDeleteColumn Action = "delete_column"
	ActionEditCell     Action = "edit_cell"
	ActionSort         Action = "sort"
	ActionSearch       Action = "search"
	ActionResetSearch  Action = "reset_search"
	ActionFilter       Action = "filter"
	ActionCopy         Action = "copy"
	ActionHelp         Action = "help"
	ActionQuit         Action = "quit"
)

// Actions lists every bindable action in help order.
var Actions = []Action{
	ActionUp, ActionDown, ActionLeft, ActionRight, ActionTop, ActionBottom,
	ActionPageUp, ActionPageDown,
	ActionAddRow, ActionDeleteRow, ActionAddColumn, ActionDeleteColumn, ActionEditCell,
	ActionSort, ActionSearch, ActionResetSearch, ActionFilter, ActionCopy,
	ActionHelp, ActionQuit,
}

var actionDescriptions = map[Action]string{
	ActionUp:           "Move up",
	ActionDown:         "Move down",
	ActionLeft:         "Previous column",
	ActionRight:        "Next column",
	ActionTop:          "First row",
	ActionBottom:       "Last row",
	ActionPageUp:       "Page up",
	ActionPageDown:     "Page down",
	ActionAddRow:       "Add row",
	ActionDeleteRow:    "Delete row",
	ActionAddColumn:    "Add column",
	ActionDeleteColumn: "Delete column",
	ActionEditCell:     "Edit cell",
	ActionSort:         "Sort data",
	ActionSearch:       "Search",
	ActionResetSearch:  "Reset search",
	ActionFilter:       "Filter (CEL)",
	ActionCopy:         "Copy cell",
	ActionHelp:         "Help",
	ActionQuit:         "Quit",
}

// Description returns the label shown in help and the footer.
func (a Action) Description() string {
	if d, ok := actionDescriptions[a]; ok {
		return d
	}
	return string(a)
}

// VimKeyBindings maps keys to actions for vim mode.
var VimKeyBindings = map[Action][]string{
	ActionUp:           {"up", "k"},
	ActionDown:         {"down", "j"},
	ActionLeft:         {"left", "h"},
	ActionRight:        {"right", "l"},
	ActionTop:          {"g", "home"},
	ActionBottom:       {"G", "end"},
	ActionPageUp:       {"pgup"},
	ActionPageDown:     {"pgdown"},
	ActionAddRow:       {"a"},
	ActionDeleteRow:    {"x"},
	ActionAddColumn:    {"c"},
	ActionDeleteColumn: {"X"},
	ActionEditCell:     {"enter", "e"},
	ActionSort:         {"s"},
	ActionSearch:       {"/"},
	ActionResetSearch:  {"r"},
	ActionFilter:       {"f"},
	ActionCopy:         {"y"},
	ActionHelp:         {"?", "f1"},
	ActionQuit:         {"q", "ctrl+c"},
}

// EmacsKeyBindings maps keys to actions for emacs mode.
var EmacsKeyBindings = map[Action][]string{
	ActionUp:           {"up", "ctrl+p"},
	ActionDown:         {"down", "ctrl+n"},
	ActionLeft:         {"left", "ctrl+b"},
	ActionRight:        {"right", "ctrl+f"},
	ActionTop:          {"alt+<", "home"},
	ActionBottom:       {"alt+>", "end"},
	ActionPageUp:       {"pgup", "alt+v"},
	ActionPageDown:     {"pgdown", "ctrl+v"},
	ActionAddRow:       {"ctrl+o"},
	ActionDeleteRow:    {"ctrl+k"},
	ActionAddColumn:    {"alt+c"},
	ActionDeleteColumn: {"alt+k"},
	ActionEditCell:     {"enter"},
	ActionSort:         {"alt+s"},
	ActionSearch:       {"ctrl+s"},
	ActionResetSearch:  {"ctrl+g"},
	ActionFilter:       {"alt+f"},
	ActionCopy:         {"alt+w"},
	ActionHelp:         {"f1"},
	ActionQuit:         {"ctrl+x", "ctrl+c"},
}

// KeyMap resolves key strings to actions. It is built once per model from the mode
// defaults plus per-action overrides.
type KeyMap struct {
	byKey    map[string]Action
	byAction map[Action][]string
}

// NewKeyMap builds a key map for mode with overrides replacing the keys of the named actions.
// Unknown modes or actions are reported as errors.
func NewKeyMap(mode KeyMode, overrides map[string][]string) (KeyMap, error) {
	var base map[Action][]string
	switch mode {
	case "", KeyModeVim:
		base = VimKeyBindings
	case KeyModeEmacs:
		base = EmacsKeyBindings
	default:
		return KeyMap{}, fmt.Errorf("invalid key mode %q (valid: vim, emacs)", mode)
	}

	byAction := make(map[Action][]string, len(base))
	for action, keys := range base {
		byAction[action] = append([]string(nil), keys...)
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	overridden := make([]Action, 0, len(overrides))
	for _, name := range names {
		action := Action(strings.TrimSpace(name))
		if _, ok := actionDescriptions[action]; !ok {
			return KeyMap{}, fmt.Errorf("unknown key action %q", name)
		}
		if slices.Contains(overridden, action) {
			return KeyMap{}, fmt.Errorf("key action %q is overridden more than once", action)
		}
		bound := make([]string, 0, len(overrides[name]))
		for _, k := range overrides[name] {
			if k = strings.TrimSpace(k); k != "" {
				bound = append(bound, k)
			}
		}
		byAction[action] = bound
		overridden = append(overridden, action)
	}
	slices.Sort(overridden)

	km := KeyMap{byKey: map[string]Action{}, byAction: byAction}
	// Overrides win over mode defaults that share a key.
	for _, action := range Actions {
		if slices.Contains(overridden, action) {
			continue
		}
		for _, k := range byAction[action] {
			km.byKey[k] = action
		}
	}
	for _, action := range overridden {
		for _, k := range byAction[action] {
			km.byKey[k] = action
		}
	}
	return km, nil
}

// IsZero reports whether k was never built by NewKeyMap.
func (k KeyMap) IsZero() bool {
	return k.byKey == nil
}

// DefaultKeyMap returns the vim bindings without overrides.
func DefaultKeyMap() KeyMap {
	km, _ := NewKeyMap(DefaultKeyMode, nil)
	return km
}

// Action returns the action bound to key.
func (k KeyMap) Action(key string) Action {
	return k.byKey[key]
}

// KeysFor returns the keys bound to action.
func (k KeyMap) KeysFor(action Action) []string {
	return append([]string(nil), k.byAction[action]...)
}

// Label returns the first key bound to action, or "" when unbound.
func (k KeyMap) Label(action Action) string {
	if keys := k.byAction[action]; len(keys) > 0 {
		return keys[0]
	}
	return ""
}
