package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/oakwood-commons/dyntable/internal/sheet"
	"github.com/oakwood-commons/dyntable/internal/ui"
)

type themeSelectionError struct {
	Selected     string
	Available    []string
	DefaultTheme string
}

func (e themeSelectionError) Error() string {
	return fmt.Sprintf("unknown theme %q\navailable themes: %v\ndefault theme: %s", e.Selected, e.Available, e.DefaultTheme)
}

func defaultThemeName(cfg ui.ConfigFile) string {
	if name := strings.TrimSpace(cfg.Theme.Default); name != "" {
		return name
	}
	return "dark"
}

func applyThemeFromConfig(cfg ui.ConfigFile, cliTheme string, themeFlagSet bool) error {
	selectedTheme := strings.TrimSpace(cliTheme)
	if !themeFlagSet {
		selectedTheme = ""
	}
	if selectedTheme == "" {
		selectedTheme = defaultThemeName(cfg)
	}

	applyTheme := func(name string) bool {
		if name == "" {
			return false
		}
		if th, ok := cfg.Themes[name]; ok {
			ui.SetTheme(ui.ThemeFromConfig(th))
			return true
		}
		if th, ok := ui.GetTheme(name); ok {
			ui.SetTheme(th)
			return true
		}
		return false
	}

	if applyTheme(selectedTheme) {
		return nil
	}

	if !themeFlagSet {
		fallback := "dark"
		if fallback != selectedTheme && applyTheme(fallback) {
			return nil
		}
	}

	return themeSelectionError{Selected: selectedTheme, Available: themeNames(cfg), DefaultTheme: defaultThemeName(cfg)}
}

func printThemeSelectionError(w io.Writer, err error) {
	var themeErr themeSelectionError
	if errors.As(err, &themeErr) {
		fmt.Fprintf(w, "unknown theme %q\n", themeErr.Selected)
		fmt.Fprintf(w, "available themes: %v\n", themeErr.Available)
		fmt.Fprintf(w, "default theme: %s\n", themeErr.DefaultTheme)
		return
	}
	fmt.Fprintln(w, err)
}

// loadConfigState centralizes config load and theme application for CLI flows.
func loadConfigState(path string, cliTheme string, themeFlagSet bool) (ui.ConfigFile, error) {
	cfg, err := loadMergedConfig(path)
	if err != nil {
		return cfg, err
	}

	if err := ui.InitializeThemes(&cfg); err != nil {
		// Continue with the fallback dark theme.
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize themes: %v\n", err)
	}

	if err := applyThemeFromConfig(cfg, cliTheme, themeFlagSet); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// effectiveKeyMode picks the --key-mode flag, then ui.key_mode, then the default.
func effectiveKeyMode(cfg ui.ConfigFile, flag string) (ui.KeyMode, error) {
	mode := strings.TrimSpace(flag)
	if mode == "" {
		mode = strings.TrimSpace(cfg.KeyMode)
	}
	if mode == "" {
		return ui.DefaultKeyMode, nil
	}
	if !ui.IsValidKeyMode(mode) {
		return "", fmt.Errorf("invalid key mode %q (valid: vim, emacs)", mode)
	}
	return ui.KeyMode(mode), nil
}

// columnsFlag collects repeated --column Name:Type values.
type columnsFlag struct {
	cols []sheet.Column
}

var _ pflag.Value = (*columnsFlag)(nil)

func (f *columnsFlag) String() string {
	parts := make([]string, len(f.cols))
	for i, c := range f.cols {
		parts[i] = c.Name + ":" + string(c.Type)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (f *columnsFlag) Set(value string) error {
	col, err := parseColumnSpec(value)
	if err != nil {
		return err
	}
	f.cols = append(f.cols, col)
	return nil
}

func (f *columnsFlag) Type() string { return "Name:Type" }

// parseColumnSpec parses "Name:Type". The type defaults to String; the name is
// everything before the last colon so names may contain colons.
func parseColumnSpec(value string) (sheet.Column, error) {
	name, typ := value, ""
	if i := strings.LastIndex(value, ":"); i >= 0 {
		name, typ = value[:i], value[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return sheet.Column{}, fmt.Errorf("invalid column %q: name is required", value)
	}
	t := sheet.TypeString
	if strings.TrimSpace(typ) != "" {
		var err error
		if t, err = sheet.ParseColumnType(typ); err != nil {
			return sheet.Column{}, fmt.Errorf("invalid column %q: %w", value, err)
		}
	}
	return sheet.Column{Name: name, Type: t}, nil
}

// parseRowSpec splits a --row value into one raw cell input per column.
func parseRowSpec(value string) []string {
	return strings.Split(value, ";")
}

// sheetSeed is the initial table built from config and flags.
type sheetSeed struct {
	Columns   []sheet.Column
	EmptyRows int
	Rows      [][]string
}

// seedFromConfig merges the table section of cfg with the CLI overrides. Flag columns
// replace config columns; flag rows are appended after config rows.
func seedFromConfig(cfg ui.ConfigFile, cols []sheet.Column, rowsFlag int, rowsFlagSet bool, rowFlags []string) sheetSeed {
	seed := sheetSeed{
		Columns:   cfg.Table.InitialColumns,
		EmptyRows: ui.IntValue(cfg.Table.InitialRows, 0),
		Rows:      append([][]string(nil), cfg.Table.Rows...),
	}
	if len(cols) > 0 {
		seed.Columns = cols
	}
	if rowsFlagSet {
		seed.EmptyRows = rowsFlag
	}
	for _, r := range rowFlags {
		seed.Rows = append(seed.Rows, parseRowSpec(r))
	}
	return seed
}

// buildSheet creates the sheet for a seed. Seed rows come first, then the empty rows.
func buildSheet(seed sheetSeed) (*sheet.Sheet, error) {
	if seed.EmptyRows < 0 {
		return nil, fmt.Errorf("invalid --rows %d: must not be negative", seed.EmptyRows)
	}
	s := sheet.New()
	for _, c := range seed.Columns {
		if err := s.AddColumn(c.Name, c.Type); err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
	}
	for i, values := range seed.Rows {
		if _, err := s.AppendRow(values...); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	for i := 0; i < seed.EmptyRows; i++ {
		s.AddRow()
	}
	return s, nil
}
