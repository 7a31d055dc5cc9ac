package ui

import (
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"
)

// Theme defines colors and styles used across the UI. Host apps can supply their own theme.
type Theme struct {
	TitleFG        color.Color // Title bar text
	TitleBG        color.Color // Title bar background
	HeaderFG       color.Color // Grid header text
	HeaderBG       color.Color // Grid header background
	BorderStyle    string      // Border style (normal|rounded)
	SelectedFG     color.Color // Cursor cell foreground
	SelectedBG     color.Color // Cursor cell background
	RowFG          color.Color // Cursor row text outside the cursor cell
	SeparatorColor color.Color // Grid border lines
	MutedColor     color.Color // Row numbers and placeholders
	InputFG        color.Color // Form input text
	InputBG        color.Color // Form panel background
	LabelColor     color.Color // Form field labels
	StatusColor    color.Color // Normal status bar text
	StatusError    color.Color // Error notifications
	StatusNotice   color.Color // Capacity notices
	StatusSuccess  color.Color // Confirmations
	FooterFG       color.Color // Footer text
	FooterBG       color.Color // Footer background
	HelpKey        color.Color // Help key labels
	HelpValue      color.Color // Help value text
}

var (
	defaultThemeOnce sync.Once
	defaultTheme     Theme
	currentTheme     Theme
	currentThemeSet  bool
)

// DefaultTheme returns the palette defined in the embedded default configuration.
// Falls back to the hard-coded palette only if the embedded config cannot be read.
func DefaultTheme() Theme {
	defaultThemeOnce.Do(func() {
		cfg, err := EmbeddedDefaultConfig()
		if err != nil {
			defaultTheme = fallbackDefaultTheme()
			return
		}
		selected := strings.TrimSpace(cfg.Theme.Default)
		if selected == "" {
			selected = "dark"
		}
		if themeCfg, ok := cfg.Themes[selected]; ok {
			defaultTheme = themeFromConfigWithBase(themeCfg, fallbackDefaultTheme())
			return
		}
		defaultTheme = fallbackDefaultTheme()
	})

	return defaultTheme
}

func fallbackDefaultTheme() Theme {
	return Theme{
		TitleFG:        lipgloss.Color("81"),
		TitleBG:        lipgloss.Color("236"),
		HeaderFG:       lipgloss.Color("81"),
		HeaderBG:       lipgloss.Color("236"),
		BorderStyle:    "rounded",
		SelectedFG:     lipgloss.Color("231"),
		SelectedBG:     lipgloss.Color("24"),
		RowFG:          lipgloss.Color("252"),
		SeparatorColor: lipgloss.Color("238"),
		MutedColor:     lipgloss.Color("244"),
		InputFG:        lipgloss.Color("252"),
		InputBG:        lipgloss.Color("236"),
		LabelColor:     lipgloss.Color("81"),
		StatusColor:    lipgloss.Color("81"),
		StatusError:    lipgloss.Color("203"),
		StatusNotice:   lipgloss.Color("179"),
		StatusSuccess:  lipgloss.Color("114"),
		FooterFG:       lipgloss.Color("244"),
		FooterBG:       lipgloss.Color("236"),
		HelpKey:        lipgloss.Color("81"),
		HelpValue:      lipgloss.Color("245"),
	}
}

// loadedThemes stores all available themes loaded from configuration.
// This is populated at startup by InitializeThemes() using default_config.yaml.
var loadedThemes = map[string]Theme{}

// SetTheme overrides the global theme.
func SetTheme(t Theme) {
	t.BorderStyle = normalizeBorderStyle(t.BorderStyle)
	currentTheme = t
	currentThemeSet = true
}

// SetThemeByName sets the theme by name from loaded configuration.
// Themes must be initialized first via InitializeThemes().
func SetThemeByName(name string) error {
	if theme, ok := loadedThemes[name]; ok {
		SetTheme(theme)
		return nil
	}
	if len(loadedThemes) == 0 {
		return fmt.Errorf("no themes loaded; call InitializeThemes() before SetThemeByName()")
	}
	return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(AvailableThemeNames(), ", "))
}

// AvailableThemeNames returns the sorted names of the loaded themes.
func AvailableThemeNames() []string {
	names := make([]string, 0, len(loadedThemes))
	for name := range loadedThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetTheme returns a theme by name from loaded configuration.
func GetTheme(name string) (Theme, bool) {
	theme, ok := loadedThemes[name]
	return theme, ok
}

// CurrentTheme returns the currently configured theme.
func CurrentTheme() Theme {
	if !currentThemeSet {
		currentTheme = DefaultTheme()
		currentThemeSet = true
	}
	return currentTheme
}

// ColorValue stores a color token (number or name) and marshals numerics as YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!int",
			Value: s,
		}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	// Accept both ints and strings; store the literal value.
	*c = ColorValue(value.Value)
	return nil
}

// ThemeConfig is a YAML-friendly theme configuration (colors accept ints or strings).
type ThemeConfig struct {
	TitleFG        ColorValue `yaml:"title_fg,omitempty" json:"title_fg,omitempty" toml:"title_fg,omitempty" yamlcomment:"Title bar foreground"`
	TitleBG        ColorValue `yaml:"title_bg,omitempty" json:"title_bg,omitempty" toml:"title_bg,omitempty" yamlcomment:"Title bar background"`
	HeaderFG       ColorValue `yaml:"header_fg,omitempty" json:"header_fg,omitempty" toml:"header_fg,omitempty" yamlcomment:"Grid header foreground"`
	HeaderBG       ColorValue `yaml:"header_bg,omitempty" json:"header_bg,omitempty" toml:"header_bg,omitempty" yamlcomment:"Grid header background"`
	BorderStyle    string     `yaml:"border_style,omitempty" json:"border_style,omitempty" toml:"border_style,omitempty" yamlcomment:"Border style (normal|rounded)"`
	SelectedFG     ColorValue `yaml:"selected_fg,omitempty" json:"selected_fg,omitempty" toml:"selected_fg,omitempty" yamlcomment:"Cursor cell foreground"`
	SelectedBG     ColorValue `yaml:"selected_bg,omitempty" json:"selected_bg,omitempty" toml:"selected_bg,omitempty" yamlcomment:"Cursor cell background"`
	RowFG          ColorValue `yaml:"row_fg,omitempty" json:"row_fg,omitempty" toml:"row_fg,omitempty" yamlcomment:"Cursor row foreground"`
	SeparatorColor ColorValue `yaml:"separator_color,omitempty" json:"separator_color,omitempty" toml:"separator_color,omitempty" yamlcomment:"Grid border color"`
	MutedColor     ColorValue `yaml:"muted_color,omitempty" json:"muted_color,omitempty" toml:"muted_color,omitempty" yamlcomment:"Row numbers and placeholders"`
	InputFG        ColorValue `yaml:"input_fg,omitempty" json:"input_fg,omitempty" toml:"input_fg,omitempty" yamlcomment:"Form input foreground"`
	InputBG        ColorValue `yaml:"input_bg,omitempty" json:"input_bg,omitempty" toml:"input_bg,omitempty" yamlcomment:"Form panel background"`
	LabelColor     ColorValue `yaml:"label_color,omitempty" json:"label_color,omitempty" toml:"label_color,omitempty" yamlcomment:"Form label color"`
	StatusColor    ColorValue `yaml:"status_color,omitempty" json:"status_color,omitempty" toml:"status_color,omitempty" yamlcomment:"Status bar color"`
	StatusError    ColorValue `yaml:"status_error,omitempty" json:"status_error,omitempty" toml:"status_error,omitempty" yamlcomment:"Error notification color"`
	StatusNotice   ColorValue `yaml:"status_notice,omitempty" json:"status_notice,omitempty" toml:"status_notice,omitempty" yamlcomment:"Notice notification color"`
	StatusSuccess  ColorValue `yaml:"status_success,omitempty" json:"status_success,omitempty" toml:"status_success,omitempty" yamlcomment:"Success notification color"`
	FooterFG       ColorValue `yaml:"footer_fg,omitempty" json:"footer_fg,omitempty" toml:"footer_fg,omitempty" yamlcomment:"Footer foreground"`
	FooterBG       ColorValue `yaml:"footer_bg,omitempty" json:"footer_bg,omitempty" toml:"footer_bg,omitempty" yamlcomment:"Footer background"`
	HelpKey        ColorValue `yaml:"help_key,omitempty" json:"help_key,omitempty" toml:"help_key,omitempty" yamlcomment:"Help key color"`
	HelpValue      ColorValue `yaml:"help_value,omitempty" json:"help_value,omitempty" toml:"help_value,omitempty" yamlcomment:"Help value color"`
}

func ThemeFromConfig(cfg ThemeConfig) Theme {
	return themeFromConfigWithBase(cfg, fallbackDefaultTheme())
}

func themeFromConfigWithBase(cfg ThemeConfig, base Theme) Theme {
	th := base
	set := func(val ColorValue, dst *color.Color) {
		if val != "" {
			*dst = lipgloss.Color(string(val))
		}
	}
	set(cfg.TitleFG, &th.TitleFG)
	set(cfg.TitleBG, &th.TitleBG)
	set(cfg.HeaderFG, &th.HeaderFG)
	set(cfg.HeaderBG, &th.HeaderBG)
	if cfg.BorderStyle != "" {
		th.BorderStyle = cfg.BorderStyle
	}
	set(cfg.SelectedFG, &th.SelectedFG)
	set(cfg.SelectedBG, &th.SelectedBG)
	set(cfg.RowFG, &th.RowFG)
	set(cfg.SeparatorColor, &th.SeparatorColor)
	set(cfg.MutedColor, &th.MutedColor)
	set(cfg.InputFG, &th.InputFG)
	set(cfg.InputBG, &th.InputBG)
	set(cfg.LabelColor, &th.LabelColor)
	set(cfg.StatusColor, &th.StatusColor)
	set(cfg.StatusError, &th.StatusError)
	set(cfg.StatusNotice, &th.StatusNotice)
	set(cfg.StatusSuccess, &th.StatusSuccess)
	set(cfg.FooterFG, &th.FooterFG)
	set(cfg.FooterBG, &th.FooterBG)
	set(cfg.HelpKey, &th.HelpKey)
	set(cfg.HelpValue, &th.HelpValue)
	th.BorderStyle = normalizeBorderStyle(th.BorderStyle)
	return th
}

func colorToColorValue(c color.Color) ColorValue { //nolint:gosec // RGBA values are 16-bit; explicit scaling to 8-bit is safe
	if c == nil {
		return ""
	}
	r, g, b, a := c.RGBA()
	if a == 0 && r == 0 && g == 0 && b == 0 {
		return ""
	}
	return ColorValue(fmt.Sprintf("#%02x%02x%02x", r/257, g/257, b/257))
}

// ThemeConfigFromTheme converts a theme back into its YAML form with hex colors.
func ThemeConfigFromTheme(th Theme) ThemeConfig {
	return ThemeConfig{
		TitleFG:        colorToColorValue(th.TitleFG),
		TitleBG:        colorToColorValue(th.TitleBG),
		HeaderFG:       colorToColorValue(th.HeaderFG),
		HeaderBG:       colorToColorValue(th.HeaderBG),
		BorderStyle:    th.BorderStyle,
		SelectedFG:     colorToColorValue(th.SelectedFG),
		SelectedBG:     colorToColorValue(th.SelectedBG),
		RowFG:          colorToColorValue(th.RowFG),
		SeparatorColor: colorToColorValue(th.SeparatorColor),
		MutedColor:     colorToColorValue(th.MutedColor),
		InputFG:        colorToColorValue(th.InputFG),
		InputBG:        colorToColorValue(th.InputBG),
		LabelColor:     colorToColorValue(th.LabelColor),
		StatusColor:    colorToColorValue(th.StatusColor),
		StatusError:    colorToColorValue(th.StatusError),
		StatusNotice:   colorToColorValue(th.StatusNotice),
		StatusSuccess:  colorToColorValue(th.StatusSuccess),
		FooterFG:       colorToColorValue(th.FooterFG),
		FooterBG:       colorToColorValue(th.FooterBG),
		HelpKey:        colorToColorValue(th.HelpKey),
		HelpValue:      colorToColorValue(th.HelpValue),
	}
}

func normalizeBorderStyle(val string) string {
	switch strings.TrimSpace(strings.ToLower(val)) {
	case "rounded", "round":
		return "rounded"
	default:
		return "normal"
	}
}

func borderForStyle(style string) lipgloss.Border {
	switch normalizeBorderStyle(style) {
	case "rounded":
		return lipgloss.RoundedBorder()
	default:
		return lipgloss.NormalBorder()
	}
}

// LoadConfigFile reads a user configuration file. Missing sections stay zero so the caller
// can merge the file over the embedded defaults.
func LoadConfigFile(path string) (ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ConfigFile{}, err
	}
	return ParseConfigFile(data)
}

// ParseConfigFile decodes YAML in the same layout as default_config.yaml.
func ParseConfigFile(data []byte) (ConfigFile, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ConfigFile{}, err
	}
	return raw.toFile(), nil
}

// InitializeThemes loads every theme of cfg so SetThemeByName can find them.
func InitializeThemes(cfg *ConfigFile) error {
	if cfg == nil {
		return fmt.Errorf("cannot initialize themes with nil configuration")
	}

	loadedThemes = make(map[string]Theme)

	if len(cfg.Themes) == 0 {
		return fmt.Errorf("no themes found in configuration")
	}

	for name, themeCfg := range cfg.Themes {
		loadedThemes[name] = ThemeFromConfig(themeCfg)
	}

	if _, ok := loadedThemes["dark"]; !ok {
		loadedThemes["dark"] = DefaultTheme()
	}
	return nil
}
