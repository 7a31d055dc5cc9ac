package ui

import (
	"github.com/oakwood-commons/dyntable/internal/sheet"
)

// AboutConfig contains application metadata and information.
// Fields marked as dynamic are populated at runtime from build info.
type AboutConfig struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty" toml:"name,omitempty" yamlcomment:"Application name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" toml:"description,omitempty" yamlcomment:"Application description"`
	// Dynamic fields
	Version   string `yaml:"version,omitempty" json:"version,omitempty" toml:"version,omitempty" yamlcomment:"Application version (dynamic: from build info)"`
	GoVersion string `yaml:"go_version,omitempty" json:"go_version,omitempty" toml:"go_version,omitempty" yamlcomment:"Go version used to build (dynamic: from build info)"`
	GitCommit string `yaml:"git_commit,omitempty" json:"git_commit,omitempty" toml:"git_commit,omitempty" yamlcomment:"Git commit hash (dynamic: from build info)"`
	// Static fields
	RepositoryURL string `yaml:"repository_url,omitempty" json:"repository_url,omitempty" toml:"repository_url,omitempty" yamlcomment:"Source code repository URL"`
}

// DebugConfig holds debug and logging configuration.
type DebugConfig struct {
	MaxEvents *int `yaml:"max_events,omitempty" json:"max_events,omitempty" toml:"max_events,omitempty" yamlcomment:"Maximum number of debug events to keep (default: 200)"`
}

// ThemeSelectionConfig holds theme selection configuration.
type ThemeSelectionConfig struct {
	Default string `yaml:"default,omitempty" json:"default,omitempty" toml:"default,omitempty" yamlcomment:"Default theme name"`
}

// NotificationsConfig controls transient status messages.
type NotificationsConfig struct {
	DurationMs *int `yaml:"duration_ms,omitempty" json:"duration_ms,omitempty" toml:"duration_ms,omitempty" yamlcomment:"How long a notification stays visible (0 keeps it until the next one)"`
}

// TableConfig seeds the sheet and sizes the grid.
type TableConfig struct {
	MaxCellWidth   *int           `yaml:"max_cell_width,omitempty" json:"max_cell_width,omitempty" toml:"max_cell_width,omitempty" yamlcomment:"Maximum rendered cell width"`
	InitialColumns []sheet.Column `yaml:"initial_columns,omitempty" json:"initial_columns,omitempty" toml:"initial_columns,omitempty" yamlcomment:"Columns created at startup (name, type)"`
	InitialRows    *int           `yaml:"initial_rows,omitempty" json:"initial_rows,omitempty" toml:"initial_rows,omitempty" yamlcomment:"Empty rows created at startup"`
	Rows           [][]string     `yaml:"rows,omitempty" json:"rows,omitempty" toml:"rows,omitempty" yamlcomment:"Seed rows, one raw cell input per column"`
}

// KeysConfig maps action names to the keys that trigger them.
type KeysConfig map[string][]string

// AppConfig is the app: section of the config file.
type AppConfig struct {
	About AboutConfig `yaml:"about" json:"about" toml:"about" yamlcomment:"Application metadata and information"`
	Debug DebugConfig `yaml:"debug" json:"debug" toml:"debug" yamlcomment:"Debug and logging settings"`
}

// Config is the ui: section of the config file.
type Config struct {
	Theme         ThemeSelectionConfig   `yaml:"theme" json:"theme" toml:"theme" yamlcomment:"Theme selection"`
	KeyMode       string                 `yaml:"key_mode,omitempty" json:"key_mode,omitempty" toml:"key_mode,omitempty" yamlcomment:"Keybinding mode: vim (default) or emacs"`
	Keys          KeysConfig             `yaml:"keys,omitempty" json:"keys,omitempty" toml:"keys,omitempty" yamlcomment:"Per-action key overrides"`
	Notifications NotificationsConfig    `yaml:"notifications" json:"notifications" toml:"notifications" yamlcomment:"Notification settings"`
	Table         TableConfig            `yaml:"table" json:"table" toml:"table" yamlcomment:"Table seed and layout"`
	Themes        map[string]ThemeConfig `yaml:"themes" json:"themes" toml:"themes" yamlcomment:"Theme definitions"`
}

// ConfigFile is the flattened, merged configuration used at runtime.
type ConfigFile struct {
	About         AboutConfig
	Debug         DebugConfig
	Theme         ThemeSelectionConfig
	KeyMode       string
	Keys          KeysConfig
	Notifications NotificationsConfig
	Table         TableConfig
	Themes        map[string]ThemeConfig
}

// Nested returns the config in the app:/ui: layout used on disk.
func (c ConfigFile) Nested() NestedConfig {
	return NestedConfig{
		App: AppConfig{About: c.About, Debug: c.Debug},
		UI: Config{
			Theme:         c.Theme,
			KeyMode:       c.KeyMode,
			Keys:          c.Keys,
			Notifications: c.Notifications,
			Table:         c.Table,
			Themes:        c.Themes,
		},
	}
}

// NestedConfig mirrors the on-disk layout.
type NestedConfig struct {
	App AppConfig `yaml:"app" json:"app" toml:"app"`
	UI  Config    `yaml:"ui" json:"ui" toml:"ui"`
}

// File flattens the on-disk layout into the runtime form.
func (n NestedConfig) File() ConfigFile {
	return rawConfig(n).toFile()
}

type rawConfig NestedConfig

func (r rawConfig) toFile() ConfigFile {
	return ConfigFile{
		About:         r.App.About,
		Debug:         r.App.Debug,
		Theme:         r.UI.Theme,
		KeyMode:       r.UI.KeyMode,
		Keys:          r.UI.Keys,
		Notifications: r.UI.Notifications,
		Table:         r.UI.Table,
		Themes:        r.UI.Themes,
	}
}

// MergeConfig applies the fields set in override on top of base.
// Themes merge per color; keys merge per action.
func MergeConfig(base, override ConfigFile) ConfigFile {
	out := base
	if override.About.Name != "" {
		out.About.Name = override.About.Name
	}
	if override.About.Description != "" {
		out.About.Description = override.About.Description
	}
	if override.About.RepositoryURL != "" {
		out.About.RepositoryURL = override.About.RepositoryURL
	}
	if override.Debug.MaxEvents != nil {
		out.Debug.MaxEvents = override.Debug.MaxEvents
	}
	if override.Theme.Default != "" {
		out.Theme.Default = override.Theme.Default
	}
	if override.KeyMode != "" {
		out.KeyMode = override.KeyMode
	}
	if len(override.Keys) > 0 {
		keys := make(KeysConfig, len(base.Keys)+len(override.Keys))
		for action, k := range base.Keys {
			keys[action] = k
		}
		for action, k := range override.Keys {
			keys[action] = k
		}
		out.Keys = keys
	}
	if override.Notifications.DurationMs != nil {
		out.Notifications.DurationMs = override.Notifications.DurationMs
	}
	if override.Table.MaxCellWidth != nil {
		out.Table.MaxCellWidth = override.Table.MaxCellWidth
	}
	if override.Table.InitialRows != nil {
		out.Table.InitialRows = override.Table.InitialRows
	}
	if len(override.Table.InitialColumns) > 0 {
		out.Table.InitialColumns = append([]sheet.Column(nil), override.Table.InitialColumns...)
	}
	if len(override.Table.Rows) > 0 {
		out.Table.Rows = append([][]string(nil), override.Table.Rows...)
	}
	if len(override.Themes) > 0 {
		themes := make(map[string]ThemeConfig, len(base.Themes)+len(override.Themes))
		for name, th := range base.Themes {
			themes[name] = th
		}
		for name, th := range override.Themes {
			themes[name] = mergeThemeConfig(themes[name], th)
		}
		out.Themes = themes
	}
	return out
}

func mergeThemeConfig(base, override ThemeConfig) ThemeConfig {
	out := base
	apply := func(src ColorValue, dst *ColorValue) {
		if src != "" {
			*dst = src
		}
	}
	if override.BorderStyle != "" {
		out.BorderStyle = override.BorderStyle
	}
	apply(override.TitleFG, &out.TitleFG)
	apply(override.TitleBG, &out.TitleBG)
	apply(override.HeaderFG, &out.HeaderFG)
	apply(override.HeaderBG, &out.HeaderBG)
	apply(override.SelectedFG, &out.SelectedFG)
	apply(override.SelectedBG, &out.SelectedBG)
	apply(override.RowFG, &out.RowFG)
	apply(override.SeparatorColor, &out.SeparatorColor)
	apply(override.MutedColor, &out.MutedColor)
	apply(override.InputFG, &out.InputFG)
	apply(override.InputBG, &out.InputBG)
	apply(override.LabelColor, &out.LabelColor)
	apply(override.StatusColor, &out.StatusColor)
	apply(override.StatusError, &out.StatusError)
	apply(override.StatusNotice, &out.StatusNotice)
	apply(override.StatusSuccess, &out.StatusSuccess)
	apply(override.FooterFG, &out.FooterFG)
	apply(override.FooterBG, &out.FooterBG)
	apply(override.HelpKey, &out.HelpKey)
	apply(override.HelpValue, &out.HelpValue)
	return out
}

// IntValue dereferences an optional int, returning def when unset.
func IntValue(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
