package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	rdebug "runtime/debug"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/dyntable/internal/ui"
	"github.com/oakwood-commons/dyntable/pkg/settings"
)

// configLoader centralizes config loading so callers avoid duplicating merge logic.
type configLoader struct {
	defaultConfig func() ([]byte, error)
}

var cfgLoader = configLoader{defaultConfig: loadDefaultConfigYAML}

func loadMergedConfig(cfgPath string) (ui.ConfigFile, error) {
	return cfgLoader.loadMergedConfig(cfgPath)
}

func loadDefaultConfigRaw() ([]byte, error) {
	return cfgLoader.loadDefaultConfigRaw()
}

func loadDefaultConfigYAML() ([]byte, error) {
	data := ui.DefaultConfigYAML()
	if len(data) == 0 {
		return nil, fmt.Errorf("embedded default config is empty")
	}
	return data, nil
}

func (l configLoader) loadDefaultConfigRaw() ([]byte, error) {
	if l.defaultConfig != nil {
		return l.defaultConfig()
	}
	return loadDefaultConfigYAML()
}

// loadMergedConfig returns the embedded defaults with the user file at cfgPath merged on
// top. An empty path means defaults only.
func (l configLoader) loadMergedConfig(cfgPath string) (ui.ConfigFile, error) {
	defaultData, err := l.loadDefaultConfigRaw()
	if err != nil {
		return ui.ConfigFile{}, fmt.Errorf("load default config: %w", err)
	}
	cfg, err := ui.ParseConfigFile(defaultData)
	if err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	if cfg.Theme.Default == "" || len(cfg.Themes) == 0 {
		return cfg, fmt.Errorf("default config is missing required theme defaults")
	}

	if cfgPath != "" {
		fileCfg, err := readUserConfig(cfgPath)
		if err != nil {
			return cfg, err
		}
		cfg = ui.MergeConfig(cfg, fileCfg)
	}

	applyBuildData(&cfg, buildVersionData(&cfg))
	return cfg, nil
}

// readUserConfig decodes a user config file. Files ending in .toml are read as TOML,
// everything else as YAML.
func readUserConfig(path string) (ui.ConfigFile, error) {
	if !strings.EqualFold(filepath.Ext(path), ".toml") {
		cfg, err := ui.LoadConfigFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ui.ConfigFile{}, fmt.Errorf("load config file %s: %w", path, err)
	}
	var nested ui.NestedConfig
	if err := toml.Unmarshal(data, &nested); err != nil {
		return ui.ConfigFile{}, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nested.File(), nil
}

// sanitizeConfig drops the fields populated from build info so printed configs can be
// used as config files.
func sanitizeConfig(cfg ui.ConfigFile) ui.NestedConfig {
	out := cfg
	out.About = ui.AboutConfig{
		Name:          cfg.About.Name,
		Description:   cfg.About.Description,
		RepositoryURL: cfg.About.RepositoryURL,
	}
	return out.Nested()
}

// formatConfig encodes cfg as yaml, json or toml.
func formatConfig(cfg ui.NestedConfig, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return buf.Bytes(), nil
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return append(data, '\n'), nil
	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("invalid output for config: %s (use yaml|json|toml|raw)", format)
	}
}

func applyBuildData(cfg *ui.ConfigFile, buildData map[string]interface{}) {
	if v, ok := buildData["Version"].(string); ok {
		cfg.About.Version = v
	}
	if v, ok := buildData["GoVersion"].(string); ok {
		cfg.About.GoVersion = v
	}
	if v, ok := buildData["GitCommit"].(string); ok {
		cfg.About.GitCommit = v
	}
}

// buildVersionData collects version and build information. Values injected through
// ldflags win over the module build info.
func buildVersionData(cfg *ui.ConfigFile) map[string]interface{} {
	version := "dev"
	goVersion := runtime.Version()
	gitCommit := ""

	if info, ok := rdebug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		} else {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					gitCommit = s.Value[:7]
					version = gitCommit
					break
				}
			}
		}
		if info.GoVersion != "" {
			goVersion = info.GoVersion
		}
	}

	vi := settings.VersionInformation
	if vi.BuildVersion != "" && vi.BuildVersion != "v0.0.0-nightly" {
		version = vi.BuildVersion
	}
	if vi.Commit != "" && vi.Commit != "unknown" {
		gitCommit = vi.Commit
	}

	name := settings.CliBinaryName
	if cfg != nil && cfg.About.Name != "" {
		name = cfg.About.Name
	}

	return map[string]interface{}{
		"Version":   version,
		"GoVersion": goVersion,
		"GitCommit": gitCommit,
		"Name":      name,
	}
}

// themeNames returns the sorted theme names of cfg.
func themeNames(cfg ui.ConfigFile) []string {
	names := make([]string, 0, len(cfg.Themes))
	for name := range cfg.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveConfigPath returns the explicit path if set, otherwise
// $XDG_CONFIG_HOME/dyntable/config.yaml or ~/.config/dyntable/config.yaml if present.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	candidate := ""
	if xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}
