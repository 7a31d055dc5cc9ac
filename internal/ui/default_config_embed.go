package ui

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     ConfigFile
	embeddedConfigErr  error
)

// DefaultConfigYAML returns a copy of the embedded default config YAML bytes.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// EmbeddedDefaultConfig parses and returns the embedded default configuration.
// This is used as the single source of truth for default settings and themes.
func EmbeddedDefaultConfig() (ConfigFile, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = fmt.Errorf("embedded default config is empty")
			return
		}
		cfg, err := ParseConfigFile(embeddedDefaultConfig)
		if err != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", err)
			return
		}
		if cfg.Themes == nil {
			cfg.Themes = map[string]ThemeConfig{}
		}
		embeddedConfig = cfg
	})
	return embeddedConfig, embeddedConfigErr
}
