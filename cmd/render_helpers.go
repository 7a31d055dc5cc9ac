package cmd

import (
	"fmt"
	"time"

	"github.com/oakwood-commons/dyntable/internal/sheet"
	"github.com/oakwood-commons/dyntable/internal/ui"
)

// modelOptions carries the resolved CLI and config settings applied to every model.
type modelOptions struct {
	KeyMode        ui.KeyMode
	Keys           ui.KeyMap
	MaxDebugEvents int
}

// applyConfigToModel pushes the merged config into m. Unset config fields keep the
// model defaults.
func applyConfigToModel(m *ui.Model, cfg ui.ConfigFile, opts modelOptions) {
	if m == nil {
		return
	}
	if !opts.Keys.IsZero() {
		m.SetKeyMap(opts.KeyMode, opts.Keys)
	}
	if cfg.Table.MaxCellWidth != nil && *cfg.Table.MaxCellWidth > 0 {
		m.MaxCellWidth = *cfg.Table.MaxCellWidth
	}
	if cfg.Notifications.DurationMs != nil && *cfg.Notifications.DurationMs >= 0 {
		m.NotifyDuration = time.Duration(*cfg.Notifications.DurationMs) * time.Millisecond
	}
	if opts.MaxDebugEvents > 0 {
		m.MaxDebugEvents = opts.MaxDebugEvents
	}
	if cfg.About.Name != "" {
		m.AppName = cfg.About.Name
	}
	m.AboutLines = aboutLines(cfg)
}

// aboutLines is the About block of the help overlay.
func aboutLines(cfg ui.ConfigFile) []string {
	var lines []string
	if cfg.About.Description != "" {
		lines = append(lines, cfg.About.Description)
	}
	if cfg.About.Version != "" {
		lines = append(lines, fmt.Sprintf("Version: %s", cfg.About.Version))
	}
	if cfg.About.GitCommit != "" {
		lines = append(lines, fmt.Sprintf("Commit: %s", cfg.About.GitCommit))
	}
	if cfg.About.RepositoryURL != "" {
		lines = append(lines, cfg.About.RepositoryURL)
	}
	return lines
}

// maxDebugEvents resolves the event cap: an explicit flag wins over the config.
func maxDebugEvents(cfg ui.ConfigFile, flagValue int, flagSet bool) int {
	if flagSet && flagValue > 0 {
		return flagValue
	}
	return ui.IntValue(cfg.Debug.MaxEvents, ui.DefaultMaxDebugEvents)
}

// renderSnapshotOutput centralizes snapshot sizing and model configuration.
func renderSnapshotOutput(s *sheet.Sheet, cfg ui.ConfigFile, opts modelOptions, startKeys []string, noColor bool, widthFlag, heightFlag int, detectedW, detectedH int) string {
	sizing := resolveSnapshotSize(widthFlag, heightFlag, detectedW, detectedH)
	return ui.RenderSnapshot(s, ui.SnapshotConfig{
		Width:     sizing.Width,
		Height:    sizing.Height,
		NoColor:   noColor,
		StartKeys: startKeys,
		Configure: func(m *ui.Model) {
			applyConfigToModel(m, cfg, opts)
		},
	})
}
