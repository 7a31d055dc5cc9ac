package ui

import (
	"strings"

	"github.com/oakwood-commons/dyntable/internal/sheet"
)

// SnapshotConfig configures snapshot rendering.
type SnapshotConfig struct {
	Width     int
	Height    int
	NoColor   bool
	StartKeys []string
	Configure func(*Model)
}

// RenderSnapshot builds a model over s, replays the startup keys and returns one frame.
func RenderSnapshot(s *sheet.Sheet, cfg SnapshotConfig) string {
	m := SnapshotModel(s, cfg)
	view := m.Render()
	if cfg.Height > 0 {
		view = padSnapshotHeight(view, cfg.Height, cfg.Width)
	}
	return view
}

// SnapshotModel returns the model RenderSnapshot draws, for callers that also want to
// inspect state after the keys ran.
func SnapshotModel(s *sheet.Sheet, cfg SnapshotConfig) *Model {
	m := InitialModel(s)
	m.NoColor = cfg.NoColor
	if cfg.Width > 0 {
		m.WinWidth = cfg.Width
	}
	if cfg.Height > 0 {
		m.WinHeight = cfg.Height
	}
	if cfg.Configure != nil {
		cfg.Configure(&m)
	}
	m.ApplyColorScheme()
	m.syncAllComponents()
	ApplyStartupKeys(&m, cfg.StartKeys)
	m.syncAllComponents()
	return &m
}

func padSnapshotHeight(view string, height, width int) string {
	if height <= 0 {
		return view
	}
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	if len(lines) >= height {
		return strings.Join(lines, "\n")
	}
	padLine := " "
	if width > 1 {
		padLine = strings.Repeat(" ", width)
	}
	for len(lines) < height {
		lines = append(lines, padLine)
	}
	return strings.Join(lines, "\n")
}
