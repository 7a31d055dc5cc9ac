package ui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/dyntable/internal/sheet"
)

// RunOptions configures an interactive session.
type RunOptions struct {
	// Width and Height force the window size; 0 follows the terminal.
	Width     int
	Height    int
	NoColor   bool
	Debug     bool
	StartKeys []string
	// DebugSink receives every recorded debug event after the program exits.
	DebugSink func(DebugEvent)
	Configure func(*Model)
}

// RunModel starts the Bubble Tea TUI over s and blocks until the user quits.
// Extra ProgramOptions (e.g., custom IO) can be provided to mirror tea.NewProgram.
func RunModel(s *sheet.Sheet, opts RunOptions, progOpts ...tea.ProgramOption) (*Model, error) {
	m := InitialModel(s)
	m.NoColor = opts.NoColor
	m.DebugMode = opts.Debug
	if opts.Configure != nil {
		opts.Configure(&m)
	}

	if opts.Width > 0 || opts.Height > 0 {
		runW := opts.Width
		runH := opts.Height
		if runW <= 0 || runH <= 0 {
			if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				if runW <= 0 {
					runW = w
				}
				if runH <= 0 {
					runH = h
				}
			}
		}
		if runW <= 0 {
			runW = 80
		}
		if runH <= 0 {
			runH = 24
		}
		m.ForceWindowSize = true
		m.DesiredWinWidth = runW
		m.DesiredWinHeight = runH
		m.WinWidth = runW
		m.WinHeight = runH
		progOpts = append(progOpts, tea.WithWindowSize(runW, runH))
	} else if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		m.WinWidth = w
		m.WinHeight = h
	}

	m.ApplyColorScheme()
	ApplyStartupKeys(&m, opts.StartKeys)
	m.syncAllComponents()

	prog := tea.NewProgram(&m, progOpts...)
	finalModel, err := prog.Run()
	final := &m
	if fm, ok := finalModel.(*Model); ok && fm != nil {
		final = fm
	}
	flushDebugEvents(final, opts.DebugSink)
	return final, err
}

func flushDebugEvents(m *Model, sink func(DebugEvent)) {
	if m == nil || sink == nil {
		return
	}
	for _, ev := range m.DebugEvents {
		sink(ev)
	}
}
