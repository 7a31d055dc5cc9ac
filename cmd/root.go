package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/dyntable/internal/ui"
	"github.com/oakwood-commons/dyntable/pkg/logger"
	"github.com/oakwood-commons/dyntable/pkg/settings"
)

// defaultFallbackTermWidth is used when no terminal size can be detected (CI, pipes).
const defaultFallbackTermWidth = 80

type snapshotSize struct {
	Width          int
	Height         int
	DetectedWidth  int
	DetectedHeight int
}

func resolveSnapshotSize(flagWidth, flagHeight, detectedWidth, detectedHeight int) snapshotSize {
	width := flagWidth
	height := flagHeight
	usedDetectW := detectedWidth
	usedDetectH := detectedHeight

	if width <= 0 || height <= 0 {
		if usedDetectW <= 0 || usedDetectH <= 0 {
			if w, h := detectTerminalSize(); w > 0 || h > 0 {
				if usedDetectW <= 0 {
					usedDetectW = w
				}
				if usedDetectH <= 0 {
					usedDetectH = h
				}
			}
		}
		if width <= 0 && usedDetectW > 0 {
			width = usedDetectW
		}
		if height <= 0 && usedDetectH > 0 {
			height = usedDetectH
		}
	}

	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	return snapshotSize{
		Width:          width,
		Height:         height,
		DetectedWidth:  usedDetectW,
		DetectedHeight: usedDetectH,
	}
}

var (
	themeName      string
	configFile     string
	configOutput   string // for configGetCmd (default: yaml)
	keyMode        string // empty = use config
	noColor        bool
	debug          bool
	debugMaxEvents int
	logFile        string
	renderSnapshot bool
	startKeys      []string
	snapshotWidth  int
	snapshotHeight int
	seedColumns    columnsFlag
	seedRowCount   int
	seedRows       []string
)

var (
	stdinIsPiped     = func() bool { stat, _ := os.Stdin.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	openTerminalIOFn = openTerminalIO
	termGetSize      = term.GetSize
	newResizeTicker  = func(d time.Duration) resizeTicker { return realResizeTicker{Ticker: time.NewTicker(d)} }
	sendWindowSize   = func(p *tea.Program, msg tea.WindowSizeMsg) { p.Send(msg) }
	runModel         = ui.RunModel
)

type resizeTicker interface {
	C() <-chan time.Time
	Stop()
}

type realResizeTicker struct {
	*time.Ticker
}

func (t realResizeTicker) C() <-chan time.Time { return t.Ticker.C }

// exitError carries the process exit code for a failed run.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }

// usageErr marks err as invalid user input (exit code 2).
func usageErr(err error) error { return exitError{code: 2, err: err} }

// ExitCode returns the process exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

type debugCollector struct {
	enabled   bool
	events    []ui.DebugEvent
	maxEvents int // Maximum number of events to keep
}

func newDebugCollector(enabled bool, maxEvents int) *debugCollector {
	if maxEvents <= 0 {
		maxEvents = ui.DefaultMaxDebugEvents
	}
	return &debugCollector{
		enabled:   enabled,
		maxEvents: maxEvents,
	}
}

func (d *debugCollector) Printf(format string, args ...interface{}) {
	if !d.enabled {
		return
	}
	d.record(fmt.Sprintf(format, args...))
}

// Add records an event produced by the TUI.
func (d *debugCollector) Add(ev ui.DebugEvent) {
	if !d.enabled {
		return
	}
	d.events = append(d.events, ev)
	d.trim()
}

func (d *debugCollector) record(msg string) {
	msg = strings.TrimRight(msg, "\n")
	d.events = append(d.events, ui.DebugEvent{Time: time.Now(), Message: msg})
	d.trim()
}

// trim keeps the last maxEvents events.
func (d *debugCollector) trim() {
	if d.maxEvents > 0 && len(d.events) > d.maxEvents {
		d.events = d.events[len(d.events)-d.maxEvents:]
	}
}

var rootCtx = context.Background()

func printDebugEvents(events []ui.DebugEvent) {
	if len(events) == 0 {
		return
	}
	sorted := append([]ui.DebugEvent(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	lgr := logger.FromContext(rootCtx)
	for i, ev := range sorted {
		lgr.Info(ev.Message, logger.EventIndexKey, i+1, logger.EventTimeKey, ev.Time.Format(time.RFC3339Nano))
	}
}

func detectTerminalSize() (int, int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 0
}

// cliVersionString builds a human-readable version string for CLI output and Cobra's --version flag.
func cliVersionString() string {
	cfg, _ := loadMergedConfig(resolveConfigPath(""))

	name := cfg.About.Name
	if name == "" {
		name = settings.CliBinaryName
	}
	version := cfg.About.Version
	if version == "" {
		version = "dev"
	}
	goVersion := cfg.About.GoVersion
	if goVersion == "" {
		goVersion = runtime.Version()
	}
	return fmt.Sprintf("%s %s (go %s)", name, version, goVersion)
}

func getCLIShortHelp() string {
	cfg, _ := loadMergedConfig(resolveConfigPath(""))
	name := cfg.About.Name
	if name == "" {
		name = settings.CliBinaryName
	}
	return fmt.Sprintf("%s - %s", name, strings.ToLower(cfg.About.Description))
}

const cliLongHelp = `Build a table interactively: add typed columns (String or Number, at most 10),
add and delete rows, edit cells, sort a Number column, and search or filter rows.

Cell input is a comma-separated list of tokens. Number columns accept numeric tokens
only. Searches and filters always run over the original rows; press the reset key to
show them all again.

The table can be seeded from the config file (ui.table) or from flags. Flag columns
replace the configured ones; flag rows are appended after the configured rows.

Configuration is read from --config-file, $XDG_CONFIG_HOME/dyntable/config.yaml or
~/.config/dyntable/config.yaml, merged over the embedded defaults. Files ending in
.toml are read as TOML.`

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print dyntable version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return nil
	},
}

// configCmd groups configuration-related subcommands similar to gh-style CLIs.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dyntable configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigView(cmd.OutOrStdout())
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runThemesList(cmd.OutOrStdout())
	},
}

// runThemesList prints the available themes from merged configuration
func runThemesList(w io.Writer) error {
	merged, err := loadMergedConfig(resolveConfigPath(configFile))
	if err != nil {
		return usageErr(err)
	}
	fmt.Fprintf(w, "Available themes (default: %s):\n", defaultThemeName(merged))
	for _, name := range themeNames(merged) {
		fmt.Fprintf(w, " - %s\n", name)
	}
	return nil
}

// runConfigView prints the configuration honoring --output. raw prints the user's config
// file verbatim, or the embedded defaults when there is none; the other formats print
// the merged config without build metadata.
func runConfigView(w io.Writer) error {
	resolved := resolveConfigPath(configFile)
	if strings.EqualFold(strings.TrimSpace(configOutput), "raw") {
		var raw []byte
		var err error
		if resolved != "" {
			raw, err = os.ReadFile(resolved)
			if err != nil {
				return fmt.Errorf("failed to read config file %s: %w", resolved, err)
			}
		} else if raw, err = loadDefaultConfigRaw(); err != nil {
			return fmt.Errorf("failed to read default config: %w", err)
		}
		if len(raw) > 0 && raw[len(raw)-1] != '\n' {
			raw = append(raw, '\n')
		}
		_, err = w.Write(raw)
		return err
	}

	merged, err := loadMergedConfig(resolved)
	if err != nil {
		return usageErr(err)
	}
	data, err := formatConfig(sanitizeConfig(merged), configOutput)
	if err != nil {
		return usageErr(err)
	}
	_, err = w.Write(data)
	return err
}

// getProgramOptions handles piped stdin by reopening the terminal for interactive input/output.
// Returns tea.ProgramOption values (plus a cleanup) that should be passed to tea.NewProgram.
func getProgramOptions() ([]tea.ProgramOption, func()) {
	cleanup := func() {}
	if !stdinIsPiped() {
		return nil, cleanup
	}

	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		// No controlling terminal (some CI environments): keep the piped stdin.
		return nil, cleanup
	}
	cleanup = func() {
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(ttyIn)}
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut), withTTYResizeWatcher(ctx, ttyOut))
	}

	return opts, func() {
		cancel()
		cleanup()
	}
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}

	if out == "" || out == in {
		return input, input, nil
	}

	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, err
	}

	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}

	return "/dev/tty", "/dev/tty"
}

// withTTYResizeWatcher polls terminal size and sends resize messages when signals are unreliable
// (e.g., piped stdin on Windows). It stops when the context is canceled.
func withTTYResizeWatcher(ctx context.Context, out *os.File) tea.ProgramOption {
	return func(p *tea.Program) {
		if ctx == nil || out == nil {
			return
		}

		go func() {
			t := newResizeTicker(250 * time.Millisecond)
			defer t.Stop()

			lastW, lastH := 0, 0
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C():
					w, h, err := termGetSize(int(out.Fd()))
					if err != nil {
						continue
					}
					if w == lastW && h == lastH {
						continue
					}
					lastW, lastH = w, h
					sendWindowSize(p, tea.WindowSizeMsg{Width: w, Height: h})
				}
			}
		}()
	}
}

// openLogOutput returns the log sink for --log-file and a func that closes it. It falls
// back to stderr, whose closer does nothing.
func openLogOutput(path string) (io.Writer, func()) {
	if strings.TrimSpace(path) == "" {
		return os.Stderr, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v\n", path, err)
		return os.Stderr, func() {}
	}
	return f, func() { _ = f.Close() }
}

var (
	openLogOutputFn = openLogOutput
	// closeLogOutput closes the sink opened for the current command; Execute calls it
	// after flushing the logger.
	closeLogOutput = func() {}
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName,
	Short: getCLIShortHelp(),
	Long:  cliLongHelp,
	Example: "\n  dyntable\n" +
		"  dyntable --column Name:String --column Score:Number --row 'alice;10' --row 'bob;20,30'\n" +
		"  dyntable --column Score:Number --rows 3 --key-mode emacs\n" +
		"  dyntable --snapshot --width 100 --height 30 --press 'c' --press 'Score<Tab><Right><CR>'\n",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		run := settings.NewCliParams()
		run.Debug = debug
		run.NoColor = noColor
		run.LogFile = logFile

		w, closeFn := openLogOutputFn(run.LogFile)
		closeLogOutput = closeFn
		lgr := logger.GetWithOutput(run.LogLevel(), w)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
		rootCtx = settings.IntoContext(logger.WithLogger(context.Background(), lgr), run)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRoot(cmd, cmd.OutOrStdout())
	},
}

// runRoot loads the config, seeds the sheet and either prints a snapshot or runs the TUI.
func runRoot(cmd *cobra.Command, out io.Writer) error {
	run := settings.FromContextOrDefault(rootCtx)
	colorOff := noColor || run.NoColor || os.Getenv("NO_COLOR") != ""

	resolved := resolveConfigPath(configFile)
	cfg, err := loadConfigState(resolved, themeName, cmd.Flags().Changed("theme"))
	if err != nil {
		printThemeSelectionError(cmd.ErrOrStderr(), err)
		return usageErr(err)
	}

	mode, err := effectiveKeyMode(cfg, keyMode)
	if err != nil {
		return usageErr(err)
	}
	keys, err := ui.NewKeyMap(mode, cfg.Keys)
	if err != nil {
		return usageErr(fmt.Errorf("ui.keys: %w", err))
	}

	seed := seedFromConfig(cfg, seedColumns.cols, seedRowCount, cmd.Flags().Changed("rows"), seedRows)
	s, err := buildSheet(seed)
	if err != nil {
		return usageErr(err)
	}

	opts := modelOptions{
		KeyMode:        mode,
		Keys:           keys,
		MaxDebugEvents: maxDebugEvents(cfg, debugMaxEvents, cmd.Flags().Changed("debug-max-events")),
	}
	dc := newDebugCollector(debug || run.Debug, opts.MaxDebugEvents)
	dc.Printf("DBG: config=%q key_mode=%s columns=%d rows=%d", resolved, mode, s.ColumnCount(), s.RowCount())

	if renderSnapshot {
		view := renderSnapshotOutput(s, cfg, opts, startKeys, colorOff, snapshotWidth, snapshotHeight, 0, 0)
		fmt.Fprintln(out, view)
		printDebugEvents(dc.events)
		return nil
	}

	progOpts, cleanup := getProgramOptions()
	defer cleanup()

	_, err = runModel(s, ui.RunOptions{
		Width:     snapshotWidth,
		Height:    snapshotHeight,
		NoColor:   colorOff,
		Debug:     dc.enabled,
		StartKeys: startKeys,
		DebugSink: dc.Add,
		Configure: func(m *ui.Model) {
			applyConfigToModel(m, cfg, opts)
		},
	}, progOpts...)
	printDebugEvents(dc.events)
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func init() { //nolint:gochecknoinits
	rootCmd.Flags().StringVar(&themeName, "theme", "", "theme name (default from config; see 'dyntable config themes')")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML or TOML config file (themes, keys, table seed)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "record debug events and log them on exit")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write JSON logs to this file instead of stderr")
	rootCmd.Flags().IntVar(&debugMaxEvents, "debug-max-events", ui.DefaultMaxDebugEvents, "maximum number of debug events to keep")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.Flags().StringVar(&keyMode, "key-mode", "", "keybinding mode: vim (default) or emacs")
	rootCmd.Flags().Var(&seedColumns, "column", "add a startup column as Name:Type (String or Number); repeatable")
	rootCmd.Flags().IntVar(&seedRowCount, "rows", 0, "number of empty rows to add at startup")
	rootCmd.Flags().StringArrayVar(&seedRows, "row", nil, "add a startup row; cells are separated by ';' (e.g. 'alice;10,20'); repeatable")
	rootCmd.Flags().BoolVar(&renderSnapshot, "snapshot", false, "render a single TUI snapshot and exit; honors --width/--height")
	rootCmd.Flags().StringArrayVar(&startKeys, "press", nil, "Simulate keys on startup. Use <Key> for special keys (e.g. <F1>, <Tab>, <CR>, <Esc>). Literal text types normally.")
	rootCmd.Flags().IntVar(&snapshotWidth, "width", 0, "window width in columns (default: terminal width)")
	rootCmd.Flags().IntVar(&snapshotHeight, "height", 0, "window height in rows (default: terminal height)")
	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd)

	configGetCmd.Flags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|json|toml|raw")
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configThemesCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	logger.Sync()
	closeLogOutput()
	closeLogOutput = func() {}
	return err
}
