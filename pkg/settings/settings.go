// Package settings provides build metadata, per-run options and context helpers
// shared by the dyntable CLI and the TUI packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "dyntable"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the options of a single invocation.
type Run struct {
	// MinLogLevel is a zapcore level: -1 debug, 0 info.
	MinLogLevel int8
	// LogFile redirects the JSON log sink; empty means stderr.
	LogFile string
	// Debug records TUI debug events and flushes them through the logger on exit.
	Debug       bool
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults used by the CLI.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}

// LogLevel returns the zap level implied by the run: debug when Debug is set.
func (r *Run) LogLevel() int8 {
	if r == nil {
		return 0
	}
	if r.Debug && r.MinLogLevel > -1 {
		return -1
	}
	return r.MinLogLevel
}
