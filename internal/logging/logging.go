// Package logging provides structured console logging built on
// charmbracelet/log, shared by the CLI and every core subsystem.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Options configures a logger.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	ReportCaller    bool
	Prefix          string
}

// Default returns the options used when nothing more specific was
// requested: info level, text formatting, timestamps on, caller off.
func Default() Options {
	return Options{
		Level:           log.InfoLevel,
		Formatter:       log.TextFormatter,
		ReportTimestamp: true,
		ReportCaller:    false,
		Prefix:          "overrun",
	}
}

// New builds a *log.Logger writing to w with the given options.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
		Prefix:          opts.Prefix,
	})
}

// NewConsole builds a logger writing to stdout using Default options, with
// verbose/quiet applied per the CLI's mutually-exclusive --verbose/-v and
// --quiet/-q flags (§6). Neither flag set leaves the level at info.
func NewConsole(verbose, quiet bool) *log.Logger {
	opts := Default()
	switch {
	case verbose:
		opts.Level = log.DebugLevel
	case quiet:
		opts.Level = log.WarnLevel
	}
	return New(os.Stdout, opts)
}

// ForTarget returns a child logger that adds a `target` field holding
// the target's name to every entry, so that concurrent output from
// several targets' lifecycle methods stays attributable.
func ForTarget(base *log.Logger, targetName string) *log.Logger {
	return base.With("target", targetName)
}

// ParseLevel parses a string log level to a charmbracelet/log Level,
// defaulting to info on an unrecognized value.
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter parses a string formatter name to a charmbracelet/log
// Formatter, defaulting to text on an unrecognized value.
func ParseFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
