package config

import (
	"flag"
	"fmt"
)

// Flags holds the global CLI flags every subcommand shares (§6).
type Flags struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

// RegisterFlags installs the shared global flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Verbose, "verbose", false, "Enable verbose (debug) logging")
	fs.BoolVar(&f.Verbose, "v", false, "Enable verbose (debug) logging")
	fs.BoolVar(&f.Quiet, "quiet", false, "Suppress all but warning/error logging")
	fs.BoolVar(&f.Quiet, "q", false, "Suppress all but warning/error logging")
	return f
}

// Validate enforces that --verbose and --quiet are mutually exclusive.
func (f *Flags) Validate() error {
	if f.Verbose && f.Quiet {
		return fmt.Errorf("--verbose/-v and --quiet/-q are mutually exclusive")
	}
	return nil
}
