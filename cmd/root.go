// Package cmd implements the overrun CLI command structure.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/idletea/overrun/internal/config"
	"github.com/idletea/overrun/internal/logging"

	_ "github.com/idletea/overrun/internal/components/exec"
	_ "github.com/idletea/overrun/internal/components/homebrew"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the overrun CLI: parses the shared global flags, loads
// configuration, resolves the workspace, and dispatches to the
// requested subcommand.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("overrun", flag.ContinueOnError)
	gf := config.RegisterFlags(fs)
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if err := gf.Validate(); err != nil {
		return err
	}

	remaining := fs.Args()
	subcommand := "target"
	if len(remaining) > 0 {
		subcommand = remaining[0]
		remaining = remaining[1:]
	}

	if subcommand == "version" {
		return versionCommand()
	}

	log := logging.NewConsole(gf.Verbose, gf.Quiet)

	opts, cfgErr := config.AttemptInit(gf.ConfigPath)

	switch subcommand {
	case "doctor":
		return doctorCommand(log, opts, cfgErr)
	case "config":
		return configCommand(opts, cfgErr)
	case "target":
		if cfgErr != nil {
			return cfgErr
		}
		return targetCommand(ctx, log, opts, remaining)
	case "component":
		return componentCommand(remaining)
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func printUsage(fs *flag.FlagSet, w *os.File) {
	fmt.Fprintln(w, "Usage: overrun [global flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version                print version and exit")
	fmt.Fprintln(w, "  doctor                 print config status and discovered workspace")
	fmt.Fprintln(w, "  config                 emit the effective config as TOML")
	fmt.Fprintln(w, "  target list            list known target names and defining files")
	fmt.Fprintln(w, "  target run [--watch] <NAME>  drive a target's lifecycle")
	fmt.Fprintln(w, "  component list         list registered component types")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fs.PrintDefaults()
}

func versionCommand() error {
	fmt.Println(Version)
	return nil
}
