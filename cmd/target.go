package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/idletea/overrun/internal/component"
	"github.com/idletea/overrun/internal/config"
	"github.com/idletea/overrun/internal/registry"
	"github.com/idletea/overrun/internal/runtime"
	"github.com/idletea/overrun/internal/statusui"
)

// targetCommand dispatches `target list` and `target run [--watch] <NAME>`.
func targetCommand(ctx context.Context, logger *log.Logger, opts config.ConfigOptions, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("target: expected a subcommand (list, run)")
	}

	pwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining working directory: %w", err)
	}
	ws, err := config.Resolve(opts, pwd)
	if err != nil {
		return err
	}
	reg, err := registry.Load(ws.TargetDirectories)
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		return targetList(reg)
	case "run":
		runArgs := args[1:]
		fs := flag.NewFlagSet("target run", flag.ContinueOnError)
		watch := fs.Bool("watch", false, "Show a live status view while the target runs")
		if err := fs.Parse(runArgs); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("target run: expected exactly one target name")
		}
		return targetRun(ctx, logger, ws, reg, fs.Arg(0), *watch)
	default:
		return fmt.Errorf("target: unknown subcommand %q", args[0])
	}
}

func targetList(reg *registry.Registry) error {
	names := reg.Names()
	sort.Strings(names)
	for _, name := range names {
		doc, _ := reg.Document(name)
		fmt.Printf("%s\t%s\n", name, doc.Path)
	}
	return nil
}

func targetRun(ctx context.Context, logger *log.Logger, ws *config.Config, reg *registry.Registry, name string, watch bool) error {
	sched := runtime.NewScheduler(component.Global(), logger, ws.CurrentWorkingProject)
	if !watch {
		return sched.Run(ctx, reg, name)
	}

	sink := make(chan component.Event, 64)
	sched.Sink = sink
	return statusui.Watch(ctx, sink, func() error {
		return sched.Run(ctx, reg, name)
	})
}
