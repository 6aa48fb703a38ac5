// Package runtime drives the three-phase start/run/stop lifecycle of a
// target's dependency graph, installing POSIX signal handlers for
// graceful shutdown.
package runtime

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/idletea/overrun/internal/component"
	"github.com/idletea/overrun/internal/logging"
	"github.com/idletea/overrun/internal/registry"
)

// Scheduler drives one root target's lifecycle against a component
// catalog, logging through base and publishing to a private event
// queue for the lifetime of the run.
type Scheduler struct {
	Catalog *component.Catalog
	Log     *log.Logger
	Cwp     string

	// Sink, if set, receives a copy of every event the run emits. It is
	// a forward-looking affordance (§9): the core never reads from it
	// and works identically whether or not a caller sets one. An
	// external watcher (e.g. `target run --watch`'s status view) may
	// subscribe here without the scheduler importing anything about it.
	Sink chan<- component.Event
}

// NewScheduler returns a Scheduler bound to catalog and base.
func NewScheduler(catalog *component.Catalog, base *log.Logger, cwp string) *Scheduler {
	return &Scheduler{Catalog: catalog, Log: base, Cwp: cwp}
}

// Run resolves rootName's dependency DAG from reg and drives it through
// start, run, and stop. It installs SIGINT/SIGTERM handlers for the
// duration of the call and always uninstalls them before returning.
//
// A stop signal observed before the lifecycle driver finishes on its
// own is treated as a clean shutdown: Run returns nil once the driver
// has unwound through its stop phase. Any error the driver itself
// produces (a start or run failure) is returned only when the driver
// completes before being interrupted by a signal.
func (s *Scheduler) Run(ctx context.Context, reg *registry.Registry, rootName string) error {
	root, err := reg.Build(rootName, s.Catalog)
	if err != nil {
		return err
	}
	defs := flatten(root)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sigDone := make(chan struct{})
	go s.watchSignals(runCtx, sigCh, cancel, sigDone)

	events := make(chan component.Event)
	go s.pumpEvents(runCtx, events)

	driverDone := make(chan error, 1)
	go func() { driverDone <- s.driveLifecycle(runCtx, defs, events) }()

	select {
	case <-sigDone:
		cancel()
		<-driverDone
		return nil
	case derr := <-driverDone:
		cancel()
		return derr
	}
}

func (s *Scheduler) watchSignals(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc, done chan<- struct{}) {
	select {
	case <-sigCh:
		cancel()
		close(done)
	case <-ctx.Done():
	}
}

// pumpEvents drains the shared event queue for the lifetime of the run.
// No built-in component publishes to it yet; this is a forward-looking
// extensibility stub (§9).
func (s *Scheduler) pumpEvents(ctx context.Context, events <-chan component.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			s.Log.Debug("event", "target", ev.TargetName, "kind", ev.Kind)
			if s.Sink != nil {
				select {
				case s.Sink <- ev:
				default:
				}
			}
		}
	}
}

func (s *Scheduler) newTargetContext(ctx context.Context, def *registry.TargetDef, events chan<- component.Event) *component.Context {
	return &component.Context{
		TargetName: def.Name,
		Cwd:        filepath.Dir(def.Path),
		Cwp:        s.Cwp,
		Events:     events,
		Log:        logging.ForTarget(s.Log, def.Name),
		Ctx:        ctx,
	}
}

// flatten walks the resolved TargetDef graph reachable from root,
// returning every node keyed by name.
func flatten(root *registry.TargetDef) map[string]*registry.TargetDef {
	defs := map[string]*registry.TargetDef{root.Name: root}
	stack := []*registry.TargetDef{root}
	for len(stack) > 0 {
		def := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range def.Dependencies {
			if _, ok := defs[dep.Name]; !ok {
				defs[dep.Name] = dep
				stack = append(stack, dep)
			}
		}
	}
	return defs
}
