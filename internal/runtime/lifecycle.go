package runtime

import (
	"context"
	"fmt"

	"github.com/idletea/overrun/internal/component"
	"github.com/idletea/overrun/internal/registry"
	"github.com/idletea/overrun/internal/target"
)

type startOutcome struct {
	name string
	err  error
}

// driveLifecycle runs the three-phase driver described in §4.5:
// dependency-ordered parallel start, unordered parallel run, then a
// sequential stop in reverse start-completion order. Phase 3 always
// runs, covering exactly the targets whose start completed, regardless
// of whether ctx was cancelled partway through phases 1 or 2.
func (s *Scheduler) driveLifecycle(ctx context.Context, defs map[string]*registry.TargetDef, events chan component.Event) error {
	targets, ctxs, startOrder, cancelled, startErr := s.phase1Start(ctx, defs, events)

	var runErr error
	if startErr == nil && !cancelled {
		runErr = s.phase2Run(ctx, targets, ctxs, startOrder)
	}

	s.phase3Stop(targets, ctxs, startOrder)

	if startErr != nil {
		return startErr
	}
	return runErr
}

// phase1Start uses the dependency DAG as a ready-queue: as soon as a
// target's dependencies have all finished starting, its own start is
// dispatched. A target with no start capability is marked done the
// instant it becomes ready, so its dependents are immediately
// eligible. The phase stops dispatching new starts once ctx is
// cancelled but still awaits every start already in flight, so that
// whichever targets did start are stopped cleanly in phase 3.
func (s *Scheduler) phase1Start(
	ctx context.Context,
	defs map[string]*registry.TargetDef,
	events chan component.Event,
) (targets map[string]*target.Target, ctxs map[string]*component.Context, startOrder []string, cancelled bool, err error) {
	queue := registry.NewTopoQueue[string]()
	for name, def := range defs {
		deps := make([]string, 0, len(def.Dependencies))
		for _, dep := range def.Dependencies {
			deps = append(deps, dep.Name)
		}
		queue.Add(name, deps...)
	}
	if cycle, found := queue.Prepare(); found {
		return nil, nil, nil, false, &registry.DependencyCycleError{Path: cycle}
	}

	targets = make(map[string]*target.Target, len(defs))
	ctxs = make(map[string]*component.Context, len(defs))
	dispatched := make(map[string]bool, len(defs))
	completions := make(chan startOutcome, len(defs))

	pending := 0

	for {
		if !cancelled {
			select {
			case <-ctx.Done():
				cancelled = true
			default:
			}
		}

		dispatchedAny := false
		if !cancelled {
			for _, name := range queue.Ready() {
				if dispatched[name] {
					continue
				}
				dispatched[name] = true
				dispatchedAny = true

				def := defs[name]
				tctx := s.newTargetContext(ctx, def, events)
				ctxs[name] = tctx

				tgt, ferr := target.FromDef(def, tctx)
				if ferr != nil {
					// Stop dispatching, but keep draining starts already in
					// flight so that they reach startOrder and are stopped.
					if err == nil {
						err = fmt.Errorf("target %s: %w", name, ferr)
					}
					cancelled = true
					break
				}
				targets[name] = tgt

				if !tgt.Startable() {
					// Marking this target done here may have just made one
					// of its dependents ready; the outer loop re-polls
					// Ready() on its next iteration rather than waiting on
					// ctx.Done() below.
					queue.Done(name)
					startOrder = append(startOrder, name)
					continue
				}

				pending++
				go func(name string, tgt *target.Target, tctx *component.Context) {
					completions <- startOutcome{name: name, err: tgt.Start(tctx)}
				}(name, tgt, tctx)
			}
		}

		if pending == 0 {
			if cancelled || !queue.Active() {
				return targets, ctxs, startOrder, cancelled, err
			}
			if dispatchedAny {
				continue
			}
			// Nothing ready, nothing in flight: the only way forward is
			// an external cancellation.
			<-ctx.Done()
			cancelled = true
			continue
		}

		out := <-completions
		pending--
		if out.err != nil {
			if err == nil {
				err = fmt.Errorf("target %s: start: %w", out.name, out.err)
			}
			cancelled = true
			continue
		}
		queue.Done(out.name)
		startOrder = append(startOrder, out.name)
	}
}

// phase2Run dispatches every started target's run concurrently and
// waits for all to finish. A run failure is reported but does not stop
// the phase from waiting on its siblings; cancellation likewise lets
// every in-flight run finish before returning.
func (s *Scheduler) phase2Run(
	ctx context.Context,
	targets map[string]*target.Target,
	ctxs map[string]*component.Context,
	startOrder []string,
) error {
	type runnableTarget struct {
		tgt  *target.Target
		tctx *component.Context
	}
	var runnable []runnableTarget
	for _, name := range startOrder {
		if tgt := targets[name]; tgt != nil && tgt.Runable() {
			runnable = append(runnable, runnableTarget{tgt: tgt, tctx: ctxs[name]})
		}
	}
	if len(runnable) == 0 {
		return nil
	}

	completions := make(chan error, len(runnable))
	for _, r := range runnable {
		r := r
		go func() { completions <- r.tgt.Run(r.tctx) }()
	}

	var firstErr error
	for range runnable {
		if e := <-completions; e != nil && firstErr == nil {
			firstErr = e
		}
	}
	return firstErr
}

// phase3Stop iterates startOrder in reverse, stopping every stopable
// target regardless of individual failures. This phase is not itself
// interruptible: once begun it runs to completion.
func (s *Scheduler) phase3Stop(targets map[string]*target.Target, ctxs map[string]*component.Context, startOrder []string) {
	for i := len(startOrder) - 1; i >= 0; i-- {
		name := startOrder[i]
		tgt := targets[name]
		if tgt == nil || !tgt.Stopable() {
			continue
		}
		tgt.Stop(ctxs[name])
	}
}
