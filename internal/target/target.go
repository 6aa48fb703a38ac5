// Package target instantiates a TargetDef's components and drives the
// resulting Target through its four-phase lifecycle.
package target

import (
	"context"
	"errors"
	"fmt"

	"github.com/idletea/overrun/internal/component"
	"github.com/idletea/overrun/internal/parallel"
	"github.com/idletea/overrun/internal/registry"
)

// Target is a resolved TargetDef with its components instantiated and
// partitioned by capability, in declared order. Two Targets with the
// same Name hash equal; the registry guarantees only one ever exists
// per run.
type Target struct {
	Name    string
	Path    string
	Project string

	starts []component.Startable
	runs   []component.Runable
	stops  []component.Stopable
	resets []component.Resetable
}

// FromDef instantiates every component declared on def, in declared
// order, against the shared ctx, and partitions the resulting
// instances by capability.
func FromDef(def *registry.TargetDef, ctx *component.Context) (*Target, error) {
	t := &Target{Name: def.Name, Path: def.Path, Project: def.Project}

	for _, cd := range def.Components {
		inst, err := cd.Ctor(ctx, cd.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: component %q: %w", def.Name, cd.Name, err)
		}
		if s, ok := inst.(component.Startable); ok {
			t.starts = append(t.starts, s)
		}
		if r, ok := inst.(component.Runable); ok {
			t.runs = append(t.runs, r)
		}
		if s, ok := inst.(component.Stopable); ok {
			t.stops = append(t.stops, s)
		}
		if r, ok := inst.(component.Resetable); ok {
			t.resets = append(t.resets, r)
		}
	}

	return t, nil
}

// Startable reports whether any component declares a start capability.
// A target with none is considered started the moment it becomes
// ready in the DAG.
func (t *Target) Startable() bool { return len(t.starts) > 0 }

// Runable reports whether any component declares a run capability.
func (t *Target) Runable() bool { return len(t.runs) > 0 }

// Stopable reports whether any component declares a stop capability.
func (t *Target) Stopable() bool { return len(t.stops) > 0 }

// Resetable reports whether any component declares a reset capability.
func (t *Target) Resetable() bool { return len(t.resets) > 0 }

// Equal reports whether two Targets share the same identity.
func (t *Target) Equal(other *Target) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Name == other.Name
}

// Start invokes every startable sequentially, in declared order. The
// first failure aborts the remainder and is returned.
func (t *Target) Start(ctx *component.Context) error {
	publish(ctx, "starting", nil)
	for _, s := range t.starts {
		if err := s.Start(ctx); err != nil {
			publish(ctx, "start_failed", err)
			return fmt.Errorf("%s: start: %w", t.Name, err)
		}
	}
	publish(ctx, "started", nil)
	return nil
}

// Run invokes every runable concurrently, waits for all to complete,
// and propagates a joined error if any failed.
func (t *Target) Run(ctx *component.Context) error {
	if len(t.runs) == 0 {
		return nil
	}

	pool := parallel.NewWorkerPool(context.Background(), 0, false)
	for i, r := range t.runs {
		r := r
		taskID := fmt.Sprintf("%s#%d", t.Name, i)
		pool.Submit(taskID, func() error { return r.Run(ctx) })
	}

	_, errs := pool.Wait()
	if len(errs) > 0 {
		err := fmt.Errorf("%s: run: %w", t.Name, errors.Join(errs...))
		publish(ctx, "run_failed", err)
		return err
	}
	publish(ctx, "ran", nil)
	return nil
}

// Stop invokes every stopable sequentially, in reverse declared order.
// Individual failures are logged but never abort the remaining stops.
func (t *Target) Stop(ctx *component.Context) {
	publish(ctx, "stopping", nil)
	for i := len(t.stops) - 1; i >= 0; i-- {
		if err := t.stops[i].Stop(ctx); err != nil {
			if ctx.Log != nil {
				ctx.Log.Warn("stop failed", "target", t.Name, "error", err)
			}
		}
	}
	publish(ctx, "stopped", nil)
}

// Reset invokes every resetable concurrently and propagates a joined
// error if any failed.
func (t *Target) Reset(ctx *component.Context) error {
	if len(t.resets) == 0 {
		return nil
	}

	pool := parallel.NewWorkerPool(context.Background(), 0, false)
	for i, r := range t.resets {
		r := r
		taskID := fmt.Sprintf("%s#%d", t.Name, i)
		pool.Submit(taskID, func() error { return r.Reset(ctx) })
	}

	_, errs := pool.Wait()
	if len(errs) > 0 {
		return fmt.Errorf("%s: reset: %w", t.Name, errors.Join(errs...))
	}
	return nil
}

// publish sends a lifecycle-phase event to ctx's event queue without
// blocking the caller if nobody is currently draining it.
func publish(ctx *component.Context, kind string, err error) {
	if ctx == nil || ctx.Events == nil {
		return
	}
	var data any
	if err != nil {
		data = err.Error()
	}
	select {
	case ctx.Events <- component.Event{TargetName: ctx.TargetName, Kind: kind, Data: data}:
	default:
	}
}
