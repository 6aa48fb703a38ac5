// Package component defines the lifecycle capability interfaces that a
// target's components may implement, and the Context handed to every
// lifecycle method.
package component

import (
	"context"

	"github.com/charmbracelet/log"
)

// Context is the per-target runtime handle passed into every lifecycle
// method. It is frozen once constructed.
type Context struct {
	// TargetName is the name of the target this component belongs to.
	TargetName string

	// Cwd is the target file's parent directory.
	Cwd string

	// Cwp is the current working project root.
	Cwp string

	// Events is the runtime's shared event queue. Components may publish
	// to it; the runtime owns draining it.
	Events chan<- Event

	// Log is the logger scoped to this target.
	Log *log.Logger

	// Ctx is cancelled when the scheduler observes a stop signal, and
	// once the lifecycle driver has returned. A start or run failure does
	// not cancel it: other targets' starts and runs already in flight
	// continue until they return on their own. A component whose
	// lifecycle methods block on I/O (subprocess wait, network read)
	// should select on it to unwind promptly; components that complete
	// quickly may ignore it.
	Ctx context.Context
}

// Event is a forward-looking extensibility affordance: the runtime drains
// a single shared queue of these for the lifetime of a run. No built-in
// component type emits one yet, but the channel is always provisioned so
// that adding a producer later is not a breaking change.
type Event struct {
	TargetName string
	Kind       string
	Data       any
}

// Startable components run start-up logic sequentially, in declared order,
// before any dependent target may start.
type Startable interface {
	Start(ctx *Context) error
}

// Runable components run concurrently with every other runable component
// of the same target once all of the target's dependencies have started.
type Runable interface {
	Run(ctx *Context) error
}

// Stopable components are torn down sequentially, in reverse declared
// order, during the stop phase.
type Stopable interface {
	Stop(ctx *Context) error
}

// Resetable components reset concurrently with every other resetable
// component of the same target.
type Resetable interface {
	Reset(ctx *Context) error
}

// Component is any value returned by a registered constructor. It carries
// no methods of its own: the four capability interfaces above are
// detected structurally via type assertion, not declared by embedding.
type Component interface{}

// Constructor builds a Component from a target's Context and the
// component's own argument table (the TOML table deserialized into
// map[string]any).
type Constructor func(ctx *Context, args map[string]any) (Component, error)
