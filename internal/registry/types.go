// Package registry loads target documents, assigns names, and builds the
// dependency DAG of fully-resolved TargetDefs for a requested root
// target.
package registry

import (
	"fmt"
	"strings"

	"github.com/idletea/overrun/internal/component"
)

// Cause is a string-stable error cause code for registry failures.
type Cause string

const (
	CauseNoConfig             Cause = "NoConfig"
	CauseDependencyCycle      Cause = "DependencyCycle"
	CauseUnknownDependency    Cause = "UnknownDependency"
	CauseUnknownComponentType Cause = "UnknownComponentType"
	CauseNameCollision        Cause = "NameCollision"
	CauseInvalidTargetDoc     Cause = "InvalidTargetDocument"
)

// Error is a registry failure. A single Error may aggregate multiple
// per-file messages and multiple name collisions, per the "TargetErrors"
// aggregate outcome.
type Error struct {
	Cause      Cause
	Messages   []string
	Collisions []string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Cause))
	for _, m := range e.Messages {
		b.WriteString(": ")
		b.WriteString(m)
	}
	for _, c := range e.Collisions {
		b.WriteString(": ")
		b.WriteString(c)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// DependencyCycleError reports a cyclical target dependency. Path is the
// cycle, in traversal order, closing back on its start (so joining with
// " -> " reads e.g. "x -> y -> z -> x").
type DependencyCycleError struct {
	Path []string
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("%s: %s", CauseDependencyCycle, strings.Join(e.Path, " -> "))
}

// TargetDocument is the raw, parsed form of a target file.
type TargetDocument struct {
	// Path is the canonical path of the file.
	Path string

	// Project is the project root under which the file was discovered.
	Project string

	// Name is the explicit target.name, if present.
	Name string

	// Dependencies is target.dependencies, always non-nil (defaults to
	// an empty slice, never left nil — per the resolved open question).
	Dependencies []string

	// Components holds every other top-level table: component-type name
	// to its argument table.
	Components []ComponentDeclaration
}

// ComponentDeclaration is one `[<component-type>]` table as it appeared
// in the target file, in declared order.
type ComponentDeclaration struct {
	TypeName string
	Args     map[string]any
}

// ComponentDef is a component-type name, its constructor, and its
// argument map.
type ComponentDef struct {
	Name string
	Ctor component.Constructor
	Args map[string]any
}

// TargetDef is the resolved, instantiable target: identity is (Name,
// Path), which is also the hash key used across the system.
type TargetDef struct {
	Name         string
	Path         string
	Project      string
	Dependencies []*TargetDef
	Components   []ComponentDef
}

// key returns the identity tuple used for equality and hashing.
func (d *TargetDef) key() string { return d.Name + "\x00" + d.Path }

// Equal reports whether two TargetDefs share the same identity.
func (d *TargetDef) Equal(other *TargetDef) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.key() == other.key()
}
