package registry

import (
	"fmt"

	"github.com/idletea/overrun/internal/component"
)

// Build resolves rootName and everything it transitively depends on
// into a DAG of *TargetDef, instantiating each declared component
// against catalog. Unknown dependency names, unknown component types,
// and dependency cycles are each reported as an aggregated *Error (or
// *DependencyCycleError for cycles), never a partial graph.
func (r *Registry) Build(rootName string, catalog *component.Catalog) (*TargetDef, error) {
	if _, ok := r.docs[rootName]; !ok {
		return nil, &Error{Cause: CauseUnknownDependency, Messages: []string{
			fmt.Sprintf("unknown target %q", rootName),
		}}
	}

	reachable, unknown := r.collectReachable(rootName)
	if len(unknown) > 0 {
		return nil, &Error{Cause: CauseUnknownDependency, Messages: unknown}
	}

	queue := NewTopoQueue[string]()
	for name := range reachable {
		queue.Add(name, r.docs[name].Dependencies...)
	}

	if cycle, found := queue.Prepare(); found {
		return nil, &DependencyCycleError{Path: cycle}
	}

	built := make(map[string]*TargetDef, len(reachable))
	var componentErrs []string

	for queue.Active() {
		ready := queue.Ready()
		if len(ready) == 0 {
			break
		}
		for _, name := range ready {
			doc := r.docs[name]
			def := &TargetDef{
				Name:    name,
				Path:    doc.Path,
				Project: doc.Project,
			}
			for _, depName := range doc.Dependencies {
				def.Dependencies = append(def.Dependencies, built[depName])
			}
			comps, errs := resolveComponents(doc, catalog)
			def.Components = comps
			componentErrs = append(componentErrs, errs...)

			built[name] = def
		}
		queue.Done(ready...)
	}

	if len(componentErrs) > 0 {
		return nil, &Error{Cause: CauseUnknownComponentType, Messages: componentErrs}
	}

	return built[rootName], nil
}

func resolveComponents(doc TargetDocument, catalog *component.Catalog) ([]ComponentDef, []string) {
	var defs []ComponentDef
	var errs []string
	for _, decl := range doc.Components {
		ctor, ok := catalog.Get(decl.TypeName)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: unknown component type %q", doc.Path, decl.TypeName))
			continue
		}
		defs = append(defs, ComponentDef{Name: decl.TypeName, Ctor: ctor, Args: decl.Args})
	}
	return defs, errs
}

// collectReachable walks the dependency names declared from rootName,
// returning the set of known, reachable document names and a list of
// messages for any dependency name absent from the registry.
func (r *Registry) collectReachable(rootName string) (map[string]struct{}, []string) {
	reachable := map[string]struct{}{rootName: {}}
	var unknown []string
	stack := []string{rootName}

	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		doc, ok := r.docs[name]
		if !ok {
			continue
		}
		for _, dep := range doc.Dependencies {
			if _, ok := r.docs[dep]; !ok {
				unknown = append(unknown, fmt.Sprintf("%s: unknown dependency %q", doc.Path, dep))
				continue
			}
			if _, seen := reachable[dep]; !seen {
				reachable[dep] = struct{}{}
				stack = append(stack, dep)
			}
		}
	}

	return reachable, unknown
}
