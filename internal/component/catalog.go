package component

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// registration pairs a constructor with the one-line doc summary shown
// by `component list`, mirroring a Python component class's own
// docstring summary line.
type registration struct {
	ctor Constructor
	doc  string
}

// Summary is a registered component type's name and doc summary.
type Summary struct {
	Name string
	Doc  string
}

// Catalog is the process-wide mapping from a canonical component-type
// name to its constructor and doc summary. Registration is idempotent;
// the last registration under a given name wins.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]registration
}

var (
	global     *Catalog
	globalOnce sync.Once
)

// Global returns the process-wide catalog, initializing it on first use.
func Global() *Catalog {
	globalOnce.Do(func() {
		global = NewCatalog()
	})
	return global
}

// NewCatalog returns an empty catalog. Most callers want Global(); a
// fresh catalog is useful in tests that need isolation from built-ins
// registered elsewhere in the process.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]registration)}
}

// Register associates name with constructor and doc, overwriting any
// prior registration under the same name.
func (c *Catalog) Register(name string, ctor Constructor, doc string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = registration{ctor: ctor, doc: doc}
}

// RegisterType derives name from typeName via NameOf and registers ctor
// and doc under it. Intended for use at package init time, mirroring
// the original's `@component.register` class decorator:
//
//	func init() {
//	    component.Global().RegisterType("Exec", New, "Runs a subprocess.")
//	}
func (c *Catalog) RegisterType(typeName string, ctor Constructor, doc string) {
	c.Register(NameOf(typeName), ctor, doc)
}

// Get looks up the constructor registered under name.
func (c *Catalog) Get(name string) (Constructor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	return e.ctor, ok
}

// Names returns every registered component-type name.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	return names
}

// Summaries returns every registered component type's name and doc
// summary, for `component list`.
func (c *Catalog) Summaries() []Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	summaries := make([]Summary, 0, len(c.entries))
	for name, e := range c.entries {
		summaries = append(summaries, Summary{Name: name, Doc: e.doc})
	}
	return summaries
}

var (
	compoundCap = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	lowerUpper  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// NameOf converts a component type's Go identifier (e.g. "Exec",
// "HomebrewInstaller") to its canonical snake_case catalog name (e.g.
// "exec", "homebrew_installer"), by inserting an underscore at every
// lower/digit-to-upper boundary and at every compound-capital boundary,
// then lowercasing. This mirrors the original's `_camel_case` regex pair
// applied to a class's own name.
func NameOf(typeName string) string {
	s := compoundCap.ReplaceAllString(typeName, "${1}_${2}")
	s = lowerUpper.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// Instantiate constructs a Component of the named type. An unknown type
// name is a hard error per the target-file schema (§6): every top-level
// table other than `target` names a component type, and unknown types
// are rejected rather than silently ignored.
func (c *Catalog) Instantiate(name string, ctx *Context, args map[string]any) (Component, error) {
	ctor, ok := c.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown component type %q", name)
	}
	return ctor(ctx, args)
}
