// Package homebrew ensures a declared set of Homebrew packages are
// installed before its target starts.
package homebrew

import (
	"fmt"
	"os/exec"

	"github.com/idletea/overrun/internal/component"
)

func init() {
	component.Global().RegisterType("Homebrew", New,
		"Ensures a declared set of Homebrew packages are installed before the target starts.")
}

// Args is the declared shape of a [homebrew] target-file table.
type Args struct {
	Packages []string `toml:"packages" json:"packages"`
}

// Homebrew checks each declared package serially via `brew list` and
// installs every missing one with a single combined `brew install`.
// Parallelizing the checks is a possible future optimization, left
// unspecified.
type Homebrew struct {
	packages []string
}

// New constructs a Homebrew component from a target file's [homebrew]
// table.
func New(ctx *component.Context, raw map[string]any) (component.Component, error) {
	var args Args
	if v, ok := raw["packages"].([]any); ok {
		for _, e := range v {
			if s, ok := e.(string); ok {
				args.Packages = append(args.Packages, s)
			}
		}
	}
	if len(args.Packages) == 0 {
		return nil, fmt.Errorf("homebrew: packages must be non-empty")
	}
	return &Homebrew{packages: args.Packages}, nil
}

// Start installs every declared package not already present.
func (h *Homebrew) Start(ctx *component.Context) error {
	var toInstall []string
	for _, pkg := range h.packages {
		installed, err := checkInstalled(pkg)
		if err != nil {
			return fmt.Errorf("homebrew: checking %q: %w", pkg, err)
		}
		if !installed {
			toInstall = append(toInstall, pkg)
		}
	}

	if len(toInstall) == 0 {
		ctx.Log.Debug("homebrew packages already installed", "packages", h.packages)
		return nil
	}

	ctx.Log.Info("installing homebrew packages", "packages", toInstall)
	return install(toInstall)
}

func checkInstalled(pkg string) (bool, error) {
	cmd := exec.Command("brew", "list", pkg)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return false, nil
	}
	return false, err
}

func install(packages []string) error {
	args := append([]string{"install"}, packages...)
	cmd := exec.Command("brew", args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to install homebrew packages: %w", err)
	}
	return nil
}
