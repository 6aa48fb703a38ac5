// Package config implements workspace discovery and configuration
// resolution: locating the config file, parsing ConfigOptions, and
// discovering the current working project, its siblings, and target
// directories.
package config

import "fmt"

// Cause is a string-stable error cause code, per the error taxonomy.
type Cause string

const (
	CauseEnvPathNotFound      Cause = "EnvPathNotFound"
	CauseExplicitPathNotFound Cause = "ExplicitPathNotFound"
	CauseInvalidToml          Cause = "InvalidToml"
	CauseInvalidConfig        Cause = "InvalidConfig"
	CauseNotInProject         Cause = "NotInProject"
	CauseIoError              Cause = "IoError"
)

// Error is the result-variant error returned by configuration and
// workspace-discovery operations. Callers that need to introspect why
// configuration failed (the "doctor" collaborator) branch on Cause
// rather than pattern-matching an error string.
type Error struct {
	Cause Cause
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Cause, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Cause, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Cause, e.Err)
	}
	return string(e.Cause)
}

func (e *Error) Unwrap() error { return e.Err }

// Patterns holds the three configurable pattern lists that drive
// workspace discovery.
type Patterns struct {
	// Projects is an ordered list of path fragments that, if present as a
	// direct child of a directory, mark that directory as a project root.
	Projects []string `toml:"projects"`

	// Siblings is an ordered list of glob patterns (absolute or relative
	// to the CWP) used to discover sibling projects.
	Siblings []string `toml:"siblings"`

	// TargetDirectories is an ordered list of path fragments, relative to
	// any project root, where target files live.
	TargetDirectories []string `toml:"target_directories"`
}

// DefaultPatterns returns the documented defaults.
func DefaultPatterns() Patterns {
	return Patterns{
		Projects:          []string{".overrun"},
		Siblings:          []string{"../*"},
		TargetDirectories: []string{".overrun/targets"},
	}
}

// ConfigOptions is the validated, schema-checked configuration value
// parsed from the config file (or defaults, if no file was found).
type ConfigOptions struct {
	Patterns Patterns `toml:"patterns"`
}

// DefaultConfigOptions returns ConfigOptions with every field at its
// documented default.
func DefaultConfigOptions() ConfigOptions {
	return ConfigOptions{Patterns: DefaultPatterns()}
}

// Config is the resolved workspace: ConfigOptions plus everything
// workspace discovery derives from them for one invocation.
type Config struct {
	Options ConfigOptions

	// Pwd is the absolute, canonicalized directory of invocation.
	Pwd string

	// CurrentWorkingProject is the nearest ancestor of Pwd (or Pwd
	// itself) containing a project indicator.
	CurrentWorkingProject string

	// SiblingProjects is the set of canonical sibling project paths,
	// distinct from CurrentWorkingProject.
	SiblingProjects map[string]struct{}

	// TargetDirectories maps each project root in Projects() to the set
	// of existing canonical target directories beneath it.
	TargetDirectories map[string]map[string]struct{}
}

// Projects returns {CWP} ∪ SiblingProjects.
func (c *Config) Projects() []string {
	projects := make([]string, 0, 1+len(c.SiblingProjects))
	projects = append(projects, c.CurrentWorkingProject)
	for p := range c.SiblingProjects {
		projects = append(projects, p)
	}
	return projects
}
