package config

import (
	"os"
	"path/filepath"
)

// Resolve builds a Config from already-parsed ConfigOptions and the
// directory of invocation: it discovers the current working project,
// its siblings, and every existing target directory beneath each
// project.
func Resolve(opts ConfigOptions, pwd string) (*Config, error) {
	absPwd, err := filepath.Abs(pwd)
	if err != nil {
		return nil, &Error{Cause: CauseIoError, Err: err}
	}
	canonPwd, err := canonicalize(absPwd)
	if err != nil {
		return nil, &Error{Cause: CauseIoError, Err: err}
	}

	cwp, ok := findCurrentWorkingProject(canonPwd, opts.Patterns.Projects)
	if !ok {
		return nil, &Error{Cause: CauseNotInProject, Path: canonPwd}
	}

	siblings := findSiblingProjects(cwp, opts.Patterns.Siblings, opts.Patterns.Projects)

	cfg := &Config{
		Options:               opts,
		Pwd:                   canonPwd,
		CurrentWorkingProject: cwp,
		SiblingProjects:       siblings,
	}
	cfg.TargetDirectories = resolveTargetDirectories(cfg.Projects(), opts.Patterns.TargetDirectories)
	return cfg, nil
}

// canonicalize resolves symlinks so that sibling/CWP comparisons are
// done on canonical forms, per the resolved "compare canonical forms"
// decision for the open question in the original source.
func canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return filepath.Clean(path), nil
		}
		return "", err
	}
	return resolved, nil
}

// hasProjectIndicator reports whether dir directly contains any of the
// configured project indicators (files or directories).
func hasProjectIndicator(dir string, indicators []string) bool {
	for _, indicator := range indicators {
		if _, err := os.Lstat(filepath.Join(dir, indicator)); err == nil {
			return true
		}
	}
	return false
}

// findCurrentWorkingProject walks from dir toward the filesystem root,
// returning the first (nearest) ancestor — including dir itself and the
// root — that contains a project indicator.
func findCurrentWorkingProject(dir string, indicators []string) (string, bool) {
	current := dir
	for {
		if hasProjectIndicator(current, indicators) {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			// Reached the filesystem root; it was already checked above.
			return "", false
		}
		current = parent
	}
}

// findSiblingProjects expands every sibling pattern (absolute patterns
// against the filesystem root, relative patterns against the CWP),
// discards any candidate whose canonical form equals the CWP, and keeps
// only those candidates that themselves satisfy the project-indicator
// predicate.
func findSiblingProjects(cwp string, patterns, projectIndicators []string) map[string]struct{} {
	siblings := make(map[string]struct{})
	for _, pattern := range patterns {
		var glob string
		if filepath.IsAbs(pattern) {
			glob = pattern
		} else {
			glob = filepath.Join(cwp, pattern)
		}
		matches, err := filepath.Glob(glob)
		if err != nil {
			continue
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.IsDir() {
				continue
			}
			canon, err := canonicalize(match)
			if err != nil {
				continue
			}
			if canon == cwp {
				continue
			}
			if !hasProjectIndicator(canon, projectIndicators) {
				continue
			}
			siblings[canon] = struct{}{}
		}
	}
	return siblings
}

// resolveTargetDirectories computes the cartesian product of projects x
// targetDirPatterns, keeping only pairs whose joined, canonicalized path
// is an existing directory, grouped by owning project.
func resolveTargetDirectories(projects []string, targetDirPatterns []string) map[string]map[string]struct{} {
	result := make(map[string]map[string]struct{})
	for _, project := range projects {
		for _, fragment := range targetDirPatterns {
			joined := filepath.Join(project, fragment)
			info, err := os.Stat(joined)
			if err != nil || !info.IsDir() {
				continue
			}
			canon, err := canonicalize(joined)
			if err != nil {
				continue
			}
			if result[project] == nil {
				result[project] = make(map[string]struct{})
			}
			result[project][canon] = struct{}{}
		}
	}
	return result
}
