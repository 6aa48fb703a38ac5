package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Registry is the loaded, named catalog of target documents for one
// workspace. It does not itself hold any dependency graph — that is
// constructed on demand per requested root via Build.
type Registry struct {
	docs map[string]TargetDocument
}

// Load enumerates every `.toml` child of every target directory,
// parses and schema-validates each, and assigns names, producing a
// single aggregated *Error on any failure.
//
// targetDirs maps a project root to the set of its existing target
// directories, exactly the shape Config.TargetDirectories produces.
func Load(targetDirs map[string]map[string]struct{}) (*Registry, error) {
	docs, err := deserializeTargetDocs(targetDirs)
	if err != nil {
		return nil, err
	}
	named, err := determineNames(docs)
	if err != nil {
		return nil, err
	}
	return &Registry{docs: named}, nil
}

func deserializeTargetDocs(targetDirs map[string]map[string]struct{}) ([]TargetDocument, error) {
	var docs []TargetDocument
	var messages []string

	for project, dirs := range targetDirs {
		for dir := range dirs {
			info, err := os.Stat(dir)
			if err != nil {
				messages = append(messages, fmt.Sprintf("target directory %s does not exist", dir))
				continue
			}
			if !info.IsDir() {
				messages = append(messages, fmt.Sprintf("target directory %s is not a directory", dir))
				continue
			}
			found, errs := searchTargetDir(dir, project)
			docs = append(docs, found...)
			messages = append(messages, errs...)
		}
	}

	if len(messages) > 0 {
		return nil, &Error{Cause: CauseInvalidTargetDoc, Messages: messages}
	}
	return docs, nil
}

func searchTargetDir(dir, project string) ([]TargetDocument, []string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []string{fmt.Sprintf("reading target directory %s: %v", dir, err)}
	}

	var docs []TargetDocument
	var messages []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := parseTargetFile(path, project)
		if err != nil {
			messages = append(messages, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, messages
}

func parseTargetFile(path, project string) (TargetDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TargetDocument{}, err
	}

	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return TargetDocument{}, err
	}
	if err := validateTargetRaw(raw); err != nil {
		return TargetDocument{}, err
	}

	doc := TargetDocument{
		Path:         path,
		Project:      project,
		Dependencies: []string{}, // always [], never nil — resolved open question
	}

	if targetTable, ok := raw["target"].(map[string]any); ok {
		if name, ok := targetTable["name"].(string); ok {
			doc.Name = name
		}
		if deps, ok := targetTable["dependencies"].([]any); ok {
			for _, d := range deps {
				if s, ok := d.(string); ok {
					doc.Dependencies = append(doc.Dependencies, s)
				}
			}
		}
	}

	// md.Keys() lists keys in the order they appear in the file, so
	// components keep their declared order.
	seen := make(map[string]bool)
	for _, k := range md.Keys() {
		key := k[0]
		if key == "target" || seen[key] {
			continue
		}
		seen[key] = true
		table, ok := raw[key].(map[string]any)
		if !ok {
			continue
		}
		doc.Components = append(doc.Components, ComponentDeclaration{TypeName: key, Args: table})
	}

	return doc, nil
}

// determineNames assigns each document its final name (explicit
// target.name, else file basename minus extension) and rejects
// collisions as a single aggregated Error naming both colliding paths.
func determineNames(docs []TargetDocument) (map[string]TargetDocument, error) {
	named := make(map[string]TargetDocument, len(docs))
	var collisions []string

	for _, doc := range docs {
		name := determineName(doc)
		if existing, ok := named[name]; ok {
			collisions = append(collisions, fmt.Sprintf(
				"target with name %q defined in both %s and %s", name, doc.Path, existing.Path))
			continue
		}
		named[name] = doc
	}

	if len(collisions) > 0 {
		return nil, &Error{Cause: CauseNameCollision, Collisions: collisions}
	}
	return named, nil
}

func determineName(doc TargetDocument) string {
	if doc.Name != "" {
		return doc.Name
	}
	base := filepath.Base(doc.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Names returns every known target name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.docs))
	for name := range r.docs {
		names = append(names, name)
	}
	return names
}

// Document returns the raw document registered under name.
func (r *Registry) Document(name string) (TargetDocument, bool) {
	doc, ok := r.docs[name]
	return doc, ok
}
