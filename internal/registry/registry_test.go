package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/idletea/overrun/internal/component"
)

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func writeTarget(t *testing.T, dir, name, body string) {
	t.Helper()
	mkdirAll(t, dir)
	path := filepath.Join(dir, name+".toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func testCatalog() *component.Catalog {
	cat := component.NewCatalog()
	cat.Register("exec", func(ctx *component.Context, args map[string]any) (component.Component, error) {
		return struct{}{}, nil
	}, "test stub")
	return cat
}

func TestLoadAndBuildSimpleChain(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "targets")
	writeTarget(t, dir, "a", "[target]\ndependencies = [\"b\"]\n[exec]\ncmd = \"echo a\"\n")
	writeTarget(t, dir, "b", "[exec]\ncmd = \"echo b\"\n")

	reg, err := Load(map[string]map[string]struct{}{root: {dir: {}}})
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	def, err := reg.Build("a", testCatalog())
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if len(def.Dependencies) != 1 || def.Dependencies[0].Name != "b" {
		t.Fatalf("expected a to depend on b, got %+v", def.Dependencies)
	}
}

// TestNameCollision covers scenario 3: two files define the same name;
// the error must name both paths.
func TestNameCollision(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "targets")
	writeTarget(t, dir, "one", "[target]\nname = \"dup\"\n")
	writeTarget(t, dir, "two", "[target]\nname = \"dup\"\n")

	_, err := Load(map[string]map[string]struct{}{root: {dir: {}}})
	if err == nil {
		t.Fatal("expected a name collision error")
	}
	rerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if rerr.Cause != CauseNameCollision {
		t.Errorf("got cause %s, want %s", rerr.Cause, CauseNameCollision)
	}
	if len(rerr.Collisions) != 1 {
		t.Fatalf("expected exactly one collision message, got %v", rerr.Collisions)
	}
	for _, path := range []string{filepath.Join(dir, "one.toml"), filepath.Join(dir, "two.toml")} {
		if !contains(rerr.Collisions[0], path) {
			t.Errorf("collision message %q missing path %q", rerr.Collisions[0], path)
		}
	}
}

// TestDependencyCycle covers scenario 2: a cycle among x, y, z must be
// reported as a closed path joined by " -> ".
func TestDependencyCycle(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "targets")
	writeTarget(t, dir, "x", "[target]\ndependencies = [\"y\"]\n")
	writeTarget(t, dir, "y", "[target]\ndependencies = [\"z\"]\n")
	writeTarget(t, dir, "z", "[target]\ndependencies = [\"x\"]\n")

	reg, err := Load(map[string]map[string]struct{}{root: {dir: {}}})
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	_, err = reg.Build("x", testCatalog())
	if err == nil {
		t.Fatal("expected a dependency cycle error")
	}
	cerr, ok := err.(*DependencyCycleError)
	if !ok {
		t.Fatalf("expected *DependencyCycleError, got %T", err)
	}
	if len(cerr.Path) < 2 || cerr.Path[0] != cerr.Path[len(cerr.Path)-1] {
		t.Errorf("expected a closed cycle path, got %v", cerr.Path)
	}
}

func TestUnknownDependency(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "targets")
	writeTarget(t, dir, "a", "[target]\ndependencies = [\"missing\"]\n")

	reg, err := Load(map[string]map[string]struct{}{root: {dir: {}}})
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	_, err = reg.Build("a", testCatalog())
	rerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if rerr.Cause != CauseUnknownDependency {
		t.Errorf("got cause %s, want %s", rerr.Cause, CauseUnknownDependency)
	}
}

func TestUnknownComponentType(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "targets")
	writeTarget(t, dir, "a", "[nonexistent_component]\nfoo = \"bar\"\n")

	reg, err := Load(map[string]map[string]struct{}{root: {dir: {}}})
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	_, err = reg.Build("a", testCatalog())
	rerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if rerr.Cause != CauseUnknownComponentType {
		t.Errorf("got cause %s, want %s", rerr.Cause, CauseUnknownComponentType)
	}
}

func TestDependenciesDefaultToEmptySlice(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "targets")
	writeTarget(t, dir, "solo", "[exec]\ncmd = \"echo hi\"\n")

	reg, err := Load(map[string]map[string]struct{}{root: {dir: {}}})
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	doc, ok := reg.Document("solo")
	if !ok {
		t.Fatal("expected solo to be registered")
	}
	if doc.Dependencies == nil {
		t.Error("expected Dependencies to default to an empty slice, not nil")
	}
	if len(doc.Dependencies) != 0 {
		t.Errorf("expected no dependencies, got %v", doc.Dependencies)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && indexOfString(s, substr) >= 0
}

func indexOfString(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
