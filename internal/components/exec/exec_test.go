package exec

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idletea/overrun/internal/component"
)

func testContext(t *testing.T, cwd string) *component.Context {
	t.Helper()
	return &component.Context{
		TargetName: "t",
		Cwd:        cwd,
		Log:        log.NewWithOptions(io.Discard, log.Options{}),
	}
}

func TestStartRunExitsCleanly(t *testing.T) {
	dir := t.TempDir()
	raw := map[string]any{"argv": []any{"true"}}

	c, err := New(testContext(t, dir), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := c.(*Exec)

	ctx := testContext(t, dir)
	if err := e.Start(ctx); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if err := e.Run(ctx); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
}

func TestOutputFileIsWritten(t *testing.T) {
	dir := t.TempDir()
	raw := map[string]any{
		"argv":        []any{"sh", "-c", "echo hello"},
		"output_file": "out.log",
	}

	c, err := New(testContext(t, dir), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := c.(*Exec)

	ctx := testContext(t, dir)
	if err := e.Start(ctx); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if err := e.Run(ctx); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.log"))
	if err != nil {
		t.Fatalf("reading output file: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("expected %q, got %q", "hello\n", data)
	}
}

func TestStopOnAlreadyExitedProcessIsImmediate(t *testing.T) {
	dir := t.TempDir()
	raw := map[string]any{"argv": []any{"true"}}

	c, err := New(testContext(t, dir), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := c.(*Exec)
	ctx := testContext(t, dir)
	if err := e.Start(ctx); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	time.Sleep(20 * time.Millisecond) // let "true" finish on its own

	done := make(chan error, 1)
	go func() { done <- e.Stop(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected stop error: %v", err)
		}
	case <-time.After(graceWait + 50*time.Millisecond):
		t.Fatal("stop did not short-circuit for an already-exited process")
	}
}

func TestStopEscalatesToSigtermForLongRunningProcess(t *testing.T) {
	dir := t.TempDir()
	raw := map[string]any{"argv": []any{"sleep", "10"}}

	c, err := New(testContext(t, dir), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := c.(*Exec)
	ctx := testContext(t, dir)
	if err := e.Start(ctx); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- e.Stop(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected stop error: %v", err)
		}
	case <-time.After(killWait):
		t.Fatal("stop did not terminate the process within the grace+SIGTERM window")
	}
}
