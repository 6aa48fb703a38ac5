package target

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/idletea/overrun/internal/component"
	"github.com/idletea/overrun/internal/registry"
)

type fakeStarter struct {
	order *[]string
	name  string
	err   error
}

func (f *fakeStarter) Start(ctx *component.Context) error {
	*f.order = append(*f.order, f.name)
	return f.err
}

type fakeStopper struct {
	order *[]string
	name  string
	err   error
}

func (f *fakeStopper) Stop(ctx *component.Context) error {
	*f.order = append(*f.order, f.name)
	return f.err
}

// barrierRunner blocks until n concurrent calls have arrived, proving
// the run phase dispatches them concurrently rather than sequentially.
type barrierRunner struct {
	wg *sync.WaitGroup
}

func (b *barrierRunner) Run(ctx *component.Context) error {
	b.wg.Done()
	b.wg.Wait()
	return nil
}

func defWith(name string, ctors ...component.Constructor) *registry.TargetDef {
	def := &registry.TargetDef{Name: name, Path: "/tmp/" + name + ".toml"}
	for i, ctor := range ctors {
		def.Components = append(def.Components, registry.ComponentDef{
			Name: name, Ctor: ctor, Args: map[string]any{"i": i},
		})
	}
	return def
}

func TestFromDefPartitionsByCapability(t *testing.T) {
	var order []string
	def := defWith("t",
		func(ctx *component.Context, args map[string]any) (component.Component, error) {
			return &fakeStarter{order: &order, name: "s1"}, nil
		},
		func(ctx *component.Context, args map[string]any) (component.Component, error) {
			return &fakeStopper{order: &order, name: "p1"}, nil
		},
	)

	tgt, err := FromDef(def, &component.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tgt.Startable() || tgt.Runable() || !tgt.Stopable() || tgt.Resetable() {
		t.Errorf("unexpected capability partitioning: start=%v run=%v stop=%v reset=%v",
			tgt.Startable(), tgt.Runable(), tgt.Stopable(), tgt.Resetable())
	}
}

func TestStartSequentialOrderAndAbort(t *testing.T) {
	var order []string
	failing := errors.New("boom")
	def := defWith("t",
		func(ctx *component.Context, args map[string]any) (component.Component, error) {
			return &fakeStarter{order: &order, name: "a"}, nil
		},
		func(ctx *component.Context, args map[string]any) (component.Component, error) {
			return &fakeStarter{order: &order, name: "b", err: failing}, nil
		},
		func(ctx *component.Context, args map[string]any) (component.Component, error) {
			return &fakeStarter{order: &order, name: "c"}, nil
		},
	)

	tgt, err := FromDef(def, &component.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tgt.Start(&component.Context{}); err == nil {
		t.Fatal("expected start to propagate the failure")
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("expected start to abort after b, got %v", order)
	}
}

func TestRunDispatchesConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)
	def := defWith("t",
		func(ctx *component.Context, args map[string]any) (component.Component, error) {
			return &barrierRunner{wg: &wg}, nil
		},
		func(ctx *component.Context, args map[string]any) (component.Component, error) {
			return &barrierRunner{wg: &wg}, nil
		},
	)

	tgt, err := FromDef(def, &component.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- tgt.Run(&component.Context{}) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected run error: %v", err)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("run did not complete within timeout: runnables were not dispatched concurrently")
	}
}

func TestStopReverseOrderContinuesOnFailure(t *testing.T) {
	var order []string
	def := defWith("t",
		func(ctx *component.Context, args map[string]any) (component.Component, error) {
			return &fakeStopper{order: &order, name: "a"}, nil
		},
		func(ctx *component.Context, args map[string]any) (component.Component, error) {
			return &fakeStopper{order: &order, name: "b", err: errors.New("fails but logged")}, nil
		},
		func(ctx *component.Context, args map[string]any) (component.Component, error) {
			return &fakeStopper{order: &order, name: "c"}, nil
		},
	)

	tgt, err := FromDef(def, &component.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tgt.Stop(&component.Context{})
	want := []string{"c", "b", "a"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("expected stop order %v, got %v", want, order)
			break
		}
	}
}

func TestEqualByName(t *testing.T) {
	a := &Target{Name: "x"}
	b := &Target{Name: "x"}
	c := &Target{Name: "y"}
	if !a.Equal(b) {
		t.Error("expected targets with the same name to be equal")
	}
	if a.Equal(c) {
		t.Error("expected targets with different names to be unequal")
	}
}
