// Package statusui is an optional Bubble Tea viewer for a running
// target's lifecycle events. It is never imported by internal/runtime;
// it only consumes the event queue the runtime already provisions.
package statusui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idletea/overrun/internal/component"
)

// Watch runs a live terminal view driven by events, until run returns
// or the user quits. run is the underlying scheduler call; Watch never
// waits on events itself closing, since nothing in internal/runtime
// closes the queue it feeds — instead, once run returns, Watch injects
// a doneMsg so the program exits on its own.
func Watch(ctx context.Context, events <-chan component.Event, run func() error) error {
	runErr := make(chan error, 1)
	go func() { runErr <- run() }()

	model := newModel(events)
	program := tea.NewProgram(model, tea.WithContext(ctx))

	go func() {
		err := <-runErr
		runErr <- err // re-buffer so the caller can still observe it below
		program.Send(doneMsg{})
	}()

	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*statusModel); ok && m.quit {
		return nil
	}
	return <-runErr
}

type eventMsg component.Event

type doneMsg struct{}

type statusModel struct {
	events <-chan component.Event
	phases map[string]string
	order  []string
	quit   bool
}

func newModel(events <-chan component.Event) *statusModel {
	return &statusModel{events: events, phases: make(map[string]string)}
}

func (m *statusModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m *statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quit = true
			return m, tea.Quit
		}
	case eventMsg:
		if _, seen := m.phases[msg.TargetName]; !seen {
			m.order = append(m.order, msg.TargetName)
		}
		m.phases[msg.TargetName] = msg.Kind
		return m, waitForEvent(m.events)
	case doneMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m *statusModel) View() string {
	var b strings.Builder
	b.WriteString("overrun — live target status (q to quit)\n\n")

	names := append([]string{}, m.order...)
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %-24s %s\n", name, m.phases[name])
	}
	if len(names) == 0 {
		b.WriteString("  waiting for events...\n")
	}
	return b.String()
}

func waitForEvent(events <-chan component.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}
