package cmd

import (
	"fmt"
	"sort"

	"github.com/idletea/overrun/internal/component"
)

// componentCommand dispatches `component list`, printing each
// registered component type and its doc summary.
func componentCommand(args []string) error {
	if len(args) == 0 || args[0] != "list" {
		return fmt.Errorf("component: expected subcommand \"list\"")
	}

	summaries := component.Global().Summaries()
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	for _, s := range summaries {
		fmt.Printf("%s\t%s\n", s.Name, s.Doc)
	}
	return nil
}
