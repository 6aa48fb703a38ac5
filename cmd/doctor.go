package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/idletea/overrun/internal/config"
)

// doctorCommand prints config status, discovered directories, and the
// effective config. It always exits 0: the point of doctor is to
// surface the failure cause as a value, not to fail the process.
func doctorCommand(logger *log.Logger, opts config.ConfigOptions, cfgErr error) error {
	if cfgErr != nil {
		if cerr, ok := cfgErr.(*config.Error); ok {
			fmt.Printf("config: FAILED (%s)\n", cerr.Cause)
			if cerr.Path != "" {
				fmt.Printf("  path: %s\n", cerr.Path)
			}
			if cerr.Err != nil {
				fmt.Printf("  detail: %v\n", cerr.Err)
			}
		} else {
			fmt.Printf("config: FAILED (%v)\n", cfgErr)
		}
		return nil
	}
	fmt.Println("config: OK")
	fmt.Println("effective config:")
	if err := toml.NewEncoder(os.Stdout).Encode(opts); err != nil {
		fmt.Printf("  FAILED to encode (%v)\n", err)
	}

	pwd, err := os.Getwd()
	if err != nil {
		fmt.Printf("workspace: FAILED to determine cwd (%v)\n", err)
		return nil
	}

	ws, err := config.Resolve(opts, pwd)
	if err != nil {
		if werr, ok := err.(*config.Error); ok {
			fmt.Printf("workspace: FAILED (%s)\n", werr.Cause)
		} else {
			fmt.Printf("workspace: FAILED (%v)\n", err)
		}
		return nil
	}

	fmt.Printf("current working project: %s\n", ws.CurrentWorkingProject)

	projects := ws.Projects()
	sort.Strings(projects)
	fmt.Println("projects:")
	for _, p := range projects {
		fmt.Printf("  %s\n", p)
	}

	fmt.Println("target directories:")
	for _, p := range projects {
		for dir := range ws.TargetDirectories[p] {
			fmt.Printf("  %s\n", dir)
		}
	}

	return nil
}
