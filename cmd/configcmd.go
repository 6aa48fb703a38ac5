package cmd

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/idletea/overrun/internal/config"
)

// configCommand emits the effective configuration as TOML to stdout.
func configCommand(opts config.ConfigOptions, cfgErr error) error {
	if cfgErr != nil {
		return cfgErr
	}
	enc := toml.NewEncoder(os.Stdout)
	return enc.Encode(opts)
}
