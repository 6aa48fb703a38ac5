package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath is the environment variable that, when set, takes
// precedence over every other config-file discovery mechanism.
const EnvConfigPath = "OVERRUN_CONFIG"

// defaultConfigPath is tried last, when neither the environment variable
// nor an explicit path was given.
func defaultConfigPath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, ".config", "overrun", "config.toml"), true
}

// AttemptInit resolves and parses ConfigOptions. explicitPath is the
// value of an explicit --config flag, or "" if none was given. Resolution
// order, per the config-file schema (§6):
//
//  1. $OVERRUN_CONFIG, if set — failing to exist is EnvPathNotFound.
//  2. explicitPath, if non-empty — `~` is expanded; failing to exist is
//     ExplicitPathNotFound.
//  3. ~/.config/overrun/config.toml — if absent, proceed with defaults
//     and no error.
//
// Once a path is chosen, its contents are parsed as TOML, schema
// validated with default-filling, and returned as ConfigOptions.
func AttemptInit(explicitPath string) (ConfigOptions, error) {
	if env := os.Getenv(EnvConfigPath); env != "" {
		return loadFile(env, CauseEnvPathNotFound)
	}
	if explicitPath != "" {
		return loadFile(expandTilde(explicitPath), CauseExplicitPathNotFound)
	}
	if path, ok := defaultConfigPath(); ok {
		if _, err := os.Stat(path); err == nil {
			return loadFile(path, CauseIoError)
		}
	}
	return DefaultConfigOptions(), nil
}

// AttemptInitReader parses TOML from an in-memory byte stream, as if it
// were the chosen config file. Used when the caller already has the
// bytes (e.g. tests, or a config piped on stdin).
func AttemptInitReader(r io.Reader) (ConfigOptions, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return ConfigOptions{}, &Error{Cause: CauseIoError, Err: err}
	}
	return parse(buf.Bytes())
}

func loadFile(path string, notFoundCause Cause) (ConfigOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ConfigOptions{}, &Error{Cause: notFoundCause, Path: path}
		}
		return ConfigOptions{}, &Error{Cause: CauseIoError, Path: path, Err: err}
	}
	opts, err := parse(data)
	if err != nil {
		if cerr, ok := err.(*Error); ok {
			cerr.Path = path
			return opts, cerr
		}
		return opts, &Error{Cause: CauseIoError, Path: path, Err: err}
	}
	return opts, nil
}

func parse(data []byte) (ConfigOptions, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return ConfigOptions{}, &Error{Cause: CauseInvalidToml, Err: err}
	}
	if err := validateRaw(raw); err != nil {
		return ConfigOptions{}, &Error{Cause: CauseInvalidConfig, Err: err}
	}

	opts := DefaultConfigOptions()
	if _, err := toml.Decode(string(data), &opts); err != nil {
		return ConfigOptions{}, &Error{Cause: CauseInvalidToml, Err: err}
	}
	// toml.Decode only overwrites fields present in the document, so any
	// [patterns] sub-key left unset in the file keeps its default value
	// from DefaultConfigOptions above — this is the "default-filling"
	// the schema validation step promises.
	return opts, nil
}

// expandTilde expands a leading ~/ against the user's home directory.
func expandTilde(p string) string {
	if p == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
