package config

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configOptionsSchemaJSON is the embedded JSON Schema describing the
// shape of the config file's [patterns] table. TOML decodes scalars and
// arrays of strings into types jsonschema/v5 understands directly, so no
// intermediate JSON round-trip is needed before validation.
const configOptionsSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "patterns": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "projects": { "type": "array", "items": { "type": "string" } },
        "siblings": { "type": "array", "items": { "type": "string" } },
        "target_directories": { "type": "array", "items": { "type": "string" } }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	schemaOnceErr  error
	configSchema   *jsonschema.Schema
	schemaCacheMu  sync.RWMutex
)

func compiledConfigSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaCacheMu.Lock()
		defer schemaCacheMu.Unlock()
		configSchema, schemaOnceErr = jsonschema.CompileString("config-options.json", configOptionsSchemaJSON)
	})
	schemaCacheMu.RLock()
	defer schemaCacheMu.RUnlock()
	return configSchema, schemaOnceErr
}

// validateRaw validates a TOML-decoded config document (map[string]any)
// against the ConfigOptions schema.
func validateRaw(raw map[string]any) error {
	schema, err := compiledConfigSchema()
	if err != nil {
		return err
	}
	return schema.Validate(raw)
}
