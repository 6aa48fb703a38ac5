package registry

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// targetDocumentSchemaJSON validates the shape every target file must
// have: an optional [target] table with optional name/dependencies, and
// any number of other top-level tables (component declarations). The
// schema intentionally does not know component-type argument shapes —
// those are each component's own concern (§4.3) — it only rejects a
// document whose `target` table is malformed or which has a top-level
// key whose value is not a table.
const targetDocumentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "target": {
      "type": "object",
      "properties": {
        "name": { "type": "string" },
        "dependencies": { "type": "array", "items": { "type": "string" } }
      }
    }
  },
  "additionalProperties": { "type": "object" }
}`

var (
	targetSchemaOnce sync.Once
	targetSchemaErr  error
	targetSchema     *jsonschema.Schema
	targetSchemaMu   sync.RWMutex
)

func compiledTargetSchema() (*jsonschema.Schema, error) {
	targetSchemaOnce.Do(func() {
		targetSchemaMu.Lock()
		defer targetSchemaMu.Unlock()
		targetSchema, targetSchemaErr = jsonschema.CompileString("target-document.json", targetDocumentSchemaJSON)
	})
	targetSchemaMu.RLock()
	defer targetSchemaMu.RUnlock()
	return targetSchema, targetSchemaErr
}

func validateTargetRaw(raw map[string]any) error {
	schema, err := compiledTargetSchema()
	if err != nil {
		return err
	}
	return schema.Validate(raw)
}
