// Package validate checks tool call arguments against the tool's JSON Schema.
package validate

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ArgsValidator validates tool arguments. Schemas are compiled once per tool
// name and cached.
type ArgsValidator struct {
	mu      sync.Mutex
	schemas map[string]*gojsonschema.Schema
}

// NewArgsValidator creates an empty validator.
func NewArgsValidator() *ArgsValidator {
	return &ArgsValidator{schemas: make(map[string]*gojsonschema.Schema)}
}

func (v *ArgsValidator) schemaFor(tool string, schema json.RawMessage) (*gojsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.schemas[tool]; ok {
		return s, nil
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compiling input schema for %q: %w", tool, err)
	}
	v.schemas[tool] = s
	return s, nil
}

// Validate checks args against schema. It returns a slice of violation
// descriptions and an error if the schema cannot be compiled or the
// arguments are not JSON. Empty args are validated as an empty object.
func (v *ArgsValidator) Validate(tool string, schema json.RawMessage, args json.RawMessage) ([]string, error) {
	s, err := v.schemaFor(tool, schema)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage(`{}`)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return nil, fmt.Errorf("validating arguments for %q: %w", tool, err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}
