package schema

import (
	"encoding/json"
	"fmt"

	"github.com/fulmenhq/relinfo/internal/assets"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Registry names of the embedded schemas.
const (
	FilterSet       = "filter-set-v1.0.0"
	ValidatorRecord = "validator-record-v1.0.0"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Path    string `json:"path,omitempty"` // e.g. "(root).0"
	Message string `json:"message"`
}

// Result holds the validation result.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// registry holds pre-compiled schemas keyed by name.
var registry = make(map[string]*gojsonschema.Schema)

func init() {
	for _, info := range assets.GetSchemaNames() {
		schemaBytes, ok := assets.GetSchema(info.Path)
		if !ok || len(schemaBytes) == 0 {
			continue
		}
		schema, err := compile(schemaBytes)
		if err != nil {
			// Skip on error; Validate reports the schema as missing
			continue
		}
		registry[info.Name] = schema
	}
}

// compile converts a YAML schema to JSON and compiles it.
func compile(schemaBytes []byte) (*gojsonschema.Schema, error) {
	var schemaData interface{}
	if err := yaml.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, err
	}
	jsonBytes, err := json.Marshal(schemaData)
	if err != nil {
		return nil, err
	}
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
}

// Validate validates data against the named schema.
func Validate(data interface{}, schemaName string) (*Result, error) {
	schema, ok := registry[schemaName]
	if !ok {
		return nil, fmt.Errorf("schema %s not found in registry", schemaName)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	res := &Result{Valid: result.Valid()}
	if !result.Valid() {
		for _, verr := range result.Errors() {
			field := verr.Field()
			if field == "" {
				field = "root"
			}
			res.Errors = append(res.Errors, ValidationError{
				Path:    field,
				Message: verr.Description(),
			})
		}
	}

	return res, nil
}

// ValidateBytes decodes a JSON document and validates it.
func ValidateBytes(data []byte, schemaName string) (*Result, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return Validate(doc, schemaName)
}

// Summary joins the first few errors of a failed result for messages.
func (r *Result) Summary() string {
	if r == nil || r.Valid || len(r.Errors) == 0 {
		return ""
	}
	const max = 3
	out := ""
	for i, e := range r.Errors {
		if i == max {
			out += fmt.Sprintf("; and %d more", len(r.Errors)-max)
			break
		}
		if i > 0 {
			out += "; "
		}
		out += e.Path + ": " + e.Message
	}
	return out
}
