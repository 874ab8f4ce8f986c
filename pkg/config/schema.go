package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidDocument is wrapped by every schema validation failure.
var ErrInvalidDocument = errors.New("invalid interface document")

const documentSchemaURL = "interface.schema.json"

// documentSchema describes the structure of an interface document. Semantic
// checks (id syntax, duplicates, rule files) are left to the registry, which
// skips offending profiles instead of failing the whole load.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "version": {"type": "string"},
    "rulebase": {"type": "string"},
    "engine": {"type": "string"},
    "status": {"type": "string"},
    "include": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "interfaces": {"type": "array", "items": {"$ref": "#/$defs/interface"}}
  },
  "$defs": {
    "interface": {
      "type": "object",
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "desc": {"type": "string"},
        "version": {"type": "string"},
        "urls": {"type": "object", "additionalProperties": {"type": "string"}},
        "status": {"type": "string"},
        "method": {"type": "string"},
        "dataType": {"type": "string"},
        "timeout": {"type": "integer", "minimum": 0},
        "encoding": {"type": "string"},
        "isCookieNeeded": {"type": "boolean"},
        "signed": {"type": "boolean"},
        "isRuleStatic": {"type": "boolean"},
        "ruleFile": {"type": "string"}
      }
    }
  }
}`

var compileDocumentSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(documentSchemaURL, strings.NewReader(documentSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(documentSchemaURL)
})

// ValidateDocument validates a decoded document (plain JSON values) against
// the interface document schema.
func ValidateDocument(v any) error {
	schema, err := compileDocumentSchema()
	if err != nil {
		return fmt.Errorf("compiling document schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(flattenSchemaErrors(verr), "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

// flattenSchemaErrors collects the leaf causes of a validation error as
// "<location>: <message>" strings.
func flattenSchemaErrors(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{loc + ": " + err.Message}
	}
	var out []string
	for _, cause := range err.Causes {
		out = append(out, flattenSchemaErrors(cause)...)
	}
	return out
}
