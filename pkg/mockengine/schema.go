package mockengine

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/getmockd/modelproxy/pkg/template"
)

// fakerExtension names a faker kind for string schemas, e.g. "x-faker": "email".
const fakerExtension = "x-faker"

// maxArrayItems caps generated array length.
const maxArrayItems = 3

// SchemaEngine produces example values from an OpenAPI/JSON schema. The rule
// it receives describes the response: its "response" member is the schema,
// or the rule itself is when that member is absent.
type SchemaEngine struct {
	faker *template.Engine
}

// NewSchemaEngine creates a schema engine that draws faker data from faker.
func NewSchemaEngine(faker *template.Engine) *SchemaEngine {
	if faker == nil {
		faker = template.New()
	}
	return &SchemaEngine{faker: faker}
}

// SpecToMock generates a value for the schema found in spec.
func (g *SchemaEngine) SpecToMock(spec any) (any, error) {
	if m, ok := spec.(map[string]any); ok {
		if response, ok := m["response"]; ok {
			spec = response
		}
	}
	if spec == nil {
		return nil, errors.New("schema rule is empty")
	}

	raw, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	var schema openapi3.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return g.generate(&schema, ""), nil
}

// generate follows this priority chain: example, x-faker, enum, default,
// composition (allOf, oneOf, anyOf), then type-specific generation.
func (g *SchemaEngine) generate(schema *openapi3.Schema, propertyName string) any {
	if schema == nil {
		return nil
	}

	if schema.Example != nil {
		return schema.Example
	}
	if kind, ok := schema.Extensions[fakerExtension].(string); ok {
		if val, ok := g.faker.Fake(kind); ok {
			return val
		}
	}
	if len(schema.Enum) > 0 {
		return schema.Enum[0]
	}
	if schema.Default != nil {
		return schema.Default
	}

	if len(schema.AllOf) > 0 {
		return g.generateAllOf(schema)
	}
	if len(schema.OneOf) > 0 {
		return g.generate(schema.OneOf[0].Value, propertyName)
	}
	if len(schema.AnyOf) > 0 {
		return g.generate(schema.AnyOf[0].Value, propertyName)
	}

	switch schemaType(schema) {
	case openapi3.TypeObject:
		return g.generateObject(schema)
	case openapi3.TypeArray:
		return g.generateArray(schema)
	case openapi3.TypeString:
		return g.generateString(schema, propertyName)
	case openapi3.TypeInteger:
		return g.generateInteger(schema)
	case openapi3.TypeNumber:
		return g.generateNumber(schema)
	case openapi3.TypeBoolean:
		return true
	default:
		if len(schema.Properties) > 0 {
			return g.generateObject(schema)
		}
		return nil
	}
}

func schemaType(schema *openapi3.Schema) string {
	if types := schema.Type.Slice(); len(types) > 0 {
		return types[0]
	}
	return ""
}

func (g *SchemaEngine) generateObject(schema *openapi3.Schema) any {
	obj := make(map[string]any, len(schema.Properties))
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ref := schema.Properties[name]; ref != nil && ref.Value != nil {
			obj[name] = g.generate(ref.Value, name)
		}
	}
	return obj
}

func (g *SchemaEngine) generateAllOf(schema *openapi3.Schema) any {
	merged := make(map[string]any)
	for _, sub := range schema.AllOf {
		if sub == nil {
			continue
		}
		if m, ok := g.generate(sub.Value, "").(map[string]any); ok {
			for k, v := range m {
				merged[k] = v
			}
		}
	}
	if m, ok := g.generateObject(schema).(map[string]any); ok {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}

func (g *SchemaEngine) generateArray(schema *openapi3.Schema) any {
	count := 1
	if schema.MinItems > uint64(count) {
		count = int(schema.MinItems)
	}
	if schema.MaxItems != nil && *schema.MaxItems < uint64(count) {
		count = int(*schema.MaxItems)
	}
	if count > maxArrayItems {
		count = maxArrayItems
	}

	items := make([]any, count)
	for i := range items {
		if schema.Items != nil && schema.Items.Value != nil {
			items[i] = g.generate(schema.Items.Value, "")
		} else {
			items[i] = "item"
		}
	}
	return items
}

func (g *SchemaEngine) generateString(schema *openapi3.Schema, propertyName string) any {
	switch schema.Format {
	case "email":
		return g.fake("email")
	case "uuid":
		return g.fake("uuid")
	case "uri", "url":
		return g.fake("url")
	case "date":
		return time.Now().Format(time.DateOnly)
	case "date-time":
		return time.Now().Format(time.RFC3339)
	case "ipv4":
		return g.fake("ipv4")
	case "ipv6":
		return g.fake("ipv6")
	}

	// Property names that match a faker kind get sample data of that kind.
	if propertyName != "" {
		if val, ok := g.faker.Fake(propertyName); ok {
			return val
		}
	}

	if schema.MinLength > 6 {
		b := make([]byte, schema.MinLength)
		for i := range b {
			b[i] = 'x'
		}
		return string(b)
	}
	return "string"
}

func (g *SchemaEngine) generateInteger(schema *openapi3.Schema) any {
	lo, hi := 0, 100
	if schema.Min != nil {
		lo = int(*schema.Min)
	}
	if schema.Max != nil {
		hi = int(*schema.Max)
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + (hi-lo)/2
}

func (g *SchemaEngine) generateNumber(schema *openapi3.Schema) any {
	lo, hi := 0.0, 100.0
	if schema.Min != nil {
		lo = *schema.Min
	}
	if schema.Max != nil {
		hi = *schema.Max
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + (hi-lo)/2
}

func (g *SchemaEngine) fake(kind string) string {
	val, _ := g.faker.Fake(kind)
	return val
}
