package mockengine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedEngine struct{ out any }

func (f fixedEngine) Generate(any) (any, error) { return f.out, nil }

func TestNewSetHasBuiltins(t *testing.T) {
	set := NewSet()
	assert.Equal(t, []string{SchemaEngineName, TemplateEngineName}, set.Names())

	tmpl, err := set.Lookup(TemplateEngineName)
	require.NoError(t, err)
	assert.Implements(t, (*Engine)(nil), tmpl)

	schema, err := set.Lookup(SchemaEngineName)
	require.NoError(t, err)
	assert.Implements(t, (*SpecMocker)(nil), schema)
}

func TestSetLookupIsExactName(t *testing.T) {
	set := NewSet()
	_, err := set.Lookup("Template")
	assert.True(t, errors.Is(err, ErrUnknownEngine))
}

func TestSetRegister(t *testing.T) {
	set := NewSet()

	require.NoError(t, set.Register("fixed", fixedEngine{out: "x"}))
	engine, err := set.Lookup("fixed")
	require.NoError(t, err)
	out, err := engine.(Engine).Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, "x", out)

	assert.Error(t, set.Register("", fixedEngine{}))
	assert.Error(t, set.Register("bad", "not an engine"))
}

func TestTemplateEngineRejectsOversizedRepeat(t *testing.T) {
	engine, err := NewSet().Lookup(TemplateEngineName)
	require.NoError(t, err)

	_, err = engine.(Engine).Generate(map[string]any{"rows|1-50000": []any{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestSchemaEngineObject(t *testing.T) {
	engine := NewSchemaEngine(nil)

	out, err := engine.SpecToMock(map[string]any{
		"response": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":      map[string]any{"type": "integer", "minimum": 10, "maximum": 20},
				"email":   map[string]any{"type": "string", "format": "email"},
				"status":  map[string]any{"type": "string", "enum": []any{"active", "closed"}},
				"title":   map[string]any{"type": "string", "example": "Hello"},
				"ratio":   map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"ok":      map[string]any{"type": "boolean"},
				"company": map[string]any{"type": "string", "x-faker": "company"},
				"tags": map[string]any{
					"type":     "array",
					"minItems": 2,
					"items":    map[string]any{"type": "string"},
				},
			},
		},
	})
	require.NoError(t, err)

	obj, ok := out.(map[string]any)
	require.True(t, ok, "expected object, got %T", out)
	assert.Equal(t, 15, obj["id"])
	assert.Contains(t, obj["email"], "@")
	assert.Equal(t, "active", obj["status"])
	assert.Equal(t, "Hello", obj["title"])
	assert.Equal(t, 0.5, obj["ratio"])
	assert.Equal(t, true, obj["ok"])
	assert.NotEmpty(t, obj["company"])
	assert.Len(t, obj["tags"], 2)
}

func TestSchemaEngineWithoutResponseMember(t *testing.T) {
	engine := NewSchemaEngine(nil)

	out, err := engine.SpecToMock(map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string", "minLength": 8},
	})
	require.NoError(t, err)
	items := out.([]any)
	require.Len(t, items, 1)
	assert.Equal(t, strings.Repeat("x", 8), items[0])
}

func TestSchemaEngineAllOf(t *testing.T) {
	engine := NewSchemaEngine(nil)

	out, err := engine.SpecToMock(map[string]any{
		"allOf": []any{
			map[string]any{"type": "object", "properties": map[string]any{"a": map[string]any{"type": "integer"}}},
			map[string]any{"type": "object", "properties": map[string]any{"b": map[string]any{"type": "string", "default": "B"}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 50, "b": "B"}, out)
}

func TestSchemaEngineEmpty(t *testing.T) {
	_, err := NewSchemaEngine(nil).SpecToMock(nil)
	assert.Error(t, err)
}
