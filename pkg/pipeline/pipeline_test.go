package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/modelproxy/pkg/dispatch"
	"github.com/getmockd/modelproxy/pkg/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newRuntime serves Shop.list and Shop.get from static rules and
// Shop.down from a live endpoint that does not exist.
func newRuntime(t *testing.T) *model.Runtime {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "interface.yaml"), `
status: mock
interfaces:
  - id: Shop.list
    isRuleStatic: true
  - id: Shop.get
  - id: Shop.down
    status: prod
    urls: {prod: "http://127.0.0.1:1/down"}
    timeout: 200
`)
	writeFile(t, filepath.Join(dir, "interfaceRules", "Shop.list.rule.json"),
		`{"response": {"items": [{"id": 7, "name": "lamp"}, {"id": 8, "name": "desk"}]}}`)
	writeFile(t, filepath.Join(dir, "interfaceRules", "Shop.get.rule.json"),
		`{"response": {"name": "lamp", "price": 12}}`)

	rt, err := model.Init(filepath.Join(dir, "interface.yaml"))
	require.NoError(t, err)
	return rt
}

func TestParseDefaults(t *testing.T) {
	doc, err := Parse([]byte(`
ids: [Shop.list]
calls:
  - method: list
`))
	require.NoError(t, err)
	assert.Equal(t, ModeSeries, doc.Mode)
	assert.Equal(t, []string{"Shop.list"}, doc.profile())
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := map[string]string{
		"no source":      "calls: [{method: list}]",
		"two sources":    "ids: [A.b]\npattern: A.*\ncalls: [{method: b}]",
		"unknown mode":   "ids: [A.b]\nmode: race\ncalls: [{method: b}]",
		"no calls":       "ids: [A.b]",
		"no method":      "ids: [A.b]\ncalls: [{params: {a: 1}}]",
		"params+derive":  "ids: [A.b]\ncalls: [{method: b, params: {a: 1}, derive: '{}'}]",
		"bad expression": "ids: [A.b]\ncalls: [{method: b, derive: '{\"a\": '}]",
		"bad jsonpath":   "ids: [A.b]\ncalls: [{method: b, pick: '$[[['}]",
		"not yaml":       "ids: [",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPipeline))
		})
	}
}

func TestRunSeriesWithDeriveAndPick(t *testing.T) {
	rt := newRuntime(t)
	doc, err := Parse([]byte(`
pattern: Shop.*
calls:
  - method: list
    pick: $.items[0]
  - method: get
    derive: '{"id": prev.id, "seen": len(results)}'
    pick: $.name
`))
	require.NoError(t, err)

	result, err := doc.Run(context.Background(), rt)
	require.NoError(t, err)
	assert.Equal(t, ModeSeries, result.Mode)
	assert.Equal(t, []any{map[string]any{"id": float64(7), "name": "lamp"}, "lamp"}, result.Values)
}

func TestRunPickManyAndNothing(t *testing.T) {
	rt := newRuntime(t)

	doc, err := Parse([]byte(`
model: {items: Shop.list}
mode: all
calls:
  - method: items
    pick: $.items[*].name
`))
	require.NoError(t, err)
	result, err := doc.Run(context.Background(), rt)
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{"lamp", "desk"}}, result.Values)

	doc, err = Parse([]byte(`
model: {items: Shop.list}
mode: then
calls:
  - method: items
    pick: $.missing
`))
	require.NoError(t, err)
	_, err = doc.Run(context.Background(), rt)
	var te *model.TransformError
	assert.ErrorAs(t, err, &te)
}

func TestRunParalFallback(t *testing.T) {
	rt := newRuntime(t)

	doc, err := Parse([]byte(`
pattern: Shop.*
mode: paral
fallback: unavailable
calls:
  - method: get
  - method: down
`))
	require.NoError(t, err)
	result, err := doc.Run(context.Background(), rt)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "lamp", "price": float64(12)}, "unavailable"}, result.Values)

	doc.Fallback = nil
	result, err = doc.Run(context.Background(), rt)
	require.NoError(t, err)
	require.Len(t, result.Values, 2)
	failed, ok := result.Values[1].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, failed["error"], "Shop.down")
}

func TestRunAllFails(t *testing.T) {
	rt := newRuntime(t)
	doc, err := Parse([]byte(`{"pattern": "Shop.*", "mode": "all", "calls": [{"method": "get"}, {"method": "down"}]}`))
	require.NoError(t, err)

	_, err = doc.Run(context.Background(), rt)
	assert.True(t, errors.Is(err, dispatch.ErrTransport))
}

func TestRunDeriveNonMapping(t *testing.T) {
	rt := newRuntime(t)
	doc, err := Parse([]byte(`
pattern: Shop.*
calls:
  - method: list
  - method: get
    derive: prev.items
`))
	require.NoError(t, err)

	_, err = doc.Run(context.Background(), rt)
	assert.True(t, errors.Is(err, model.ErrParamsDerivation))
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("PIPELINE_COOKIE", "sid=9")
	path := filepath.Join(t.TempDir(), "run.yaml")
	writeFile(t, path, "ids: [Shop.list]\ncookie: ${PIPELINE_COOKIE}\ncalls: [{method: list}]\n")

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sid=9", doc.Cookie)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
