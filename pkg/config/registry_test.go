package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const sampleDocument = `{
  "title": "shop",
  "version": "1.0.0",
  "status": "prod",
  "interfaces": [
    {"id": "Search.getItems", "urls": {"prod": "http://search/items", "daily": "http://daily/items"}},
    {"id": "Search.suggest", "urls": {"prod": "http://search/suggest"}, "method": "post", "dataType": "TEXT", "timeout": 500, "encoding": "gbk"},
    {"id": "Cart.getCart", "status": "daily", "urls": {"daily": "http://daily/cart"}, "isCookieNeeded": true},
    {"id": "Cart.mocked", "status": "mockerr", "urls": {"prod": "http://cart/mocked"}, "isRuleStatic": true},
    {"id": "Search.getItems", "urls": {"prod": "http://duplicate"}},
    {"id": "bad id!", "urls": {"prod": "http://bad"}},
    {"urls": {"prod": "http://anonymous"}},
    {"id": "Orphan.noUrls"}
  ]
}`

func TestLoadNormalizesProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "interface.json")
	writeFile(t, path, sampleDocument)

	reg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shop", reg.Title())
	assert.Equal(t, "1.0.0", reg.Version())
	assert.Equal(t, "prod", reg.Status())
	assert.Equal(t, DefaultEngine, reg.EngineName())
	assert.Equal(t, filepath.Join(dir, DefaultRulebase), reg.Rulebase())
	assert.Equal(t, []string{"Search.getItems", "Search.suggest", "Cart.getCart", "Cart.mocked"}, reg.IDs())

	items, ok := reg.Profile("Search.getItems")
	require.True(t, ok)
	assert.Equal(t, "prod", items.Status, "status falls back to the document status")
	assert.Equal(t, MethodGet, items.Method)
	assert.Equal(t, DataTypeJSON, items.DataType)
	assert.Equal(t, DefaultTimeoutMS, items.Timeout)
	assert.Equal(t, DefaultEncoding, items.Encoding)
	assert.Equal(t, "http://search/items", items.URLs["prod"], "first registration wins over the duplicate")
	assert.Equal(t, filepath.Join(dir, DefaultRulebase, "Search.getItems.rule.json"), items.RuleFile)

	suggest, _ := reg.Profile("Search.suggest")
	assert.Equal(t, MethodPost, suggest.Method)
	assert.Equal(t, DataTypeText, suggest.DataType)
	assert.Equal(t, 500, suggest.Timeout)
	assert.Equal(t, "gbk", suggest.Encoding)

	cart, _ := reg.Profile("Cart.getCart")
	assert.Equal(t, "daily", cart.Status, "profile status present in urls is kept")
	assert.True(t, cart.IsCookieNeeded)

	mocked, _ := reg.Profile("Cart.mocked")
	assert.Equal(t, StatusMockErr, mocked.Status)
	assert.True(t, mocked.IsMock())

	assert.False(t, reg.Has("Orphan.noUrls"), "profile without urls or rule file is skipped")
	assert.False(t, reg.Has("bad id!"))
}

func TestProfileReturnsCopy(t *testing.T) {
	reg, err := NewRegistry(&Document{
		Status:     "prod",
		Interfaces: []*Profile{{ID: "A.b", URLs: map[string]string{"prod": "http://a"}}},
	}, t.TempDir())
	require.NoError(t, err)

	p, _ := reg.Profile("A.b")
	p.URLs["prod"] = "http://changed"
	p.Status = "other"

	again, _ := reg.Profile("A.b")
	assert.Equal(t, "http://a", again.URLs["prod"])
	assert.Equal(t, "prod", again.Status)
}

func TestLoadRequiresStatus(t *testing.T) {
	_, err := LoadBytes([]byte(`{"interfaces": []}`), false, t.TempDir())
	require.ErrorIs(t, err, ErrNoStatus)

	reg, err := LoadBytes([]byte(`{"interfaces": []}`), false, t.TempDir(), WithStatus("mock"))
	require.NoError(t, err)
	assert.Equal(t, "mock", reg.Status())
}

func TestOptionsOverrideDocument(t *testing.T) {
	dir := t.TempDir()
	reg, err := LoadBytes([]byte(`{"status": "prod", "engine": "template", "rulebase": "rules/"}`), false, dir,
		WithStatus("daily"), WithEngine("schema"))
	require.NoError(t, err)

	assert.Equal(t, "daily", reg.Status())
	assert.Equal(t, "schema", reg.EngineName())
	assert.Equal(t, filepath.Join(dir, "rules"), reg.Rulebase())

	reg, err = LoadBytes([]byte(`{"status": "prod"}`), false, dir, WithRulebase("/srv/rules"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/rules", reg.Rulebase())
}

func TestLoadYAMLWithIncludesAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SEARCH_HOST", "search.internal")

	writeFile(t, filepath.Join(dir, "interface.yaml"), `
title: yaml doc
status: prod
include:
  - "profiles/**/*.yaml"
interfaces:
  - id: Search.getItems
    urls:
      prod: "http://${SEARCH_HOST}/items"
      daily: "http://${DAILY_HOST:-daily.local}/items"
    timeout: 250
`)
	writeFile(t, filepath.Join(dir, "profiles", "cart", "cart.yaml"), `
interfaces:
  - id: Cart.getCart
    urls: {prod: "http://cart/get"}
`)
	writeFile(t, filepath.Join(dir, "profiles", "a.yaml"), `
interfaces:
  - id: Account.get
    urls: {prod: "http://account/get"}
`)

	reg, err := Load(filepath.Join(dir, "interface.yaml"))
	require.NoError(t, err)

	p, ok := reg.Profile("Search.getItems")
	require.True(t, ok)
	assert.Equal(t, "http://search.internal/items", p.URLs["prod"])
	assert.Equal(t, "http://daily.local/items", p.URLs["daily"])
	assert.Equal(t, 250, p.Timeout)

	assert.Equal(t, []string{"Search.getItems", "Account.get", "Cart.getCart"}, reg.IDs())
}

func TestLoadRejectsInvalidDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"timeout not integer", `{"status": "prod", "interfaces": [{"id": "A.b", "timeout": "fast"}]}`},
		{"urls not strings", `{"status": "prod", "interfaces": [{"id": "A.b", "urls": {"prod": 1}}]}`},
		{"interfaces not array", `{"status": "prod", "interfaces": {}}`},
		{"flag not boolean", `{"status": "prod", "interfaces": [{"id": "A.b", "isRuleStatic": "yes"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.doc), false, t.TempDir())
			require.ErrorIs(t, err, ErrInvalidDocument)
		})
	}

	_, err := LoadBytes([]byte(`{"status": `), false, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestIDsByPrefix(t *testing.T) {
	reg, err := NewRegistry(&Document{
		Status: "prod",
		Interfaces: []*Profile{
			{ID: "Search.getItems", URLs: map[string]string{"prod": "u"}},
			{ID: "Cart.getCart", URLs: map[string]string{"prod": "u"}},
			{ID: "Search.suggest", URLs: map[string]string{"prod": "u"}},
		},
	}, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, []string{"Search.getItems", "Search.suggest"}, reg.IDsByPrefix("Search."))
	assert.Equal(t, []string{"Cart.getCart"}, reg.IDsByPrefix("Cart"))
	assert.Empty(t, reg.IDsByPrefix("Nope."))
	assert.Nil(t, reg.IDsByPrefix(""))
}

func TestRule(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "interfaceRules")
	writeFile(t, filepath.Join(rules, "Search.getItems.rule.json"), `{"response": {"ok": 1}, "responseError": {"ok": 0}}`)
	writeFile(t, filepath.Join(rules, "custom", "cart.yaml"), "response:\n  items: [1, 2]\nresponseError: failed\n")
	writeFile(t, filepath.Join(rules, "Broken.rule.json"), `{"response": `)

	reg, err := NewRegistry(&Document{
		Status: "mock",
		Interfaces: []*Profile{
			{ID: "Search.getItems"},
			{ID: "Cart.getCart", RuleFile: "custom/cart.yaml"},
			{ID: "Broken", URLs: map[string]string{"prod": "u"}},
			{ID: "Missing", URLs: map[string]string{"prod": "u"}},
		},
	}, dir)
	require.NoError(t, err)

	rule, err := reg.Rule("Search.getItems")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": float64(1)}, rule.Fixture(StatusMock))
	assert.Equal(t, map[string]any{"ok": float64(0)}, rule.Fixture(StatusMockErr))
	assert.Contains(t, rule.Spec, "response")

	rule, err = reg.Rule("Cart.getCart")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"items": []any{float64(1), float64(2)}}, rule.Response)
	assert.Equal(t, "failed", rule.ResponseError)

	_, err = reg.Rule("Broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")

	_, err = reg.Rule("Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	_, err = reg.Rule("Unknown.id")
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDiscoverConfig(t *testing.T) {
	dir := t.TempDir()

	_, err := DiscoverConfig("", dir)
	require.ErrorIs(t, err, ErrNoConfig)

	writeFile(t, filepath.Join(dir, "interface.yaml"), "status: prod\n")
	path, err := DiscoverConfig("", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "interface.yaml"), path)

	writeFile(t, filepath.Join(dir, "interface.json"), `{"status": "prod"}`)
	path, err = DiscoverConfig("", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "interface.json"), path, "json wins over yaml")

	_, err = DiscoverConfig(filepath.Join(dir, "nope.json"), dir)
	require.Error(t, err)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MP_HOST", "example.com")
	assert.Equal(t, "http://example.com/a", ExpandEnvVars("http://${MP_HOST}/a"))
	assert.Equal(t, "fallback", ExpandEnvVars("${MP_UNSET_VAR:-fallback}"))
	assert.Equal(t, "", ExpandEnvVars("${MP_UNSET_VAR}"))
	assert.Equal(t, "$NOT_BRACED", ExpandEnvVars("$NOT_BRACED"))
}
