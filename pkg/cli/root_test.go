package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "interfaceRules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "interface.json"), []byte(`{
  "status": "prod",
  "interfaces": [
    {"id": "Shop.list", "urls": {"prod": "http://127.0.0.1:1/list"}, "isRuleStatic": true}
  ]
}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "interfaceRules", "Shop.list.rule.json"),
		[]byte(`{"response": {"items": [1]}, "responseError": {"failed": true}}`), 0o644))
	return filepath.Join(dir, "interface.json")
}

func execute(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = ExecuteArgs(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestSettingsPrecedence(t *testing.T) {
	t.Setenv("MODELPROXY_STATUS", "mock")
	t.Setenv("MODELPROXY_LOG_LEVEL", "warn")

	g := &globals{status: "mockerr"}
	s, err := g.settings()
	require.NoError(t, err)
	assert.Equal(t, "mockerr", s.Status)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
}

func TestCallUsesEnvironmentStatus(t *testing.T) {
	path := writeConfig(t)

	t.Setenv("MODELPROXY_STATUS", "mock")
	code, stdout, stderr := execute("call", "Shop.list", "-c", path)
	require.Equal(t, 0, code, stderr)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &body))
	assert.Equal(t, map[string]any{"items": []any{float64(1)}}, body)

	code, stdout, stderr = execute("call", "Shop.list", "-c", path, "--status", "mockerr")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `{"failed": true}`, stdout)
}

func TestCallLiveTransportFailure(t *testing.T) {
	path := writeConfig(t)

	code, _, stderr := execute("call", "Shop.list", "-c", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: request to http://127.0.0.1:1/list failed")
}

func TestIDsJSON(t *testing.T) {
	path := writeConfig(t)

	code, stdout, stderr := execute("ids", "-c", path, "--json")
	require.Equal(t, 0, code, stderr)

	var rows []IDRow
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, IDRow{ID: "Shop.list", Status: "prod", Method: "GET", Mode: "live", URL: "http://127.0.0.1:1/list"}, rows[0])
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := execute("frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: unknown command")
}
