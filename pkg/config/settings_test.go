package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	for _, key := range []string{"MODELPROXY_CONFIG", "MODELPROXY_STATUS", "MODELPROXY_ENGINE", "MODELPROXY_RULEBASE", "MODELPROXY_LOG_LEVEL", "MODELPROXY_LOG_FORMAT", "MODELPROXY_SIGNING_KEY", "MODELPROXY_SIGNING_ISSUER"} {
		t.Setenv(key, "") // restores the original value on cleanup
		require.NoError(t, os.Unsetenv(key))
	}

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Equal(t, "modelproxy", s.SigningIssuer)
	assert.Empty(t, s.RegistryOptions())
}

func TestLoadSettingsFromEnv(t *testing.T) {
	t.Setenv("MODELPROXY_CONFIG", "/etc/modelproxy/interface.json")
	t.Setenv("MODELPROXY_STATUS", "mock")
	t.Setenv("MODELPROXY_ENGINE", "schema")
	t.Setenv("MODELPROXY_RULEBASE", "/etc/modelproxy/rules")
	t.Setenv("MODELPROXY_LOG_LEVEL", "debug")
	t.Setenv("MODELPROXY_SIGNING_KEY", "secret")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "/etc/modelproxy/interface.json", s.ConfigPath)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "secret", s.SigningKey)

	reg, err := NewRegistry(&Document{Status: "prod", Engine: "template"}, t.TempDir(), s.RegistryOptions()...)
	require.NoError(t, err)
	assert.Equal(t, "mock", reg.Status())
	assert.Equal(t, "schema", reg.EngineName())
	assert.Equal(t, "/etc/modelproxy/rules", reg.Rulebase())
}
