package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValue(t *testing.T) {
	tests := []struct {
		in         string
		delims     []rune
		key, value string
		ok         bool
	}{
		{"id=7", nil, "id", "7", true},
		{"q=a=b", nil, "q", "a=b", true},
		{"Accept:json", []rune{':'}, "Accept", "json", true},
		{"novalue", nil, "", "", false},
	}
	for _, tt := range tests {
		key, value, ok := KeyValue(tt.in, tt.delims...)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.key, key, tt.in)
		assert.Equal(t, tt.value, value, tt.in)
	}
}

func TestParams(t *testing.T) {
	params, err := Params([]string{"id=7", "tag=a", "tag=b", "tag=c", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":    "7",
		"tag":   []string{"a", "b", "c"},
		"empty": "",
	}, params)

	_, err = Params([]string{"=x"})
	assert.Error(t, err)
	_, err = Params([]string{"bare"})
	assert.Error(t, err)
}
