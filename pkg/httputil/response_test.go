package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON with correct content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusOK, map[string]string{"foo": "bar"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var result map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "bar", result["foo"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		code   string
	}{
		{"explicit status", func(w http.ResponseWriter) { WriteError(w, http.StatusBadGateway, "bad_gateway", "down") }, http.StatusBadGateway, "bad_gateway"},
		{"bad request", func(w http.ResponseWriter) { WriteBadRequest(w, "invalid", "down") }, http.StatusBadRequest, "invalid"},
		{"not found", func(w http.ResponseWriter) { WriteNotFound(w, "not_found", "down") }, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.status, rec.Code)
			var result map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.Equal(t, tt.code, result["error"])
			assert.Equal(t, "down", result["message"])
		})
	}
}

func TestWriteBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        any
		contentType string
		want        string
	}{
		{"raw bytes", []byte{0x01, 0x02}, "application/octet-stream", "\x01\x02"},
		{"text", "hello", "text/plain; charset=utf-8", "hello"},
		{"json", map[string]any{"ok": true}, "application/json", "{\"ok\":true}\n"},
		{"null", nil, "application/json", "null\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			WriteBody(rec, tt.body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}
