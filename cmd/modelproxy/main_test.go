package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain registers the modelproxy command so scripts run it in-process.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"modelproxy": run,
	}))
}

func TestScripts(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			w.Header().Set("Set-Cookie", "seen=1")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"` + r.URL.Query().Get("id") + `","cookie":"` + r.Header.Get("Cookie") + `"}`))
		case "/text":
			_, _ = w.Write([]byte("plain answer"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer backend.Close()

	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			env.Setenv("BACKEND_URL", backend.URL)
			return nil
		},
	})
}
