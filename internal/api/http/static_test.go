package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticServing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>dashboard</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app-1234.js"), []byte("console.log(1)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "favicon.svg"), []byte("<svg/>"), 0o644))

	e := newTestEnv(t)
	RegisterStatic(e.app, dir)

	get := func(path string) (*http.Response, string) {
		resp, err := e.app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	resp, body := get("/assets/app-1234.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "console.log(1)", body)
	assert.Equal(t, immutableCache, resp.Header.Get("Cache-Control"))

	resp, body = get("/favicon.svg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<svg/>", body)
	assert.Empty(t, resp.Header.Get("Cache-Control"))

	for _, path := range []string{"/", "/settings", "/radar/loop"} {
		resp, body = get(path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "<html>dashboard</html>", body, path)
	}

	// API routes still win, and unknown API paths are not swallowed.
	resp, _ = get("/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get("/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
