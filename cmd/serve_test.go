package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*server, string) {
	t.Helper()
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "main.go"), []byte("package main\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "util.go"), []byte("package main\n\nfunc util() {}\n"), 0644))
	s, err := newServer(filepath.Join(t.TempDir(), "context"))
	require.NoError(t, err)
	return s, src
}

func doRequest(s *server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeContent(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp generateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Content
}

func TestGenerateLoadClear(t *testing.T) {
	s, src := newTestServer(t)

	body, err := json.Marshal(generateRequest{Source: src, Exclude: []string{"util.go"}})
	require.NoError(t, err)
	rec := doRequest(s, http.MethodPost, "/generate", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "## main.go\n\n```go\npackage main\n```", decodeContent(t, rec))

	rec = doRequest(s, http.MethodGet, "/load", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "## main.go\n\n```go\npackage main\n```", decodeContent(t, rec))

	rec = doRequest(s, http.MethodPost, "/clear", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoFileExists(t, s.contextFile())

	rec = doRequest(s, http.MethodGet, "/load", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeContent(t, rec))

	rec = doRequest(s, http.MethodPost, "/clear", "")
	assert.Equal(t, http.StatusNoContent, rec.Code, "clearing twice is fine")
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/generate", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPost, "/generate", `{"source": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPost, "/generate", `{"source": "not a source at all"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported source")

	rec = doRequest(s, http.MethodGet, "/generate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRootServesUI(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<title>contaix</title>")
}

func TestCORSHeaders(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/load", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
