package cgi

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gemini-pages/internal/gemini"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "script")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)
	require.NoError(t, err)

	return path
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExecutePassesResponseThrough(t *testing.T) {
	script := writeScript(t, `printf '20 text/gemini\r\n# generated\n'`)
	executor := New("example.org", 1965, 0)

	resp := executor.Execute("", script, mustParseURL(t, "gemini://example.org/cgi/script"))

	require.Equal(t, gemini.StatusSuccess, resp.Status)
	require.Equal(t, "text/gemini", resp.Meta)
	require.Equal(t, "# generated\n", string(resp.Body))
}

func TestExecuteEnvironment(t *testing.T) {
	script := writeScript(t, `printf '20 text/plain\r\n'; env | sort`)
	executor := New("example.org", 1965, 0)

	resp := executor.Execute("alice", script, mustParseURL(t, "gemini://example.org/cgi/script?q=1"))

	require.Equal(t, gemini.StatusSuccess, resp.Status)

	env := string(resp.Body)
	require.Contains(t, env, "GEMINI_URL=gemini://example.org/cgi/script?q=1")
	require.Contains(t, env, "QUERY_STRING=q=1")
	require.Contains(t, env, "PATH_INFO=/cgi/script")
	require.Contains(t, env, "SERVER_NAME=example.org")
	require.Contains(t, env, "SERVER_PORT=1965")
	require.Contains(t, env, "REMOTE_USER=alice")
	require.NotContains(t, env, "HOME=")
}

func TestExecuteOmitsRemoteUserWithoutIdentity(t *testing.T) {
	script := writeScript(t, `printf '20 text/plain\r\n'; env`)
	executor := New("example.org", 1965, 0)

	resp := executor.Execute("", script, mustParseURL(t, "gemini://example.org/cgi/script"))

	require.Equal(t, gemini.StatusSuccess, resp.Status)
	require.NotContains(t, string(resp.Body), "REMOTE_USER=")
}

func TestExecuteNonZeroExit(t *testing.T) {
	script := writeScript(t, `echo boom >&2; exit 3`)
	executor := New("example.org", 1965, 0)

	resp := executor.Execute("", script, mustParseURL(t, "gemini://example.org/cgi/script"))

	require.Equal(t, gemini.StatusCGIError, resp.Status)
}

func TestExecuteMalformedHeader(t *testing.T) {
	script := writeScript(t, `printf 'hello world\r\n'`)
	executor := New("example.org", 1965, 0)

	resp := executor.Execute("", script, mustParseURL(t, "gemini://example.org/cgi/script"))

	require.Equal(t, gemini.StatusCGIError, resp.Status)
}

func TestExecuteTimeout(t *testing.T) {
	script := writeScript(t, `sleep 5`)
	executor := New("example.org", 1965, 100*time.Millisecond)

	started := time.Now()
	resp := executor.Execute("", script, mustParseURL(t, "gemini://example.org/cgi/script"))

	require.Equal(t, gemini.StatusCGIError, resp.Status)
	require.Less(t, time.Since(started), 3*time.Second)
}

func TestParseResponseStatusOnly(t *testing.T) {
	resp, err := parseResponse(strings.NewReader("51 Not found\r\n"))
	require.NoError(t, err)
	require.Equal(t, gemini.StatusNotFound, resp.Status)
	require.Equal(t, "Not found", resp.Meta)
	require.Empty(t, resp.Body)
}
