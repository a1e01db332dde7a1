package main

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	cfg "gemini-pages/internal/config"
	"gemini-pages/internal/ratelimiter"
	"gemini-pages/internal/routing"
	"gemini-pages/internal/serving/disk"
)

func testApp(t *testing.T, root string) *theApp {
	t.Helper()

	driver, err := disk.New(disk.Config{RootDir: root}, nil)
	require.NoError(t, err)

	router := &routing.Router{}
	require.NoError(t, router.Add(`/(.*)`, driver))

	return &theApp{
		config: &cfg.Config{},
		router: router,
	}
}

func exchange(t *testing.T, a *theApp, request string) string {
	t.Helper()

	server, client := net.Pipe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.handleConn(server)
	}()

	// Write concurrently: net.Pipe is unbuffered, and handlers may
	// respond (e.g. rate limiting) without reading the request first.
	go func() {
		client.Write([]byte(request))
	}()

	raw, err := io.ReadAll(client)
	require.NoError(t, err)
	client.Close()
	<-done

	return string(raw)
}

func TestHandleConnServesFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.gemini"), []byte("# hello\n"), 0o644))

	a := testApp(t, root)

	raw := exchange(t, a, "gemini://example.org/a.gemini\r\n")
	require.Equal(t, "20 text/gemini\r\n# hello\n", raw)
}

func TestHandleConnBadRequest(t *testing.T) {
	a := testApp(t, t.TempDir())

	raw := exchange(t, a, "not a url\n")
	require.Equal(t, "59 Bad request\r\n", raw)
}

func TestHandleConnDirectoryRedirect(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))

	a := testApp(t, root)

	raw := exchange(t, a, "gemini://example.org/docs\r\n")
	require.Equal(t, "31 /docs/\r\n", raw)
}

func TestHandleConnRateLimited(t *testing.T) {
	a := testApp(t, t.TempDir())
	a.rateLimiter = ratelimiter.New(
		ratelimiter.WithSourceIPLimitPerSecond(1),
		ratelimiter.WithSourceIPBurstSize(1),
	)

	// net.Pipe addresses are constant, both exchanges share a bucket.
	exchange(t, a, "gemini://example.org/\r\n")
	raw := exchange(t, a, "gemini://example.org/\r\n")
	require.Equal(t, "44 Slow down\r\n", raw)
}
