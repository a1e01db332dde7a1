package disk

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gemini-pages/internal/gemini"
	"gemini-pages/internal/version"
)

func TestSynthesizeIndexLayout(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(docs, "a.gemini"), "# a\n", 0o644)
	writeFile(t, filepath.Join(docs, "b.txt"), "b", 0o644)
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "img"), 0o755))

	d := newTestDisk(t, Config{RootDir: root}, nil)
	resp := d.Serve(newHandler(t, "gemini://example.org/docs/", "docs"))

	require.Equal(t, gemini.StatusSuccess, resp.Status)
	require.Equal(t, gemini.MIMEGemtext, resp.Meta)

	want := strings.Join([]string{
		"Index of docs",
		"---------------------------",
		"",
		"=> img/\timg/",
		"",
		"=> a.gemini\ta.gemini",
		"=> b.txt\tb.txt",
		"",
		"---------------------------",
		version.Signature(),
	}, "\r\n") + "\r\n"

	require.Equal(t, want, string(resp.Body))
}

func TestSynthesizeIndexWithoutDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "only.txt"), "x", 0o644)

	d := newTestDisk(t, Config{RootDir: root}, nil)
	resp := d.Serve(newHandler(t, "gemini://example.org/docs/", "docs"))

	// No separating blank line when there is no directory group.
	want := strings.Join([]string{
		"Index of docs",
		"---------------------------",
		"",
		"=> only.txt\tonly.txt",
		"",
		"---------------------------",
		version.Signature(),
	}, "\r\n") + "\r\n"

	require.Equal(t, want, string(resp.Body))
}

func TestSynthesizeIndexOmitsExcludedEntries(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(docs, "visible.txt"), "x", 0o644)
	writeFile(t, filepath.Join(docs, ".hidden"), "x", 0o644)
	require.NoError(t, os.MkdirAll(filepath.Join(docs, ".svn"), 0o755))

	d := newTestDisk(t, Config{RootDir: root}, nil)
	resp := d.Serve(newHandler(t, "gemini://example.org/docs/", "docs"))

	body := string(resp.Body)
	require.Contains(t, body, "visible.txt")
	require.NotContains(t, body, ".hidden")
	require.NotContains(t, body, ".svn")
}

func TestSynthesizeIndexOmitsInaccessibleEntries(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(docs, "readable.txt"), "x", 0o644)
	writeFile(t, filepath.Join(docs, "sealed.txt"), "x", 0o200)
	sealedDir := filepath.Join(docs, "vault")
	require.NoError(t, os.MkdirAll(sealedDir, 0o600))
	t.Cleanup(func() { os.Chmod(sealedDir, 0o755) })

	d := newTestDisk(t, Config{RootDir: root}, nil)
	resp := d.Serve(newHandler(t, "gemini://example.org/docs/", "docs"))

	require.Equal(t, gemini.StatusSuccess, resp.Status)
	body := string(resp.Body)
	require.Contains(t, body, "readable.txt")
	require.NotContains(t, body, "sealed.txt")
	require.NotContains(t, body, "vault")
}

func TestSynthesizeIndexSortsBytewise(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	// Byte-wise order puts uppercase before lowercase.
	for _, name := range []string{"b.txt", "B.txt", "a.txt", "Z.txt"} {
		writeFile(t, filepath.Join(docs, name), "x", 0o644)
	}

	d := newTestDisk(t, Config{RootDir: root}, nil)
	resp := d.Serve(newHandler(t, "gemini://example.org/docs/", "docs"))

	body := string(resp.Body)
	require.Less(t, strings.Index(body, "B.txt"), strings.Index(body, "Z.txt"))
	require.Less(t, strings.Index(body, "Z.txt"), strings.Index(body, "a.txt"))
	require.Less(t, strings.Index(body, "a.txt"), strings.Index(body, "b.txt"))
}

func TestSynthesizeIndexEscapesLinkTargets(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(docs, "with space.txt"), "x", 0o644)
	writeFile(t, filepath.Join(docs, "100%.txt"), "x", 0o644)

	d := newTestDisk(t, Config{RootDir: root}, nil)
	resp := d.Serve(newHandler(t, "gemini://example.org/docs/", "docs"))

	body := string(resp.Body)
	require.Contains(t, body, "=> with%20space.txt\twith space.txt")
	require.Contains(t, body, "=> 100%25.txt\t100%.txt")
}

func TestSynthesizeIndexDirectoriesBeforeFiles(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(docs, "aaa.txt"), "x", 0o644)
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "zzz"), 0o755))

	d := newTestDisk(t, Config{RootDir: root}, nil)
	resp := d.Serve(newHandler(t, "gemini://example.org/docs/", "docs"))

	body := string(resp.Body)
	require.Less(t, strings.Index(body, "zzz/"), strings.Index(body, "aaa.txt"))
}
