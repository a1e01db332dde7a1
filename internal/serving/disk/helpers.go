package disk

import (
	"mime"
	"net/http"
	"net/url"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const sniffLen = 512

// canRead reports whether the current process may read the file.
func canRead(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}

// canExecute reports whether the current process may execute the file.
func canExecute(path string) bool {
	return unix.Access(path, unix.X_OK) == nil
}

// canTraverse reports whether the current process may descend into the
// directory. Same permission bit as canExecute, named for what it means
// on a directory.
func canTraverse(path string) bool {
	return unix.Access(path, unix.X_OK) == nil
}

// Detect the file's content type either by extension or mime-sniffing
// over the already read body.
func detectContentType(path string, body []byte) string {
	contentType := mime.TypeByExtension(filepath.Ext(path))

	if contentType == "" {
		if len(body) > sniffLen {
			body = body[:sniffLen]
		}
		contentType = http.DetectContentType(body)
	}

	return contentType
}

// escapePath percent-encodes a path for safe embedding in a generated
// link, keeping '/' separators intact. url.PathUnescape inverts it.
func escapePath(path string) string {
	u := url.URL{Path: path}
	return u.EscapedPath()
}
