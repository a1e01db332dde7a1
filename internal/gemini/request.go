package gemini

import (
	"bufio"
	"errors"
	"io"
	"net/url"
	"strings"
)

// MaxRequestLength is the maximum size in bytes of a request line,
// excluding the terminating CRLF.
const MaxRequestLength = 1024

var (
	ErrRequestTooLong   = errors.New("request line exceeds 1024 bytes")
	ErrMalformedRequest = errors.New("malformed request line")
	ErrMissingScheme    = errors.New("request URL must be absolute")
	ErrWrongScheme      = errors.New("request URL scheme must be gemini")
)

// Request is a single parsed request line plus the connection level
// attributes the handlers care about.
type Request struct {
	// URL is the absolute request URL.
	URL *url.URL

	// Identity is an opaque identifier derived from the client
	// certificate, empty when the client offered none.
	Identity string

	// RemoteAddr is the client address, for logging only.
	RemoteAddr string
}

// ReadRequest reads and parses one CRLF terminated request line from r.
func ReadRequest(r io.Reader) (*Request, error) {
	// One byte over budget is enough to detect an oversized request
	// without reading an unbounded line into memory.
	limited := &io.LimitedReader{R: r, N: MaxRequestLength + 2 + 1}

	line, err := bufio.NewReaderSize(limited, MaxRequestLength+3).ReadString('\n')
	if err != nil {
		if limited.N == 0 {
			return nil, ErrRequestTooLong
		}
		return nil, err
	}

	if !strings.HasSuffix(line, "\r\n") {
		return nil, ErrMalformedRequest
	}

	rawURL := strings.TrimSuffix(line, "\r\n")
	if len(rawURL) > MaxRequestLength {
		return nil, ErrRequestTooLong
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrMalformedRequest
	}

	if !u.IsAbs() {
		return nil, ErrMissingScheme
	}

	if u.Scheme != "gemini" {
		return nil, ErrWrongScheme
	}

	return &Request{URL: u}, nil
}
