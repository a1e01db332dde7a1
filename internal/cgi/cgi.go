// Package cgi runs executable resources and turns their standard output
// into complete protocol responses.
package cgi

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"gemini-pages/internal/gemini"
	"gemini-pages/metrics"
)

const (
	// DefaultTimeout bounds a single CGI execution.
	DefaultTimeout = 10 * time.Second

	msgCGIError = "CGI error"
)

// Executor runs executables with a CGI-style environment.
type Executor struct {
	// ServerName and ServerPort describe the listener the request came
	// in on, exported to the child process.
	ServerName string
	ServerPort int

	// Timeout bounds the child process lifetime. Zero means
	// DefaultTimeout.
	Timeout time.Duration
}

// New returns an Executor exporting the given listener identity.
func New(serverName string, serverPort int, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Executor{
		ServerName: serverName,
		ServerPort: serverPort,
		Timeout:    timeout,
	}
}

// Execute runs filePath and relays its standard output verbatim as the
// protocol response. A non-zero exit, a timeout or a malformed response
// header all collapse into a 42.
func (e *Executor) Execute(identity, filePath string, location *url.URL) gemini.Response {
	started := time.Now()
	defer func() {
		metrics.CGIDuration.Observe(time.Since(started).Seconds())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), e.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, filePath)
	cmd.Dir = filepath.Dir(filePath)
	cmd.Env = e.environment(identity, filePath, location)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"path":   filePath,
			"stderr": strings.TrimSpace(stderr.String()),
		}).Error("CGI execution failed")

		return gemini.Failure(gemini.StatusCGIError, msgCGIError)
	}

	resp, err := parseResponse(&stdout)
	if err != nil {
		log.WithError(err).WithField("path", filePath).Error("CGI produced a malformed response")
		return gemini.Failure(gemini.StatusCGIError, msgCGIError)
	}

	return resp
}

// environment builds the CGI-style process environment. The PATH is
// deliberately minimal; nothing else from the server environment leaks
// into the child.
func (e *Executor) environment(identity, filePath string, location *url.URL) []string {
	env := []string{
		"PATH=/usr/bin:/bin",
		"GATEWAY_INTERFACE=CGI/1.1",
		"GEMINI_URL=" + location.String(),
		"SCRIPT_PATH=" + filePath,
		"PATH_INFO=" + location.Path,
		"QUERY_STRING=" + location.RawQuery,
		"SERVER_NAME=" + e.ServerName,
		"SERVER_PORT=" + strconv.Itoa(e.ServerPort),
		"SERVER_SOFTWARE=gemini-pages",
	}

	if identity != "" {
		env = append(env, "REMOTE_USER="+identity, "AUTH_TYPE=Certificate")
	}

	return env
}

// parseResponse splits CGI output into the header line and body. The
// header must be "<status><SP><meta>" with a two digit status.
func parseResponse(output io.Reader) (gemini.Response, error) {
	reader := bufio.NewReader(output)

	header, err := reader.ReadString('\n')
	if err != nil {
		return gemini.Response{}, fmt.Errorf("read response header: %w", err)
	}

	header = strings.TrimRight(header, "\r\n")

	split := strings.SplitN(header, " ", 2)
	status, err := strconv.Atoi(split[0])
	if err != nil || status < 10 || status > 69 {
		return gemini.Response{}, fmt.Errorf("invalid response status %q", split[0])
	}

	var meta string
	if len(split) == 2 {
		meta = split[1]
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return gemini.Response{}, fmt.Errorf("read response body: %w", err)
	}

	return gemini.Response{Status: status, Meta: meta, Body: body}, nil
}
