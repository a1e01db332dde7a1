package disk

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gemini-pages/internal/gemini"
	"gemini-pages/internal/serving"
	"gemini-pages/metrics"
)

const (
	// DefaultIndexFilename is served in place of a directory listing
	// when it exists inside the requested directory.
	DefaultIndexFilename = "index.gemini"

	// DefaultTextExtensionPattern classifies files served as text/gemini.
	DefaultTextExtensionPattern = `\.gemini$`
)

// DefaultExclusionPatterns hides dotfiles. Patterns are matched against a
// single path segment at a time, never a full path.
var DefaultExclusionPatterns = []string{`^\.`}

// Config holds the filesystem serving options. It is read-only after New
// and safe for unsynchronized concurrent use.
type Config struct {
	// RootDir is the directory all matched paths resolve under.
	RootDir string

	// IndexFilename is the well-known file served for a directory
	// request. Defaults to DefaultIndexFilename.
	IndexFilename string

	// TextExtensionPattern matches file names to be served as
	// text/gemini. Defaults to DefaultTextExtensionPattern.
	TextExtensionPattern string

	// ExclusionPatterns veto individual path segments before any
	// filesystem probe. Defaults to DefaultExclusionPatterns.
	ExclusionPatterns []string
}

// Executor runs an executable resource and produces the complete protocol
// response on the serving driver's behalf.
type Executor interface {
	Execute(identity, filePath string, location *url.URL) gemini.Response
}

// Disk is a serving driver reading content from a local directory tree.
type Disk struct {
	rootDir       string
	indexFilename string
	textExtension *regexp.Regexp
	exclusions    []*regexp.Regexp
	executor      Executor
}

// New validates cfg, fills unset fields with defaults, compiles the
// segment and extension patterns and returns a driver sharing them across
// all requests.
func New(cfg Config, executor Executor) (*Disk, error) {
	if cfg.RootDir == "" {
		return nil, fmt.Errorf("disk serving: root directory is required")
	}

	if cfg.IndexFilename == "" {
		cfg.IndexFilename = DefaultIndexFilename
	}

	if cfg.TextExtensionPattern == "" {
		cfg.TextExtensionPattern = DefaultTextExtensionPattern
	}

	if cfg.ExclusionPatterns == nil {
		cfg.ExclusionPatterns = DefaultExclusionPatterns
	}

	textExtension, err := regexp.Compile(cfg.TextExtensionPattern)
	if err != nil {
		return nil, fmt.Errorf("disk serving: compile text extension pattern: %w", err)
	}

	exclusions := make([]*regexp.Regexp, 0, len(cfg.ExclusionPatterns))
	for _, pattern := range cfg.ExclusionPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("disk serving: compile exclusion pattern %q: %w", pattern, err)
		}
		exclusions = append(exclusions, re)
	}

	return &Disk{
		rootDir:       filepath.Clean(cfg.RootDir),
		indexFilename: cfg.IndexFilename,
		textExtension: textExtension,
		exclusions:    exclusions,
		executor:      executor,
	}, nil
}

// Serve resolves the matched path under the root directory and answers
// with file content, a CGI response, a trailing-slash redirect or a
// synthesized directory listing.
func (d *Disk) Serve(h serving.Handler) gemini.Response {
	resp := d.serve(h)
	metrics.RequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.Status)).Inc()
	return resp
}

func (d *Disk) serve(h serving.Handler) gemini.Response {
	resolution := d.resolve(h.Match)

	switch resolution.state {
	case stateServeFile:
		return d.serveFile(h, resolution.fullPath)

	case stateFailed:
		return resolution.failure

	case stateAtDirectory:
		// Clients resolve relative links against the request URL, so a
		// directory has to be entered with a trailing slash.
		if !strings.HasSuffix(h.Request.URL.Path, "/") {
			return gemini.Redirect(escapePath(h.Request.URL.Path + "/"))
		}

		indexPath := filepath.Join(resolution.fullPath, d.indexFilename)
		if fi, err := os.Stat(indexPath); err == nil && fi.Mode().IsRegular() && canRead(indexPath) {
			return d.serveFile(h, indexPath)
		}

		return d.synthesizeIndex(resolution.fullPath, h.Match)
	}

	return gemini.Failure(gemini.StatusTemporaryFailure, msgTemporaryFailure)
}
