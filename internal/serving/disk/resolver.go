package disk

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"gemini-pages/internal/gemini"
)

type resolveState int

const (
	// stateServeFile means the walk hit a regular file; serveFile takes
	// over with the remaining decisions.
	stateServeFile resolveState = iota

	// stateAtDirectory means all segments were consumed while still on
	// a directory; index lookup and listing synthesis take over.
	stateAtDirectory

	// stateFailed carries a terminal failure response.
	stateFailed
)

type resolution struct {
	state    resolveState
	fullPath string
	failure  gemini.Response
}

func failed(status int, message string) resolution {
	return resolution{state: stateFailed, failure: gemini.Failure(status, message)}
}

// resolve walks match one segment at a time under the root directory.
// Exclusion patterns are checked before any stat, so an excluded name is
// rejected no matter what exists on disk. Every intermediate directory
// must grant execute access before the walk descends into it.
func (d *Disk) resolve(match string) resolution {
	fullPath := d.rootDir

	for _, segment := range splitSegments(match) {
		// Never step out of the root, whatever the exclusion list says.
		if segment == "." || segment == ".." {
			return failed(gemini.StatusNotFound, msgNotFound)
		}

		if d.excluded(segment) {
			return failed(gemini.StatusNotFound, msgNotFound)
		}

		fullPath = filepath.Join(fullPath, segment)

		fi, err := os.Stat(fullPath)
		if err != nil {
			log.WithError(err).WithField("path", fullPath).Warning("failed to stat path component")
			return failed(gemini.StatusNotFound, msgNotFound)
		}

		switch {
		case fi.IsDir():
			if !canTraverse(fullPath) {
				log.WithField("path", fullPath).Warning("directory denies execute access")
				return failed(gemini.StatusNotFound, msgNotFound)
			}

		case fi.Mode().IsRegular():
			return resolution{state: stateServeFile, fullPath: fullPath}

		default:
			// Sockets, devices and other special files are never served.
			return failed(gemini.StatusNotFound, msgNotFound)
		}
	}

	return resolution{state: stateAtDirectory, fullPath: fullPath}
}

// excluded reports whether a single segment name matches any exclusion
// pattern.
func (d *Disk) excluded(segment string) bool {
	for _, re := range d.exclusions {
		if re.MatchString(segment) {
			return true
		}
	}
	return false
}

// splitSegments breaks a matched path into its non-empty segments. The
// result is a fresh slice per request; nothing is shared between walks.
func splitSegments(match string) []string {
	parts := strings.Split(match, "/")

	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
