package disk

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"gemini-pages/internal/gemini"
	"gemini-pages/internal/version"
	"gemini-pages/metrics"
)

const listingSeparator = "---------------------------"

// synthesizeIndex builds a text/gemini listing for a directory without an
// index file. Entries failing their exclusion or access check are
// silently omitted; the listing itself succeeds whenever the containing
// directory is readable.
func (d *Disk) synthesizeIndex(dirPath, matchPath string) gemini.Response {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		log.WithError(err).WithField("path", dirPath).Warning("failed to list directory")
		return gemini.Failure(gemini.StatusTemporaryFailure, msgTemporaryFailure)
	}

	var dirs, files []string
	for _, entry := range entries {
		name := entry.Name()
		if d.excluded(name) {
			continue
		}

		entryPath := filepath.Join(dirPath, name)

		// Stat, not the dirent type: symlinked entries classify as
		// whatever they point at.
		fi, err := os.Stat(entryPath)
		if err != nil {
			continue
		}

		switch {
		case fi.IsDir():
			if canTraverse(entryPath) {
				dirs = append(dirs, name)
			}
		case fi.Mode().IsRegular():
			if canRead(entryPath) {
				files = append(files, name)
			}
		}
	}

	// Raw byte-wise order, no locale collation.
	sort.Strings(dirs)
	sort.Strings(files)

	metrics.ListingEntries.Observe(float64(len(dirs) + len(files)))

	lines := make([]string, 0, len(dirs)+len(files)+7)
	lines = append(lines, "Index of "+matchPath, listingSeparator, "")

	for _, name := range dirs {
		lines = append(lines, "=> "+escapePath(name)+"/\t"+name+"/")
	}
	if len(dirs) > 0 {
		lines = append(lines, "")
	}

	for _, name := range files {
		lines = append(lines, "=> "+escapePath(name)+"\t"+name)
	}

	lines = append(lines, "", listingSeparator, version.Signature())

	body := strings.Join(lines, "\r\n") + "\r\n"

	return gemini.Success(gemini.MIMEGemtext, []byte(body))
}
