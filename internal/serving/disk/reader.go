package disk

import (
	"io"
	"os"
	"path/filepath"

	"gemini-pages/internal/gemini"
	"gemini-pages/internal/serving"
	"gemini-pages/metrics"
)

const (
	msgNotFound         = "Not found"
	msgTemporaryFailure = "Temporary failure"
)

// serveFile produces the response for a resolved regular file. Execute
// permission takes precedence over everything else: an executable file is
// delegated to the CGI executor and its response passed through verbatim,
// even when its name would match the text extension pattern.
func (d *Disk) serveFile(h serving.Handler, fullPath string) gemini.Response {
	if canExecute(fullPath) {
		return d.executor.Execute(h.Request.Identity, fullPath, h.Request.URL)
	}

	if !canRead(fullPath) {
		return gemini.Failure(gemini.StatusNotFound, msgNotFound)
	}

	contentType, body, err := d.readFile(fullPath)
	if err != nil {
		// The access check passed, so the file changed underneath us.
		return gemini.Failure(gemini.StatusTemporaryFailure, msgTemporaryFailure)
	}

	metrics.ServingFileSize.Observe(float64(len(body)))

	return gemini.Success(contentType, body)
}

// readFile slurps the whole file and classifies its content type, either
// as text/gemini by the extension pattern or through MIME detection.
func (d *Disk) readFile(fullPath string) (string, []byte, error) {
	file, err := os.Open(fullPath)
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}

	if d.textExtension.MatchString(filepath.Base(fullPath)) {
		return gemini.MIMEGemtext, body, nil
	}

	return detectContentType(fullPath, body), body, nil
}
