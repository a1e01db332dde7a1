package main

import (
	"mime"

	log "github.com/sirupsen/logrus"
)

var extraMIMETypes = map[string]string{
	".gemini": "text/gemini",
	".gmi":    "text/gemini",
}

func addExtraMIMETypes() {
	for ext, mimeType := range extraMIMETypes {
		if err := mime.AddExtensionType(ext, mimeType); err != nil {
			log.WithError(err).Errorf("failed to add extension: %q with MIME type: %q", ext, mimeType)
		}
	}
}
