// Package logging initializes the system logger and emits per-request
// access log lines.
package logging

import (
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/log"

	"gemini-pages/internal/gemini"
)

// ConfigureLogging will initialize the system logger.
func ConfigureLogging(format string, verbose bool) error {
	var levelOption log.LoggerOption

	if format == "" {
		format = "text"
	}

	if verbose {
		levelOption = log.WithLogLevel("debug")
	} else {
		levelOption = log.WithLogLevel("info")
	}

	_, err := log.Initialize(
		log.WithFormatter(format),
		levelOption,
	)
	return err
}

// LogAccess records one served request with its outcome.
func LogAccess(req *gemini.Request, resp gemini.Response, duration time.Duration) {
	log.WithFields(log.Fields{
		"remote_addr": req.RemoteAddr,
		"url":         CleanURL(req.URL),
		"identity":    req.Identity,
		"status":      resp.Status,
		"body_bytes":  len(resp.Body),
		"duration_s":  duration.Seconds(),
	}).Info("access")
}

// LogRequest will inject the request url into the logged messages.
func LogRequest(req *gemini.Request) *logrus.Entry {
	return log.WithFields(log.Fields{
		"remote_addr": req.RemoteAddr,
		"url":         CleanURL(req.URL),
	})
}

// CleanURL strips userinfo and fragment from a URL before logging it.
func CleanURL(u *url.URL) string {
	stripped := *u
	stripped.User = nil
	stripped.Fragment = ""
	return stripped.String()
}
