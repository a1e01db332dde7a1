package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	mimedb "gitlab.com/gitlab-org/go-mimedb"

	cfg "gemini-pages/internal/config"
	"gemini-pages/internal/logging"
	"gemini-pages/internal/version"
)

func loadMIMETypes() {
	if err := mimedb.LoadTypes(); err != nil {
		log.WithError(err).Warning("failed to load mime types, falling back to the built-in table")
	}

	addExtraMIMETypes()
}

func appMain() {
	config, err := cfg.LoadConfig()
	if err != nil {
		fatal(err)
	}

	if config.General.ShowVersion {
		fmt.Printf("%s %s (%s)\n", "gemini-pages", version.Version, version.Revision)
		os.Exit(0)
	}

	if err := logging.ConfigureLogging(config.Log.Format, config.Log.Verbose); err != nil {
		fatal(err)
	}

	loadMIMETypes()

	log.WithFields(log.Fields{
		"version":  version.Version,
		"revision": version.Revision,
		"root_dir": config.Serving.RootDir,
	}).Info("gemini-pages starting")

	if err := runApp(config); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	log.WithError(err).Fatal()
}

func main() {
	appMain()
}
