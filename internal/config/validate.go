package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/hashicorp/go-multierror"

	tlsconfig "gemini-pages/internal/config/tls"
)

func validateConfig(config *Config) error {
	var result *multierror.Error

	result = multierror.Append(result,
		validateListeners(config),
		validateRootDir(config),
		validateRoutePattern(config),
		validateTLS(config),
	)

	return result.ErrorOrNil()
}

func validateListeners(config *Config) error {
	if len(config.Listeners.Addresses) == 0 && len(config.Listeners.ProxyV2Addresses) == 0 {
		return errors.New("at least one of listen-addr or listen-proxy-v2-addr must be provided")
	}

	return nil
}

func validateRootDir(config *Config) error {
	fi, err := os.Stat(config.Serving.RootDir)
	if err != nil {
		return fmt.Errorf("root-dir: %w", err)
	}

	if !fi.IsDir() {
		return fmt.Errorf("root-dir %q is not a directory", config.Serving.RootDir)
	}

	return nil
}

func validateRoutePattern(config *Config) error {
	if _, err := regexp.Compile(config.Serving.RoutePattern); err != nil {
		return fmt.Errorf("route-pattern: %w", err)
	}

	return nil
}

func validateTLS(config *Config) error {
	var result *multierror.Error

	if config.TLS.CertFile == "" {
		result = multierror.Append(result, errors.New("tls-cert must be provided"))
	}
	if config.TLS.KeyFile == "" {
		result = multierror.Append(result, errors.New("tls-key must be provided"))
	}

	if err := tlsconfig.ValidateTLSVersions(*tlsMinVersion, *tlsMaxVersion); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}
