package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
)

func validateConfig(config *Config) error {
	var result *multierror.Error

	if err := validateUpstreamConfig(config); err != nil {
		result = multierror.Append(result, err)
	}

	if err := validateCacheConfig(config); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

func validateUpstreamConfig(config *Config) error {
	u := config.Upstream.Origin
	if u == nil || u.Host == "" {
		return errors.New("upstream-origin must be defined")
	}

	// url.Parse ensures that the Scheme attribute is always lower case.
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("upstream-origin scheme must be either http:// or https://")
	}

	return nil
}

func validateCacheConfig(config *Config) error {
	var result *multierror.Error

	if config.Cache.VersionTag == "" {
		result = multierror.Append(result, errors.New("cache-version must not be empty"))
	}

	if config.Cache.DBPath == "" {
		result = multierror.Append(result, errors.New("cache-db must not be empty"))
	}

	for _, path := range config.Cache.PrecachePaths {
		if !strings.HasPrefix(path, "/") {
			result = multierror.Append(result, fmt.Errorf("precache-path %q must start with /", path))
		}
	}

	for _, pattern := range config.Cache.RuntimePatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid runtime-pattern %q: %w", pattern, err))
		}
	}

	return result.ErrorOrNil()
}
