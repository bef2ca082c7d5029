// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
	"time"
)

// TimeLayout is the clock format used by time filters and the portal's recording dates.
const TimeLayout = "3:04 PM"

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validNaming = map[string]bool{
	"sortkey": true, "title": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Portal validation
	if c.Portal.BaseURL == "" {
		errs = append(errs, "portal.base_url: required")
	} else if u, err := url.Parse(c.Portal.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("portal.base_url: must be an http(s) URL, got %q", c.Portal.BaseURL))
	}
	if c.Portal.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("portal.timeout: must not be negative, got %s", c.Portal.Timeout))
	}

	// Collect validation
	if c.Collect.Concurrency < 0 {
		errs = append(errs, fmt.Sprintf("collect.concurrency: must be 0 (unbounded) or positive, got %d", c.Collect.Concurrency))
	}
	if !validNaming[c.Collect.Naming] {
		errs = append(errs, fmt.Sprintf("collect.naming: must be one of sortkey, title; got %q", c.Collect.Naming))
	}

	for _, t := range c.Filters.Times {
		if _, err := time.Parse(TimeLayout, t); err != nil {
			errs = append(errs, fmt.Sprintf("filters.times: %q is not a clock time like \"10:30 AM\"", t))
		}
	}

	if c.Download.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("download.concurrency: must be at least 1, got %d", c.Download.Concurrency))
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	return errs
}
