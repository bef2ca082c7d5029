// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Portal   PortalConfig   `toml:"portal"`
	Collect  CollectConfig  `toml:"collect"`
	Filters  FiltersConfig  `toml:"filters"`
	Download DownloadConfig `toml:"download"`
	Log      LogConfig      `toml:"log"`
}

// PortalConfig describes the lecture capture portal and the session used to reach it.
type PortalConfig struct {
	BaseURL       string        `toml:"base_url"`
	SessionCookie string        `toml:"session_cookie"` // raw Cookie header value copied from a logged-in browser
	Timeout       time.Duration `toml:"timeout"`
}

// CollectConfig tunes how recordings are resolved and where links.txt goes.
type CollectConfig struct {
	Concurrency int    `toml:"concurrency"` // 0 means every lookup runs at once
	Naming      string `toml:"naming"`      // "sortkey" or "title"
	OutputDir   string `toml:"output_dir"`
}

// FiltersConfig selects a subset of recordings. With every list empty, all
// recordings are kept.
type FiltersConfig struct {
	Titles   []string `toml:"titles"`
	Sections []string `toml:"sections"`
	Times    []string `toml:"times"` // "10:30 AM"
}

// DownloadConfig tunes the video downloader.
type DownloadConfig struct {
	Concurrency int    `toml:"concurrency"`
	Dir         string `toml:"dir"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Portal.BaseURL == "" {
		c.Portal.BaseURL = "https://leccap.engin.umich.edu"
	}
	c.Portal.BaseURL = strings.TrimRight(c.Portal.BaseURL, "/")
	if c.Portal.Timeout == 0 {
		c.Portal.Timeout = 30 * time.Second
	}
	if c.Collect.Naming == "" {
		c.Collect.Naming = "sortkey"
	}
	if c.Collect.OutputDir == "" {
		c.Collect.OutputDir = "."
	}
	if c.Download.Concurrency == 0 {
		c.Download.Concurrency = 4
	}
	if c.Download.Dir == "" {
		c.Download.Dir = c.Collect.OutputDir
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Load reads, parses and validates the configuration file.
// Unresolved environment variables and validation failures are reported
// together as an *Error.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &Error{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, applying
// defaults but skipping validation and the missing variable check. Callers
// that override settings afterwards check the result with Validate and
// Unresolved.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, missing, nil
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars replaces environment variable references and returns the
// names (or :? messages) of references that could not be resolved. Unresolved
// references are left in place.
func substituteEnvVars(content string) (string, []string) {
	var missing []string

	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		expr := match[2 : len(match)-1] // Strip ${ and }

		if name, def, ok := strings.Cut(expr, ":-"); ok {
			if value := os.Getenv(name); value != "" {
				return value
			}
			return def
		}

		if name, msg, ok := strings.Cut(expr, ":?"); ok {
			if value := os.Getenv(name); value != "" {
				return value
			}
			missing = append(missing, name+": "+msg)
			return match
		}

		if value, ok := os.LookupEnv(expr); ok {
			return value
		}
		missing = append(missing, expr)
		return match
	})

	return out, missing
}

// Reference is a setting that still holds an unresolved ${VAR} reference.
type Reference struct {
	Key   string // e.g. "portal.session_cookie"
	Value string // e.g. "${LECCAP_SESSION:?...}"
}

// Unresolved returns the settings whose ${VAR} references could not be
// resolved when the file was loaded, in file order.
func (c *Config) Unresolved() []Reference {
	fields := []Reference{
		{"portal.base_url", c.Portal.BaseURL},
		{"portal.session_cookie", c.Portal.SessionCookie},
		{"collect.naming", c.Collect.Naming},
		{"collect.output_dir", c.Collect.OutputDir},
	}
	for _, v := range c.Filters.Titles {
		fields = append(fields, Reference{"filters.titles", v})
	}
	for _, v := range c.Filters.Sections {
		fields = append(fields, Reference{"filters.sections", v})
	}
	for _, v := range c.Filters.Times {
		fields = append(fields, Reference{"filters.times", v})
	}
	fields = append(fields,
		Reference{"download.dir", c.Download.Dir},
		Reference{"log.level", c.Log.Level},
	)

	var refs []Reference
	for _, f := range fields {
		if ref := envVarPattern.FindString(f.Value); ref != "" {
			refs = append(refs, Reference{Key: f.Key, Value: ref})
		}
	}
	return refs
}

// IsNotFound reports whether err came from a config file that does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
