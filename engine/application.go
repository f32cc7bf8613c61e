package engine

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/on3d/engine/core"
)

const (
	DefaultApplicationName = "on3d"
	DefaultFetchTimeout    = 30 * time.Second
)

// Duration is a time.Duration written as a string ("30s", "1m") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type LogConfig struct {
	// One of debug, info, warn, error, fatal.
	Level string `toml:"level"`
}

type PackConfig struct {
	// File path or http(s) URL of the archive attached on Initialize. Empty attaches nothing.
	Locator string `toml:"locator"`
	// Directory relative file locators are resolved against.
	BasePath string `toml:"base_path"`
	// Upper bound for one archive fetch.
	FetchTimeout Duration `toml:"fetch_timeout"`
}

type JobsConfig struct {
	// Worker goroutines used to preload scene meshes.
	Workers int `toml:"workers"`
}

type ApplicationConfig struct {
	// The application name used in log lines.
	Name string     `toml:"name"`
	Log  LogConfig  `toml:"log"`
	Pack PackConfig `toml:"pack"`
	Jobs JobsConfig `toml:"jobs"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name: DefaultApplicationName,
		Log: LogConfig{
			Level: "info",
		},
		Pack: PackConfig{
			BasePath:     ".",
			FetchTimeout: Duration{DefaultFetchTimeout},
		},
		Jobs: JobsConfig{
			Workers: runtime.NumCPU(),
		},
	}
}

// LoadApplicationConfig reads a TOML file on top of the defaults. Keys absent
// from the file keep their default value; unknown keys are rejected.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: config %s: %s", core.ErrValidation, path, strict.String())
		}
		return nil, fmt.Errorf("%w: config %s: %s", core.ErrFormat, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values a TOML file or flags may have broken.
func (c *ApplicationConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: application name is empty", core.ErrValidation)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log level %q", core.ErrValidation, c.Log.Level)
	}
	if c.Pack.FetchTimeout.Duration < 0 {
		return fmt.Errorf("%w: negative fetch timeout %s", core.ErrValidation, c.Pack.FetchTimeout)
	}
	if c.Jobs.Workers < 1 {
		return fmt.Errorf("%w: jobs.workers must be at least 1, got %d", core.ErrValidation, c.Jobs.Workers)
	}
	return nil
}

// Marshal renders the config back to TOML, used by `on3d config`.
func (c *ApplicationConfig) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
