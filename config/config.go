// Package config holds service configuration: the HTTP listen address and
// the service root under which all persisted state lives.
//
// Precedence, lowest to highest: built-in defaults, the optional
// i18ndesk.yaml file, environment variables (I18NDESK_*), command-line
// flags applied by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name, looked up in the service root.
const FileName = "i18ndesk.yaml"

// Config is the service configuration.
type Config struct {
	// Host to bind the HTTP API to. Empty means all interfaces.
	Host string `yaml:"host" env:"I18NDESK_HOST"`
	// Port for the HTTP API.
	Port int `yaml:"port" env:"I18NDESK_PORT"`
	// Root is the service root directory. The registry, upload storage,
	// backups and review ledgers live beneath it.
	Root string `yaml:"root" env:"I18NDESK_ROOT"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{Port: 3333, Root: "."}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment overrides. path may be empty, in which case i18ndesk.yaml is
// looked up in the current directory; a missing file is not an error, a
// malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = FileName
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DataDir is where the project registry lives.
func (c *Config) DataDir() string {
	return filepath.Join(c.Root, "data")
}

// UploadsDir is the storage root for upload-type projects.
func (c *Config) UploadsDir() string {
	return filepath.Join(c.Root, "uploads")
}

// BackupsDir is the root for pre-write locale file snapshots.
func (c *Config) BackupsDir() string {
	return filepath.Join(c.Root, "backups")
}

// ReviewDir is the root for per-project review ledgers.
func (c *Config) ReviewDir() string {
	return filepath.Join(c.Root, "review-data")
}
