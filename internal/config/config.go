// Package config loads and stores the bay command configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bayfiles/bay_sdk_go/pkg/bay"
)

// Environment overrides.
const (
	EnvAPIURL   = "BAY_API_URL"
	EnvUsername = "BAY_USERNAME"
	EnvPassword = "BAY_PASSWORD"
	EnvSession  = "BAY_SESSION"
	EnvLogLevel = "BAY_LOG_LEVEL"
)

// LogConfig selects the command logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the on-disk command configuration.
type Config struct {
	APIURL   string    `yaml:"api_url"`
	Username string    `yaml:"username,omitempty"`
	Session  string    `yaml:"session,omitempty"`
	Log      LogConfig `yaml:"log"`

	// Password is only ever taken from the environment or a prompt.
	Password string `yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		APIURL: bay.DefaultBaseURL,
		Log:    LogConfig{Level: "warn", Format: "console"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/bay/config.yaml or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bay", "config.yaml"), nil
}

// Load reads path, falling back to defaults for a missing file and for
// empty fields.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.merge(&fileCfg)
	return cfg, nil
}

// Save writes cfg to path, creating the directory. The file holds a session
// token and is private to the user.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables already set. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields with the BAY_* variables that are set and
// non-empty.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.APIURL, EnvAPIURL)
	set(&c.Username, EnvUsername)
	set(&c.Password, EnvPassword)
	set(&c.Session, EnvSession)
	set(&c.Log.Level, EnvLogLevel)
}

func (c *Config) merge(o *Config) {
	if o.APIURL != "" {
		c.APIURL = o.APIURL
	}
	if o.Username != "" {
		c.Username = o.Username
	}
	if o.Session != "" {
		c.Session = o.Session
	}
	if o.Log.Level != "" {
		c.Log.Level = o.Log.Level
	}
	if o.Log.Format != "" {
		c.Log.Format = o.Log.Format
	}
}
