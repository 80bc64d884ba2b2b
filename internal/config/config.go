// Package config loads the optional refurb.yaml settings file.
//
// Config file locations (priority order):
//  1. $REFURB_CONFIG
//  2. ./refurb.yaml
//  3. $XDG_CONFIG_HOME/refurb/config.yaml (~/.config/refurb/config.yaml)
//
// A missing file is not an error; every field has a default.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppName names the data, config and log directories
const AppName = "refurb"

// Config is the on-disk configuration
type Config struct {
	Database DatabaseConfig `yaml:"database" json:"database"`
	Log      LogConfig      `yaml:"log" json:"log"`
	UI       UIConfig       `yaml:"ui" json:"ui"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" json:"path"`
}

type LogConfig struct {
	Level     string `yaml:"level" json:"level"`
	File      string `yaml:"file" json:"file"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"maxSizeMb"`
	MaxFiles  int    `yaml:"max_files" json:"maxFiles"`
}

type UIConfig struct {
	// Month is the calendar month shown on start, YYYY-MM. Empty means the
	// current month.
	Month string `yaml:"month" json:"month"`
}

// Load finds and loads the config file, or returns defaults if none found.
// The returned path is empty when defaults were used.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes the config to path, creating its directory
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// FindConfigPath returns the first config file that exists, or ""
func FindConfigPath() string {
	if p := os.Getenv("REFURB_CONFIG"); p != "" {
		if fileExists(p) {
			return p
		}
		return ""
	}
	if fileExists(AppName + ".yaml") {
		return AppName + ".yaml"
	}
	if dir, err := configDir(); err == nil {
		p := filepath.Join(dir, AppName, "config.yaml")
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// DefaultPath is where `refurb config init` writes a new file:
// $XDG_CONFIG_HOME/refurb/config.yaml
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, AppName, "config.yaml"), nil
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(dataDir(), AppName+".db")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(dataDir(), AppName+".log")
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxFiles <= 0 {
		c.Log.MaxFiles = 3
	}
}

// dataDir uses the XDG data directory or falls back to ~/.local/share. When
// neither is known the working directory is used.
func dataDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, AppName)
}

func configDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
