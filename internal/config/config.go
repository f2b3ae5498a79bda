// Package config handles TOML-based configuration loading and validation.
// Configuration is merged in layers: built-in defaults, then the config
// file, then environment variables, then CLI flags (applied by cmd).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	ChromePath     string   `toml:"chrome_path"` // empty means let chromedp find a browser
	FFmpegPath     string   `toml:"ffmpeg_path"` // empty means look up "ffmpeg" in PATH
	TempDir        string   `toml:"temp_dir"`    // empty means os.TempDir()
	NavTimeout     Duration `toml:"nav_timeout"`
	SettleWindow   Duration `toml:"settle_window"` // network quiescence window
	FetchTimeout   Duration `toml:"fetch_timeout"` // per-manifest fetch
	RemuxTimeout   Duration `toml:"remux_timeout"` // overall ffmpeg deadline
	StaticFallback bool     `toml:"static_fallback"`
	History        bool     `toml:"history"`
	Debug          bool     `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           3000,
		NavTimeout:     Duration(45 * time.Second),
		SettleWindow:   Duration(2 * time.Second),
		FetchTimeout:   Duration(15 * time.Second),
		RemuxTimeout:   Duration(30 * time.Minute),
		StaticFallback: true,
		History:        true,
		Debug:          false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vidgrab"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vidgrab"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file, merges it over defaults, then applies
// environment overrides. A missing config file is not an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Port = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.NavTimeout <= 0 {
		return fmt.Errorf("nav_timeout must be positive")
	}
	if c.SettleWindow <= 0 {
		return fmt.Errorf("settle_window must be positive")
	}
	if c.SettleWindow.Std() >= c.NavTimeout.Std() {
		return fmt.Errorf("settle_window %s must be shorter than nav_timeout %s",
			c.SettleWindow, c.NavTimeout)
	}
	if c.RemuxTimeout <= 0 {
		return fmt.Errorf("remux_timeout must be positive")
	}
	return nil
}

// TempRoot returns the directory scratch space is created under.
func (c *Config) TempRoot() string {
	if c.TempDir != "" {
		return c.TempDir
	}
	return os.TempDir()
}

// HistoryPath returns the path to the download history file.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "vidgrab", "history.tsv"), nil
}
