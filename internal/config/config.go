// Package config handles kzk configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Environment variables (KZK_*)
//  2. Config file (<user config dir>/kzk/config.yaml)
//  3. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kaizoku-dev/kzk/internal/paths"
)

const (
	// DefaultAPIURL is the default Kaizoku server address.
	DefaultAPIURL = "http://localhost:3000"
	// DefaultPollInterval is the activity and history poll interval in seconds.
	DefaultPollInterval = 5
	// DefaultLibraryInterval is the library readiness poll interval in seconds.
	DefaultLibraryInterval = 30
	// DefaultSidebarWidth is the dashboard width in terminal cells.
	DefaultSidebarWidth = 36
)

// Config holds the kzk configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources.
func Load() *Config {
	v := viper.New()

	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("dashboard.poll_interval", DefaultPollInterval)
	v.SetDefault("dashboard.library_interval", DefaultLibraryInterval)
	v.SetDefault("dashboard.width", DefaultSidebarWidth)

	if configDir, err := paths.ConfigRoot(); err == nil {
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("KZK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found, but warn on other errors)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}

	return &Config{v: v}
}

// Get returns a configuration value.
func (c *Config) Get(key string) any {
	return c.v.Get(key)
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt returns a configuration value as int.
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// Set sets a configuration value and persists it.
func (c *Config) Set(key string, value any) error {
	c.v.Set(key, value)

	configFile, err := paths.ConfigFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
		return err
	}

	return c.v.WriteConfigAs(configFile)
}

// All returns all configuration as a map.
func (c *Config) All() map[string]any {
	return c.v.AllSettings()
}

// Keys returns every known key, defaults included.
func (c *Config) Keys() []string {
	return c.v.AllKeys()
}

// APIURL returns the configured Kaizoku server URL without a trailing slash.
func (c *Config) APIURL() string {
	return strings.TrimRight(c.GetString("api.url"), "/")
}

// PollInterval returns the activity/history poll interval.
func (c *Config) PollInterval() time.Duration {
	return secondsOrDefault(c.GetInt("dashboard.poll_interval"), DefaultPollInterval)
}

// LibraryInterval returns the readiness gate poll interval.
func (c *Config) LibraryInterval() time.Duration {
	return secondsOrDefault(c.GetInt("dashboard.library_interval"), DefaultLibraryInterval)
}

// SidebarWidth returns the dashboard width in cells.
func (c *Config) SidebarWidth() int {
	if w := c.GetInt("dashboard.width"); w > 0 {
		return w
	}

	return DefaultSidebarWidth
}

func secondsOrDefault(seconds, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}

	return time.Duration(seconds) * time.Second
}
