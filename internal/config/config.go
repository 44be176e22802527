// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultFileName is the settings file looked up when no path is given.
const DefaultFileName = "appsettings.json"

// Config holds all configuration parameters for the application.
type Config struct {
	Jira   JiraConfig
	Events EventsConfig
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL      string
	Username string
	Token    string

	// RateLimit caps requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
	Timeout   time.Duration
}

// EventsConfig sizes the client event channel.
type EventsConfig struct {
	Buffer int
}

// BaseURL returns the instance URL without trailing slashes.
func (c JiraConfig) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.URL), "/")
}

// LoadConfig loads configuration from the default settings file locations
// and environment variables.
func LoadConfig() (*Config, error) {
	return Load("")
}

// Load reads the settings file at path (or searches the default locations
// when path is empty) and applies environment overrides. A missing settings
// file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("jira.ratelimit", 10)
	v.SetDefault("jira.rateburst", 5)
	v.SetDefault("jira.timeout", "30s")
	v.SetDefault("events.buffer", 64)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, filepath.Ext(DefaultFileName)))
		v.SetConfigType("json")
		v.AddConfigPath(".")
		if dir, err := DefaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	// Map specific environment variables
	v.BindEnv("jira.instanceurl", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.apitoken", "JIRA_TOKEN")

	config := &Config{
		Jira: JiraConfig{
			URL:       v.GetString("jira.instanceurl"),
			Username:  v.GetString("jira.username"),
			Token:     v.GetString("jira.apitoken"),
			RateLimit: v.GetFloat64("jira.ratelimit"),
			RateBurst: v.GetInt("jira.rateburst"),
			Timeout:   v.GetDuration("jira.timeout"),
		},
		Events: EventsConfig{
			Buffer: v.GetInt("events.buffer"),
		},
	}

	return config, nil
}

// DefaultDir is the per-user settings directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".jiradesk"), nil
}

// Save writes cfg to path in the settings file layout.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	v := viper.New()
	v.Set("Jira.InstanceUrl", cfg.Jira.URL)
	v.Set("Jira.Username", cfg.Jira.Username)
	v.Set("Jira.ApiToken", cfg.Jira.Token)
	v.Set("Jira.RateLimit", cfg.Jira.RateLimit)
	v.Set("Jira.RateBurst", cfg.Jira.RateBurst)
	v.Set("Jira.Timeout", cfg.Jira.Timeout.String())
	v.Set("Events.Buffer", cfg.Events.Buffer)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
