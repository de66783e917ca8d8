// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the backend address used when nothing else is configured.
const DefaultAPIURL = "http://localhost:8000"

// Config holds all configuration values for forklift.
type Config struct {
	APIURL   string `mapstructure:"api_url" yaml:"api_url"`
	DataDir  string `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
	Timeout  int    `mapstructure:"timeout" yaml:"timeout"` // seconds per backend request
	PerPage  int    `mapstructure:"per_page" yaml:"per_page"`
	Journal  bool   `mapstructure:"journal" yaml:"journal"`
}

// RequestTimeout returns Timeout as a duration, falling back to 30s.
func (c *Config) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// Load loads configuration with full precedence:
// ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("forklift")

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("timeout", 30)
	v.SetDefault("per_page", 30)
	v.SetDefault("journal", true)

	v.SetEnvPrefix("FORKLIFT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit bindings so bool/int values parse from env
	for _, key := range []string{"api_url", "data_dir", "log_level", "log_file", "timeout", "per_page", "journal"} {
		if err := v.BindEnv(key, "FORKLIFT_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	return &cfg, nil
}

// Validate checks that the config can reach a backend.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api_url %q: scheme must be http or https", c.APIURL)
	}
	if c.PerPage < 0 {
		return fmt.Errorf("per_page must be >= 0")
	}
	return nil
}

// Default returns the configuration written by `forklift setup`.
func Default() *Config {
	return &Config{
		APIURL:   DefaultAPIURL,
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
		Timeout:  30,
		PerPage:  30,
		Journal:  true,
	}
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/forklift/forklift.yml or $XDG_CONFIG_HOME/forklift/forklift.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "forklift", "forklift.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "forklift", "forklift.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "forklift.yml"
}

// DefaultDataDir returns the directory holding local state and the job journal.
// Returns $XDG_DATA_HOME/forklift or ~/.local/share/forklift.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "forklift")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "forklift")
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
