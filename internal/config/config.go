package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mazurov/brow-cli/internal/bruno"
	"github.com/mazurov/brow-cli/internal/cache"
	"github.com/mazurov/brow-cli/internal/ide"
)

const (
	// EnvPrefix prefixes every environment variable override
	EnvPrefix = "BROW_CLI"
	// ConfigFileEnvVar points at an explicit config file
	ConfigFileEnvVar = "BROW_CLI_CONFIG_FILE"
	// DefaultConfigName is looked up in the working directory when no file is given
	DefaultConfigName = ".brow-cli"

	DefaultURL     = "https://staging.signavio.com/p/hub/tasks"
	DefaultTimeout = 300
)

// Config holds all configuration for the CLI
type Config struct {
	WorkDir string        `mapstructure:"workdir"`
	Verbose bool          `mapstructure:"verbose"`
	Login   LoginConfig   `mapstructure:"login"`
	Browser BrowserConfig `mapstructure:"browser"`
	Output  OutputConfig  `mapstructure:"output"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Bruno   BrunoConfig   `mapstructure:"bruno"`
	IDE     IDEConfig     `mapstructure:"ide"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LoginConfig controls the SSO page and how long to wait for it
type LoginConfig struct {
	URL          string        `mapstructure:"url"`
	Timeout      int           `mapstructure:"timeout"` // seconds
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Settle       time.Duration `mapstructure:"settle"`
}

// BrowserConfig selects and configures the browser
type BrowserConfig struct {
	Type        string `mapstructure:"type"` // light | full
	Bin         string `mapstructure:"bin"`
	UserDataDir string `mapstructure:"user_data_dir"`
	Headless    bool   `mapstructure:"headless"`
}

// OutputConfig controls how tokens are printed
type OutputConfig struct {
	Format string `mapstructure:"format"` // plain | json
	Mask   bool   `mapstructure:"mask"`
}

// CacheConfig holds credential cache configuration
type CacheConfig struct {
	Backend      string        `mapstructure:"backend"` // file | keyring
	Dir          string        `mapstructure:"dir"`
	TTL          time.Duration `mapstructure:"ttl"`
	ForceRefresh bool          `mapstructure:"force_refresh"`
}

// BrunoConfig controls environment file generation
type BrunoConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	FolderMatch string `mapstructure:"folder_match"`
	EnvFile     string `mapstructure:"env_file"`
	BaseURL     string `mapstructure:"base_url"` // defaults to the login URL origin
}

// IDEConfig controls the editor settings update
type IDEConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SettingsPath string `mapstructure:"settings_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // json | text
}

// NewViper creates a new viper instance with defaults and environment binding
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("workdir", "")
	v.SetDefault("verbose", false)
	v.SetDefault("login.url", DefaultURL)
	v.SetDefault("login.timeout", DefaultTimeout)
	v.SetDefault("login.poll_interval", 500*time.Millisecond)
	v.SetDefault("login.settle", 2*time.Second)
	v.SetDefault("browser.type", "light")
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.headless", false)
	v.SetDefault("output.format", "plain")
	v.SetDefault("output.mask", false)
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", cache.DefaultDir)
	v.SetDefault("cache.ttl", cache.DefaultTTL)
	v.SetDefault("cache.force_refresh", false)
	v.SetDefault("bruno.enabled", true)
	v.SetDefault("bruno.folder_match", bruno.DefaultFolderMatch)
	v.SetDefault("bruno.env_file", bruno.DefaultEnvFile)
	v.SetDefault("bruno.base_url", "")
	v.SetDefault("ide.enabled", true)
	v.SetDefault("ide.settings_path", ide.DefaultSettingsPath)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")

	// Bind environment variables with BROW_CLI_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// ReadConfigFile merges a YAML config file into v.
// An explicit path must exist; otherwise .brow-cli.yaml in workDir is optional.
func ReadConfigFile(v *viper.Viper, path, workDir string) error {
	if path == "" {
		path = os.Getenv(ConfigFileEnvVar)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	if workDir == "" {
		workDir = "."
	}
	v.SetConfigName(DefaultConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(workDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// LoadWithViper loads configuration using a pre-configured viper instance
// This allows CLI flags to be bound before loading
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	cfg.Browser.Type = strings.ToLower(cfg.Browser.Type)
	if cfg.Verbose {
		cfg.Logging.Level = "debug"
	}

	if cfg.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg.WorkDir = wd
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.Login.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("login.url must be an http(s) URL, got %q", c.Login.URL)
	}

	if c.Login.Timeout <= 0 {
		return fmt.Errorf("login.timeout must be a positive number of seconds")
	}

	if c.Login.PollInterval <= 0 {
		return fmt.Errorf("login.poll_interval must be positive")
	}

	if c.Browser.Type != "light" && c.Browser.Type != "full" {
		return fmt.Errorf("browser.type must be 'light' or 'full'")
	}

	if c.Output.Format != "plain" && c.Output.Format != "json" {
		return fmt.Errorf("output.format must be 'plain' or 'json'")
	}

	if c.Cache.Backend != "file" && c.Cache.Backend != "keyring" {
		return fmt.Errorf("cache.backend must be 'file' or 'keyring'")
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn, or error")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be json or text")
	}

	return nil
}

// Timeout returns the login wait timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Login.Timeout) * time.Second
}

// Origin returns the scheme://host part of the login URL
func (c *Config) Origin() string {
	origin, err := bruno.BaseURL(c.Login.URL)
	if err != nil {
		return c.Login.URL
	}
	return origin
}

// BrunoBaseURL returns the url var for Bruno files
func (c *Config) BrunoBaseURL() string {
	if c.Bruno.BaseURL != "" {
		return strings.TrimRight(c.Bruno.BaseURL, "/")
	}
	return c.Origin()
}

// ResolvePath anchors a relative path at the working directory
func (c *Config) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.WorkDir, path)
}
