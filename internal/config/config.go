// Package config provides configuration loading for subsort.
// It supports a layered configuration approach with priority:
// CLI flags > environment variables (SUBSORT_*) > config file (~/.subsort.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/subsort/subsort/internal/scanner"
)

// Config holds all scan-wide options. It is immutable once validated;
// components receive values, never the loader.
type Config struct {
	Concurrency       int           `mapstructure:"concurrency" yaml:"concurrency"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Retries           int           `mapstructure:"retries" yaml:"retries"`
	Delay             time.Duration `mapstructure:"delay" yaml:"delay"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	FollowRedirects   bool          `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	SkipTLSVerify     bool          `mapstructure:"skip_tls_verify" yaml:"skip_tls_verify"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	OutputFormat      string        `mapstructure:"output_format" yaml:"output_format"`
	Modules           []string      `mapstructure:"modules" yaml:"modules"`
}

// Defaults returns a Config populated with default values.
func Defaults() Config {
	return Config{
		Concurrency:     50,
		Timeout:         5 * time.Second,
		Retries:         3,
		FollowRedirects: true,
		OutputFormat:    "txt",
		Modules:         []string{"status"},
	}
}

// Load reads configuration from ~/.subsort.yaml and environment
// variables. It does NOT apply CLI flag overrides — call ApplyFlags for
// that.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(".subsort")
	v.SetConfigType("yaml")

	home, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix("SUBSORT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// ApplyFlags overrides config values with any CLI flags that were
// explicitly set.
func ApplyFlags(cfg *Config, cmd *cobra.Command) {
	flags := cmd.Flags()

	if flags.Changed("threads") {
		val, _ := flags.GetInt("threads")
		cfg.Concurrency = val
	}
	if flags.Changed("timeout") {
		val, _ := flags.GetDuration("timeout")
		cfg.Timeout = val
	}
	if flags.Changed("retries") {
		val, _ := flags.GetInt("retries")
		cfg.Retries = val
	}
	if flags.Changed("delay") {
		val, _ := flags.GetDuration("delay")
		cfg.Delay = val
	}
	if flags.Changed("user-agent") {
		val, _ := flags.GetString("user-agent")
		cfg.UserAgent = val
	}
	if flags.Changed("follow-redirects") {
		val, _ := flags.GetBool("follow-redirects")
		cfg.FollowRedirects = val
	}
	if flags.Changed("ignore-ssl") {
		val, _ := flags.GetBool("ignore-ssl")
		cfg.SkipTLSVerify = val
	}
	if flags.Changed("rate") {
		val, _ := flags.GetFloat64("rate")
		cfg.RequestsPerSecond = val
	}
	if flags.Changed("output-format") {
		val, _ := flags.GetString("output-format")
		cfg.OutputFormat = val
	}
}

// Validate enforces the configuration invariants before any scanning
// starts. A concurrency above the ceiling is clamped silently; every
// other violation is fatal.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Concurrency > scanner.MaxConcurrency {
		c.Concurrency = scanner.MaxConcurrency
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must be non-negative, got %d", c.Retries)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must be non-negative, got %s", c.Delay)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must be non-negative, got %f", c.RequestsPerSecond)
	}
	return nil
}

// ConfigFilePath returns the default config file path (~/.subsort.yaml).
func ConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".subsort.yaml"
	}
	return filepath.Join(home, ".subsort.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("concurrency", 50)
	v.SetDefault("timeout", 5*time.Second)
	v.SetDefault("retries", 3)
	v.SetDefault("follow_redirects", true)
	v.SetDefault("output_format", "txt")
}
