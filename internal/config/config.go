// Package config loads and persists the CLI configuration and builds the
// shared logger.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	ServerURL         string   `mapstructure:"server_url" yaml:"server_url"`
	DefaultFormat     string   `mapstructure:"default_format" yaml:"default_format"`
	AllowedExtensions []string `mapstructure:"allowed_extensions" yaml:"allowed_extensions"`
	ExportDir         string   `mapstructure:"export_dir" yaml:"export_dir"`

	// GitHub OAuth app used to connect repositories
	GitHubClientID    string `mapstructure:"github_client_id" yaml:"github_client_id"`
	GitHubRedirectURL string `mapstructure:"github_redirect_url" yaml:"github_redirect_url"`

	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	LogFile         string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel        string `mapstructure:"log_level" yaml:"log_level"`
}

// Dir returns the configuration directory, ~/.docforge by default.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".docforge"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.docforge/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}

	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCFORGE")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server_url", "http://localhost:8000")
	v.SetDefault("default_format", "markdown")
	v.SetDefault("allowed_extensions", []string{})
	v.SetDefault("poll_interval_sec", 2)
	v.SetDefault("log_level", "info")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.ExportDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working dir: %w", err)
		}
		c.ExportDir = filepath.Join(cwd, "docs")
	}
	if c.LogFile == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.LogFile = filepath.Join(dir, "docforge.log")
	}
	return &c, nil
}
