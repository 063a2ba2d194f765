package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// BackendExec shells out to the git binary.
	BackendExec = "exec"
	// BackendNative reads the repository with go-git.
	BackendNative = "native"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

type Config struct {
	Backend         string        `mapstructure:"backend"`
	GitBinary       string        `mapstructure:"git_binary"`
	RepoDir         string        `mapstructure:"repo_dir"`
	DescribeTimeout time.Duration `mapstructure:"describe_timeout"`
	LockTimeout     time.Duration `mapstructure:"lock_timeout"`
	LogLevel        string        `mapstructure:"log_level"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Backend:     BackendExec,
		GitBinary:   "git",
		RepoDir:     ".",
		LockTimeout: 30 * time.Second,
		LogLevel:    "warn",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendExec, BackendNative:
	default:
		return fmt.Errorf("invalid backend %q: expected %s or %s", c.Backend, BackendExec, BackendNative)
	}
	if strings.TrimSpace(c.GitBinary) == "" {
		return errors.New("git_binary cannot be empty")
	}
	if strings.TrimSpace(c.RepoDir) == "" {
		return errors.New("repo_dir cannot be empty")
	}
	if c.DescribeTimeout < 0 {
		return errors.New("describe_timeout cannot be negative")
	}
	if c.LockTimeout < 0 {
		return errors.New("lock_timeout cannot be negative")
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", c.LogLevel)
	}
	return nil
}

// LoadConfig reads .git-version-header.yaml from the working directory (or
// configFile when set) and GIT_VERSION_HEADER_* environment variables.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".git-version-header")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	// Configure environment variables
	v.SetEnvPrefix("GIT_VERSION_HEADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("backend", defaults.Backend)
	v.SetDefault("git_binary", defaults.GitBinary)
	v.SetDefault("repo_dir", defaults.RepoDir)
	v.SetDefault("describe_timeout", defaults.DescribeTimeout)
	v.SetDefault("lock_timeout", defaults.LockTimeout)
	v.SetDefault("log_level", defaults.LogLevel)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}
