package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config     *Config
	configFile string
	envFiles   []string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config:   NewConfig(),
		envFiles: []string{".env"},
	}
}

// WithConfigFile sets an explicit YAML/TOML/JSON config file.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// WithEnvFiles replaces the dotenv files read before the environment.
func (l *Loader) WithEnvFiles(paths ...string) *Loader {
	l.envFiles = paths
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the config file, if any
// 3. Load dotenv files into the environment (existing variables win)
// 4. Override with TD_* environment variables
// 5. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadConfigFile(); err != nil {
		return nil, err
	}
	if err := l.loadEnvFiles(); err != nil {
		return nil, err
	}
	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}
	if err := l.config.Validate(); err != nil {
		return nil, err
	}
	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	if overrides != nil && overrides.ConfigFile != nil {
		l.configFile = *overrides.ConfigFile
	}

	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (l *Loader) resolveConfigFile() string {
	if l.configFile != "" {
		return l.configFile
	}
	if path := os.Getenv("TD_CONFIG"); path != "" {
		return path
	}
	candidate := filepath.Join(l.config.Database.Dir, "config.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func (l *Loader) loadConfigFile() error {
	path := l.resolveConfigFile()
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return &ConfigError{Field: "config_file", Message: err.Error()}
	}
	if err := v.Unmarshal(l.config); err != nil {
		return &ConfigError{Field: "config_file", Message: err.Error()}
	}
	return nil
}

func (l *Loader) loadEnvFiles() error {
	for _, path := range l.envFiles {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return &ConfigError{Field: "env_file", Message: err.Error()}
		}
	}
	return nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	ConfigFile *string

	// Database overrides
	DBDir      *string
	DBFilename *string

	// Remote overrides
	RemoteDriver *string
	RemoteDSN    *string

	SyncInterval *time.Duration
	ServerAddr   *string

	// Application overrides
	Timeout *time.Duration
	Verbose *bool
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	if overrides.DBDir != nil {
		config.Database.Dir = *overrides.DBDir
	}
	if overrides.DBFilename != nil {
		config.Database.Filename = *overrides.DBFilename
	}
	if overrides.RemoteDriver != nil {
		config.Remote.Driver = *overrides.RemoteDriver
	}
	if overrides.RemoteDSN != nil {
		config.Remote.DSN = *overrides.RemoteDSN
	}
	if overrides.SyncInterval != nil {
		config.Sync.Interval = *overrides.SyncInterval
	}
	if overrides.ServerAddr != nil {
		config.Server.Addr = *overrides.ServerAddr
	}
	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
}
