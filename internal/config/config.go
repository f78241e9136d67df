package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration options for taskdeck
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Legacy      LegacyConfig      `mapstructure:"legacy"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Remote      RemoteConfig      `mapstructure:"remote"`
	Sync        SyncConfig        `mapstructure:"sync"`
	Server      ServerConfig      `mapstructure:"server"`
	Validation  ValidationConfig  `mapstructure:"validation"`
	Application ApplicationConfig `mapstructure:"application"`
}

// DatabaseConfig holds the local key-value database configuration
type DatabaseConfig struct {
	Dir            string        `mapstructure:"dir" env:"TD_DB_DIR"`
	Filename       string        `mapstructure:"filename" env:"TD_DB_FILENAME"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" env:"TD_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" env:"TD_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `mapstructure:"dir_permissions" env:"TD_DB_DIR_PERMISSIONS"`
}

// LegacyConfig locates the pre-migration flat storage file
type LegacyConfig struct {
	Path string `mapstructure:"path" env:"TD_LEGACY_PATH"`
}

// StorageConfig holds the persisted state layout
type StorageConfig struct {
	Key string `mapstructure:"key" env:"TD_STORAGE_KEY"`
}

// RemoteConfig holds the remote store connection
type RemoteConfig struct {
	Driver  string        `mapstructure:"driver" env:"TD_REMOTE_DRIVER"`
	DSN     string        `mapstructure:"dsn" env:"TD_REMOTE_DSN"`
	Timeout time.Duration `mapstructure:"timeout" env:"TD_REMOTE_TIMEOUT"`
	Verbose bool          `mapstructure:"verbose" env:"TD_REMOTE_VERBOSE"`
	// JWTSecret verifies HS256 access tokens on login. Empty accepts tokens
	// without verifying their signature.
	JWTSecret string `mapstructure:"jwt_secret" env:"TD_JWT_SECRET"`
}

// Enabled reports whether a remote store is configured
func (r RemoteConfig) Enabled() bool {
	return r.DSN != ""
}

// SyncConfig holds the periodic sync loop settings
type SyncConfig struct {
	Interval time.Duration `mapstructure:"interval" env:"TD_SYNC_INTERVAL"`
}

// ServerConfig holds the local JSON API settings
type ServerConfig struct {
	Addr string `mapstructure:"addr" env:"TD_SERVER_ADDR"`
	Mode string `mapstructure:"mode" env:"TD_SERVER_MODE"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TitleMaxLength int `mapstructure:"title_max_length" env:"TD_VALIDATION_TITLE_MAX"`
	NameMaxLength  int `mapstructure:"name_max_length" env:"TD_VALIDATION_NAME_MAX"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `mapstructure:"timeout" env:"TD_APP_TIMEOUT"`
	Verbose bool          `mapstructure:"verbose" env:"TD_APP_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDir := filepath.Join(homeDir, ".taskdeck")

	return &Config{
		Database: DatabaseConfig{
			Dir:            defaultDir,
			Filename:       "taskdeck.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Legacy: LegacyConfig{
			Path: filepath.Join(defaultDir, "storage.yaml"),
		},
		Storage: StorageConfig{
			Key: "task-storage",
		},
		Remote: RemoteConfig{
			Driver:  "postgres",
			Timeout: 15 * time.Second,
		},
		Sync: SyncConfig{
			Interval: 5 * time.Minute,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
			Mode: "release",
		},
		Validation: ValidationConfig{
			TitleMaxLength: 255,
			NameMaxLength:  100,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// LoadFromEnvironment loads configuration from TD_* environment variables
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if dir := os.Getenv("TD_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TD_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	c.Database.QueryTimeout = ParseDurationWithFallback(os.Getenv("TD_DB_QUERY_TIMEOUT"), c.Database.QueryTimeout)
	c.Database.WriteTimeout = ParseDurationWithFallback(os.Getenv("TD_DB_WRITE_TIMEOUT"), c.Database.WriteTimeout)
	c.Database.DirPermissions = ParseUint32WithFallback(os.Getenv("TD_DB_DIR_PERMISSIONS"), 8, c.Database.DirPermissions)

	if path := os.Getenv("TD_LEGACY_PATH"); path != "" {
		c.Legacy.Path = path
	}
	if key := os.Getenv("TD_STORAGE_KEY"); key != "" {
		c.Storage.Key = key
	}

	// Remote configuration
	if driver := os.Getenv("TD_REMOTE_DRIVER"); driver != "" {
		c.Remote.Driver = driver
	}
	if dsn := os.Getenv("TD_REMOTE_DSN"); dsn != "" {
		c.Remote.DSN = dsn
	}
	c.Remote.Timeout = ParseDurationWithFallback(os.Getenv("TD_REMOTE_TIMEOUT"), c.Remote.Timeout)
	c.Remote.Verbose = ParseBoolWithFallback(os.Getenv("TD_REMOTE_VERBOSE"), c.Remote.Verbose)
	if secret := os.Getenv("TD_JWT_SECRET"); secret != "" {
		c.Remote.JWTSecret = secret
	}

	c.Sync.Interval = ParseDurationWithFallback(os.Getenv("TD_SYNC_INTERVAL"), c.Sync.Interval)

	if addr := os.Getenv("TD_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if mode := os.Getenv("TD_SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}

	c.Validation.TitleMaxLength = ParseIntWithFallback(os.Getenv("TD_VALIDATION_TITLE_MAX"), c.Validation.TitleMaxLength)
	c.Validation.NameMaxLength = ParseIntWithFallback(os.Getenv("TD_VALIDATION_NAME_MAX"), c.Validation.NameMaxLength)

	c.Application.Timeout = ParseDurationWithFallback(os.Getenv("TD_APP_TIMEOUT"), c.Application.Timeout)
	c.Application.Verbose = ParseBoolWithFallback(os.Getenv("TD_APP_VERBOSE"), c.Application.Verbose)

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if c.Database.Dir == "" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}
	if c.Storage.Key == "" {
		return &ConfigError{Field: "storage.key", Message: "storage key cannot be empty"}
	}

	switch c.Remote.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return &ConfigError{Field: "remote.driver", Message: "driver must be postgres, mysql or sqlite"}
	}
	if c.Remote.Timeout <= 0 {
		return &ConfigError{Field: "remote.timeout", Message: "remote timeout must be positive"}
	}
	if c.Sync.Interval < time.Second {
		return &ConfigError{Field: "sync.interval", Message: "sync interval must be at least 1s"}
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return &ConfigError{Field: "server.mode", Message: "mode must be debug, release or test"}
	}

	if c.Validation.TitleMaxLength < 1 {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be at least 1"}
	}
	if c.Validation.NameMaxLength < 1 {
		return &ConfigError{Field: "validation.name_max_length", Message: "name maximum length must be at least 1"}
	}
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
