package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

// Config represents the application configuration
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	HTTP     HTTPConfig     `yaml:"http"`
	Daemon   DaemonConfig   `yaml:"daemon"`
	Ordering OrderingConfig `yaml:"ordering"`
	Log      LogConfig      `yaml:"log"`
	Theme    Theme          `yaml:"theme"`
}

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	DSN      string `yaml:"dsn"`
	InMemory bool   `yaml:"in_memory"`
}

// RedisConfig enables the listing cache when URL is set.
type RedisConfig struct {
	URL string        `yaml:"url"`
	TTL time.Duration `yaml:"ttl"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// DaemonConfig locates the event daemon socket.
type DaemonConfig struct {
	Socket  string `yaml:"socket"`
	Enabled *bool  `yaml:"enabled"`
	// MetricsAddr serves the daemon's Prometheus metrics when set
	MetricsAddr string `yaml:"metrics_addr"`
}

// IsEnabled reports whether change events should be published to the daemon.
func (d DaemonConfig) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

type OrderingConfig struct {
	RetryAttempts int   `yaml:"retry_attempts"`
	VersionChecks *bool `yaml:"version_checks"`
}

// VersionChecksEnabled reports whether optimistic version guards are on.
func (o OrderingConfig) VersionChecksEnabled() bool {
	return o.VersionChecks == nil || *o.VersionChecks
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the config file and applies environment overrides.
// A missing file yields the defaults.
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		cfg := &Config{}
		cfg.applyEnv()
		cfg.applyDefaults()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile reads the config at path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate rejects configurations no backend can open.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverBadger:
		if c.Store.Path == "" && !c.Store.InMemory {
			return fmt.Errorf("store.path is required for driver %q", c.Store.Driver)
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for driver \"postgres\"")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Ordering.RetryAttempts < 1 {
		return fmt.Errorf("ordering.retry_attempts must be at least 1, got %d", c.Ordering.RetryAttempts)
	}
	return nil
}

// Path returns the config file location. LEADBOARD_CONFIG wins over XDG.
func Path() (string, error) {
	if p := os.Getenv("LEADBOARD_CONFIG"); p != "" {
		return p, nil
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "leadboard", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "leadboard", "config.yaml"), nil
}

// DataDir returns ~/.leadboard, where the default database, socket and logs live.
func DataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".leadboard"
	}
	return filepath.Join(homeDir, ".leadboard")
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&c.Store.Driver, "LEADBOARD_STORE_DRIVER")
	setString(&c.Store.Path, "LEADBOARD_STORE_PATH")
	setString(&c.Store.DSN, "LEADBOARD_STORE_DSN")
	setString(&c.Redis.URL, "LEADBOARD_REDIS_URL")
	setString(&c.HTTP.Addr, "LEADBOARD_HTTP_ADDR")
	setString(&c.Daemon.Socket, "LEADBOARD_SOCKET")
	setString(&c.Daemon.MetricsAddr, "LEADBOARD_DAEMON_METRICS_ADDR")
	setString(&c.Log.Level, "LEADBOARD_LOG_LEVEL")

	if v := os.Getenv("LEADBOARD_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Ordering.RetryAttempts = n
		}
	}
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	dataDir := DataDir()

	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	c.Store.Driver = strings.ToLower(c.Store.Driver)
	if c.Store.Path == "" && !c.Store.InMemory {
		switch c.Store.Driver {
		case DriverSQLite:
			c.Store.Path = filepath.Join(dataDir, "leadboard.db")
		case DriverBadger:
			c.Store.Path = filepath.Join(dataDir, "badger")
		}
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 30 * time.Second
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8787"
	}
	if c.Daemon.Socket == "" {
		c.Daemon.Socket = filepath.Join(dataDir, "leadboard.sock")
	}
	if c.Ordering.RetryAttempts == 0 {
		c.Ordering.RetryAttempts = 3
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Theme.ApplyDefaults()
}
