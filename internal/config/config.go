package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
	Store  StoreConfig  `yaml:"store" toml:"store"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
	// SerializeWrites makes each mutating request hold a process-wide lock
	// from load to save, and makes reads wait for it so they never see a
	// half-written file. Off by default: concurrent mutations race.
	SerializeWrites bool          `yaml:"serialize_writes" toml:"serialize_writes"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

type StoreConfig struct {
	Backend    string `yaml:"backend" toml:"backend"`
	Path       string `yaml:"path" toml:"path"`
	SQLitePath string `yaml:"sqlite_path" toml:"sqlite_path"`
	// AtomicWrites replaces the file via temp file + rename instead of
	// truncating it in place.
	AtomicWrites bool `yaml:"atomic_writes" toml:"atomic_writes"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Backend:    BackendFile,
			Path:       "tasks.json",
			SQLitePath: "tasks.db",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional file at path
// (YAML or TOML, chosen by extension) and environment overrides.
// An empty path falls back to TASKS_CONFIG.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TASKS_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse yaml config: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("parse toml config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q", ext)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = envStr("HOST", c.Server.Host)
	c.Server.Port = envInt("PORT", c.Server.Port)
	c.Server.SerializeWrites = envBool("TASKS_SERIALIZE_WRITES", c.Server.SerializeWrites)
	c.Store.Backend = envStr("TASKS_STORE", c.Store.Backend)
	c.Store.Path = envStr("TASKS_FILE", c.Store.Path)
	c.Store.SQLitePath = envStr("TASKS_DB_PATH", c.Store.SQLitePath)
	c.Store.AtomicWrites = envBool("TASKS_ATOMIC_WRITES", c.Store.AtomicWrites)
	c.Log.Level = envStr("LOG_LEVEL", c.Log.Level)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port (PORT) must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path (TASKS_FILE) must not be empty")
		}
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path (TASKS_DB_PATH) must not be empty")
		}
	default:
		return fmt.Errorf("store.backend (TASKS_STORE) must be %q or %q, got %q", BackendFile, BackendSQLite, c.Store.Backend)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level (LOG_LEVEL) must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}
