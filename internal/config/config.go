// Package config loads application configuration: compiled defaults,
// then an optional TOML file, then environment overrides, in that
// order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/bharathvbcr/liquitask/internal/storage"
)

// Config is the resolved application configuration.
type Config struct {
	// DataDir roots all persisted state: the sqlite database or the
	// file-per-key directory, depending on Backend.
	DataDir string `toml:"data_dir" env:"DATA_DIR"`

	// Backend selects the storage medium: "sqlite" or "files".
	Backend string `toml:"backend" env:"BACKEND"`

	// QuotaBytes caps the files backend. Ignored for sqlite.
	QuotaBytes int64 `toml:"quota_bytes" env:"QUOTA_BYTES"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`
}

const (
	BackendSQLite = "sqlite"
	BackendFiles  = "files"
)

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		DataDir:    defaultDataDir(),
		Backend:    BackendSQLite,
		QuotaBytes: storage.DefaultQuotaBytes,
		LogLevel:   "info",
	}
}

// Load resolves configuration from path (optional, "" skips the file)
// and LIQUITASK_-prefixed environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "LIQUITASK_"}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFiles:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendSQLite, BackendFiles)
	}
	if c.QuotaBytes <= 0 {
		return fmt.Errorf("quota_bytes must be positive, got %d", c.QuotaBytes)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// Strategy maps the configured backend onto a storage strategy.
func (c Config) Strategy() storage.Strategy {
	if c.Backend == BackendFiles {
		return storage.BrowserBacked
	}
	return storage.NativeBacked
}

// DatabasePath is the sqlite file under DataDir.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "liquitask.db")
}

// LocalDir is the file-per-key directory under DataDir.
func (c Config) LocalDir() string {
	return filepath.Join(c.DataDir, "local")
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "liquitask")
	}
	return ".liquitask"
}
