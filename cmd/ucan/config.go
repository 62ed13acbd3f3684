package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ipvm-wg/go-ucan-agent/kv"
	"github.com/ipvm-wg/go-ucan-agent/kv/memory"
	"github.com/ipvm-wg/go-ucan-agent/kv/sqlite"
	"github.com/ipvm-wg/go-ucan-agent/principal/resolver"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"gopkg.in/yaml.v3"
)

const configEnv = "UCAN_CONFIG"

type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Signer SignerConfig `yaml:"signer"`
	Log    LogConfig    `yaml:"log"`
}

type StoreConfig struct {
	// Driver is "memory" or "sqlite". Defaults to sqlite.
	Driver string `yaml:"driver"`
	// Path of the sqlite database. Defaults to ucan.db in the user config
	// directory.
	Path string `yaml:"path"`
}

type SignerConfig struct {
	// Algorithm of the agent signer. Defaults to EdDSA.
	Algorithm string `yaml:"algorithm"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error. Defaults to warn.
	Level string `yaml:"level"`
}

// LoadConfig loads a configuration from a YAML file. An empty path falls
// back to UCAN_CONFIG, and with neither set the defaults are used.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(configEnv)
	}

	var config Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply defaults
	if config.Store.Driver == "" {
		config.Store.Driver = "sqlite"
	}
	if config.Store.Driver == "sqlite" && config.Store.Path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("finding config directory: %w", err)
		}
		config.Store.Path = filepath.Join(dir, "ucan", "ucan.db")
	}
	if config.Signer.Algorithm == "" {
		config.Signer.Algorithm = signature.EdDSAName
	}
	if config.Log.Level == "" {
		config.Log.Level = "warn"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("store.driver: unknown driver %q (supported: memory, sqlite)", c.Store.Driver)
	}

	supported := false
	for _, alg := range resolver.Algorithms() {
		if alg == c.Signer.Algorithm {
			supported = true
		}
	}
	if !supported {
		return fmt.Errorf("signer.algorithm: unsupported algorithm %q", c.Signer.Algorithm)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Logger writes text logs to stderr at the configured level.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.Log.Level))
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// OpenStore opens the configured store. The caller must close it.
func (c *Config) OpenStore(ctx context.Context, logger *slog.Logger) (kv.KV, error) {
	switch c.Store.Driver {
	case "memory":
		return memory.New(), nil
	default:
		if err := os.MkdirAll(filepath.Dir(c.Store.Path), 0o700); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		return sqlite.Open(c.Store.Path, sqlite.WithLogger(logger))
	}
}
