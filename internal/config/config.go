// Package config loads the stepflow configuration file.
//
// Values are resolved in three layers: built-in defaults, the YAML file and
// STEPFLOW_* environment variables. A missing file is not an error.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/stepflow/internal/logging"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the file read when no --config flag is given.
const DefaultPath = "stepflow.yaml"

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Engine EngineConfig `yaml:"engine"`
	Store  StoreConfig  `yaml:"store"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type EngineConfig struct {
	// MaxSteps bounds node invocations per run. Zero means unbounded.
	MaxSteps     int  `yaml:"max_steps"`
	StrictGraphs bool `yaml:"strict_graphs"`
}

type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
	// Redact lists regular expressions; matching state keys are masked in stored runs.
	Redact []string `yaml:"redact"`
	// EncryptionKey is a base64 AES-256 key. When set, stored runs are encrypted.
	EncryptionKey string `yaml:"encryption_key"`
}

// Key decodes EncryptionKey. It returns nil when encryption is disabled.
func (s StoreConfig) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("store.encryption_key: want 32 bytes, got %d", len(key))
	}
	return key, nil
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info"},
		Store: StoreConfig{
			Backend: BackendMemory,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "stepflow:",
			},
		},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults only
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Engine.MaxSteps < 0 {
		return fmt.Errorf("engine.max_steps must not be negative: %d", c.Engine.MaxSteps)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("store.backend: unknown backend %q (want %s or %s)", c.Store.Backend, BackendMemory, BackendRedis)
	}
	if _, err := c.Store.Key(); err != nil {
		return err
	}
	if c.Store.Redis.TTL < 0 {
		return fmt.Errorf("store.redis.ttl must not be negative: %s", c.Store.Redis.TTL)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("STEPFLOW_LOG_LEVEL", &cfg.Log.Level)
	str("STEPFLOW_STORE", &cfg.Store.Backend)
	str("STEPFLOW_REDIS_ADDR", &cfg.Store.Redis.Addr)
	str("STEPFLOW_REDIS_PASSWORD", &cfg.Store.Redis.Password)
	str("STEPFLOW_REDIS_PREFIX", &cfg.Store.Redis.Prefix)
	str("STEPFLOW_ENCRYPTION_KEY", &cfg.Store.EncryptionKey)

	if err := num("STEPFLOW_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	if err := num("STEPFLOW_MAX_STEPS", &cfg.Engine.MaxSteps); err != nil {
		return err
	}
	if err := num("STEPFLOW_REDIS_DB", &cfg.Store.Redis.DB); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("STEPFLOW_REDIS_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STEPFLOW_REDIS_TTL: %w", err)
		}
		cfg.Store.Redis.TTL = ttl
	}
	return nil
}
