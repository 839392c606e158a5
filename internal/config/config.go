// Package config loads the walkoutd service configuration from a YAML
// or JSON file and applies environment overrides for secrets.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full walkoutd service configuration.
type Config struct {
	Listen string      `yaml:"listen" json:"listen"`
	Log    LogConfig   `yaml:"log" json:"log"`
	Store  StoreConfig `yaml:"store" json:"store"`

	// FieldsDir is the loam repository holding the option-set
	// definitions. Empty means the built-in defaults.
	FieldsDir string `yaml:"fieldsDir" json:"fieldsDir"`

	RuleEngineURL   string `yaml:"ruleEngineUrl" json:"ruleEngineUrl"`
	NoteAnalyzerURL string `yaml:"noteAnalyzerUrl" json:"noteAnalyzerUrl"`
}

// LogConfig selects the logger output format and verbosity.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// StoreConfig selects and parameterizes the persistence backend.
type StoreConfig struct {
	// Backend is one of "memory", "redis", "sqlite".
	Backend string `yaml:"backend" json:"backend"`

	Redis  RedisConfig  `yaml:"redis" json:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite" json:"sqlite"`

	// MaskPII enables the masking middleware on the write path.
	MaskPII bool `yaml:"maskPii" json:"maskPii"`

	// EncryptionKey and FallbackKeys are base64-encoded 32-byte AES
	// keys. Empty EncryptionKey disables envelope encryption. The env
	// variable WALKOUT_ENCRYPTION_KEY overrides the file value so the
	// key can stay out of the config file.
	EncryptionKey string   `yaml:"encryptionKey" json:"encryptionKey"`
	FallbackKeys  []string `yaml:"fallbackKeys" json:"fallbackKeys"`
}

// RedisConfig holds the redis backend settings. TTL is a Go duration
// string such as "720h"; empty means records never expire.
type RedisConfig struct {
	Address  string `yaml:"address" json:"address"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	TTL      string `yaml:"ttl" json:"ttl"`
}

// ParsedTTL returns the record expiry, zero when unset.
func (r RedisConfig) ParsedTTL() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, fmt.Errorf("parse redis ttl: %w", err)
	}
	return d, nil
}

// SQLiteConfig holds the sqlite backend settings.
type SQLiteConfig struct {
	Path string `yaml:"path" json:"path"`
}

// Default returns the configuration used when no file is given:
// in-memory store, text logs, everything local.
func Default() Config {
	return Config{
		Listen: ":8080",
		Log:    LogConfig{Level: "info", Format: "text"},
		Store: StoreConfig{
			Backend: "memory",
			SQLite:  SQLiteConfig{Path: "walkout.db"},
		},
	}
}

// Load reads the configuration file at path, falling back to defaults
// for anything unset. A missing file is not an error when path is
// empty; an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		applyEnv(&cfg)
		return cfg, cfg.validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, cfg.validate()
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WALKOUT_ENCRYPTION_KEY"); v != "" {
		cfg.Store.EncryptionKey = v
	}
	if v := os.Getenv("WALKOUT_REDIS_PASSWORD"); v != "" {
		cfg.Store.Redis.Password = v
	}
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "redis" {
		if c.Store.Redis.Address == "" {
			return fmt.Errorf("store backend redis requires an address")
		}
		if _, err := c.Store.Redis.ParsedTTL(); err != nil {
			return err
		}
	}
	if c.Store.EncryptionKey != "" {
		if _, err := c.DecodedEncryptionKey(); err != nil {
			return err
		}
	}
	return nil
}

// DecodedEncryptionKey returns the active AES key bytes.
func (c Config) DecodedEncryptionKey() ([]byte, error) {
	return decodeKey(c.Store.EncryptionKey)
}

// DecodedFallbackKeys returns the previous AES keys for rotation.
func (c Config) DecodedFallbackKeys() ([][]byte, error) {
	keys := make([][]byte, 0, len(c.Store.FallbackKeys))
	for _, k := range c.Store.FallbackKeys {
		decoded, err := decodeKey(k)
		if err != nil {
			return nil, err
		}
		keys = append(keys, decoded)
	}
	return keys, nil
}

func decodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
