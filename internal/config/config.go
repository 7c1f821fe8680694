package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the service configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Store    StoreConfig   `yaml:"store"`
	HTTP     HTTPConfig    `yaml:"http"`
	Notify   NotifyConfig  `yaml:"notify"`
	Sockets  SocketsConfig `yaml:"sockets"`
}

type StoreConfig struct {
	Backend  string         `yaml:"backend"`
	Dir      string         `yaml:"dir"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	// EncryptionKey is a hex-encoded 32 byte AES key. Empty disables encryption.
	EncryptionKey string `yaml:"encryption_key"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type NotifyConfig struct {
	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig enables pushing change events to a broker when URL is set.
type MQTTConfig struct {
	URL      string `yaml:"url"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

type SocketsConfig struct {
	RecomputeDelay time.Duration `yaml:"recompute_delay"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Store: StoreConfig{
			Backend: BackendMemory,
			Dir:     "./quizzes",
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "quizgraph:"},
		},
		HTTP:    HTTPConfig{Port: 8080},
		Notify:  NotifyConfig{MQTT: MQTTConfig{Topic: "quizgraph/changes", ClientID: "quizgraph"}},
		Sockets: SocketsConfig{RecomputeDelay: 50 * time.Millisecond},
	}
}

// Load reads a YAML file over the defaults, then applies QUIZGRAPH_*
// environment overrides. An empty path or a missing file means defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"QUIZGRAPH_LOG_LEVEL":          &c.LogLevel,
		"QUIZGRAPH_STORE_BACKEND":      &c.Store.Backend,
		"QUIZGRAPH_STORE_DIR":          &c.Store.Dir,
		"QUIZGRAPH_REDIS_ADDR":         &c.Store.Redis.Addr,
		"QUIZGRAPH_REDIS_PASSWORD":     &c.Store.Redis.Password,
		"QUIZGRAPH_REDIS_PREFIX":       &c.Store.Redis.Prefix,
		"QUIZGRAPH_POSTGRES_DSN":       &c.Store.Postgres.DSN,
		"QUIZGRAPH_ENCRYPTION_KEY":     &c.Store.EncryptionKey,
		"QUIZGRAPH_MQTT_URL":           &c.Notify.MQTT.URL,
		"QUIZGRAPH_MQTT_TOPIC":         &c.Notify.MQTT.Topic,
		"QUIZGRAPH_MQTT_CLIENT_ID":     &c.Notify.MQTT.ClientID,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"QUIZGRAPH_HTTP_PORT": &c.HTTP.Port,
		"QUIZGRAPH_REDIS_DB":  &c.Store.Redis.DB,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"QUIZGRAPH_REDIS_TTL":       &c.Store.Redis.TTL,
		"QUIZGRAPH_RECOMPUTE_DELAY": &c.Sockets.RecomputeDelay,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendPostgres && c.Store.Postgres.DSN == "" {
		return errors.New("store.postgres.dsn is required for the postgres backend")
	}
	if c.Store.EncryptionKey != "" {
		if _, err := c.Key(); err != nil {
			return err
		}
	}
	if c.Sockets.RecomputeDelay < 0 {
		return errors.New("sockets.recompute_delay must not be negative")
	}
	return nil
}

// Key decodes the encryption key. It returns nil when encryption is off.
func (c *Config) Key() ([]byte, error) {
	if c.Store.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.Store.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("store.encryption_key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
