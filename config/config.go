// Package config loads the YAML configuration used by cmd/encstore and
// turns it into a backend, a logger and encstore.Options.
//
//	backend:
//	  kind: bolt            # memory | bolt | redis | bigcache | ristretto | nats
//	  bolt: {path: ./secrets.db}
//	storage:
//	  prefix: app
//	  algorithm: AES
//	  codec: json           # json | cbor | msgpack
//	log:
//	  level: warn
//	  format: text          # text (logrus) | json (zap) | slog
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/encstore/crypt"
)

// Backend kinds.
const (
	KindMemory    = "memory"
	KindBolt      = "bolt"
	KindRedis     = "redis"
	KindBigCache  = "bigcache"
	KindRistretto = "ristretto"
	KindNATS      = "nats"
)

type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Notify  NotifyConfig  `yaml:"notify"`
	// Keyring account the CLI stores the secret under; defaults to the
	// backend location.
	KeyringAccount string `yaml:"keyring_account"`
}

type BackendConfig struct {
	Kind      string          `yaml:"kind"`
	Bolt      BoltConfig      `yaml:"bolt"`
	Redis     RedisConfig     `yaml:"redis"`
	BigCache  BigCacheConfig  `yaml:"bigcache"`
	Ristretto RistrettoConfig `yaml:"ristretto"`
	NATS      NATSConfig      `yaml:"nats"`
}

type BoltConfig struct {
	Path   string `yaml:"path"`
	Bucket string `yaml:"bucket"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type BigCacheConfig struct {
	LifeWindow  time.Duration `yaml:"life_window"`
	MaxSizeMB   int           `yaml:"max_size_mb"`
	CleanWindow time.Duration `yaml:"clean_window"`
}

type RistrettoConfig struct {
	NumCounters int64 `yaml:"num_counters"`
	MaxCost     int64 `yaml:"max_cost"`
}

type NATSConfig struct {
	URL     string        `yaml:"url"`
	Bucket  string        `yaml:"bucket"`
	Timeout time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	Prefix             string `yaml:"prefix"`
	Algorithm          string `yaml:"algorithm"`
	KDFIterations      int    `yaml:"kdf_iterations"`
	DoNotEncryptValues bool   `yaml:"do_not_encrypt_values"`
	StateManagement    bool   `yaml:"state_management"`
	Codec              string `yaml:"codec"`
	MaxDecodeBytes     int    `yaml:"max_decode_bytes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type NotifyConfig struct {
	// Log events through slog at debug level.
	Log bool `yaml:"log"`
	// Sample read events; 0/1 = log all.
	ReadEvery uint64 `yaml:"read_every"`
}

// Default returns the configuration used when no file is given: a bbolt
// file in the working directory, AES, JSON values, warn-level text logs.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, fills defaults and validates. Unknown fields are
// rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Backend.Kind == "" {
		c.Backend.Kind = KindBolt
	}
	if c.Backend.Bolt.Path == "" {
		c.Backend.Bolt.Path = "encstore.db"
	}
	if c.Backend.Redis.Addr == "" {
		c.Backend.Redis.Addr = "localhost:6379"
	}
	if c.Backend.BigCache.LifeWindow == 0 {
		c.Backend.BigCache.LifeWindow = time.Hour
	}
	if c.Backend.Ristretto.NumCounters == 0 {
		c.Backend.Ristretto.NumCounters = 1e5
	}
	if c.Backend.Ristretto.MaxCost == 0 {
		c.Backend.Ristretto.MaxCost = 1 << 20
	}
	if c.Backend.NATS.URL == "" {
		c.Backend.NATS.URL = "nats://127.0.0.1:4222"
	}
	if c.Backend.NATS.Bucket == "" {
		c.Backend.NATS.Bucket = "encstore"
	}
	if c.Storage.Algorithm == "" {
		c.Storage.Algorithm = string(crypt.AES)
	}
	if c.Storage.Codec == "" {
		c.Storage.Codec = "json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend.Kind {
	case KindMemory, KindBolt, KindRedis, KindBigCache, KindRistretto, KindNATS:
	default:
		errs = append(errs, fmt.Errorf("backend.kind %q is not supported", c.Backend.Kind))
	}
	if !slices.Contains(crypt.Supported(), crypt.Algorithm(c.Storage.Algorithm)) {
		errs = append(errs, fmt.Errorf("storage.algorithm %q is not supported (have %v)", c.Storage.Algorithm, crypt.Supported()))
	}
	switch c.Storage.Codec {
	case "json", "cbor", "msgpack":
	default:
		errs = append(errs, fmt.Errorf("storage.codec %q is not supported", c.Storage.Codec))
	}
	if c.Storage.KDFIterations < 0 {
		errs = append(errs, errors.New("storage.kdf_iterations must not be negative"))
	}
	if c.Storage.MaxDecodeBytes < 0 {
		errs = append(errs, errors.New("storage.max_decode_bytes must not be negative"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not supported", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json", "slog":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not supported", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Account returns the keyring account for this configuration.
func (c *Config) Account() string {
	if c.KeyringAccount != "" {
		return c.KeyringAccount
	}
	switch c.Backend.Kind {
	case KindBolt:
		return "bolt:" + c.Backend.Bolt.Path
	case KindRedis:
		return fmt.Sprintf("redis:%s/%d", c.Backend.Redis.Addr, c.Backend.Redis.DB)
	case KindNATS:
		return "nats:" + c.Backend.NATS.URL + "/" + c.Backend.NATS.Bucket
	}
	return c.Backend.Kind
}
