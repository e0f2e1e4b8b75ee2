// Package config loads costgraph settings from a TOML file and the
// environment.
//
// Settings are resolved in order: built-in defaults, then the config file
// (if present), then COSTGRAPH_* environment variables. Command-line flags
// are applied by the caller on top of the result.
//
//	cfg, err := config.Load("")   // default path, missing file is fine
//	cfg, err := config.Load(path) // explicit path, must exist
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/costgraph/pkg/errors"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Environment variables that override file settings.
const (
	EnvAPIBaseURL = "COSTGRAPH_API_BASE_URL"
	EnvRedisAddr  = "COSTGRAPH_REDIS_ADDR"
	EnvRedisDB    = "COSTGRAPH_REDIS_DB"
	EnvMongoURI   = "COSTGRAPH_MONGO_URI"
	EnvCacheTTL   = "COSTGRAPH_CACHE_TTL"
	EnvServerAddr = "COSTGRAPH_SERVER_ADDR"
)

// Config is the complete costgraph configuration.
type Config struct {
	APIBaseURL    string     `toml:"api_base_url"`
	RetryAttempts int        `toml:"retry_attempts"`
	Cache         Cache      `toml:"cache"`
	Store         Store      `toml:"store"`
	Server        Server     `toml:"server"`
	Pipelines     []Pipeline `toml:"pipelines"`
}

// Cache selects and configures the HTTP response cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	TTL       Duration `toml:"ttl"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	Prefix    string   `toml:"prefix"` // prepended to every key
}

// Store configures snapshot history. An empty MongoURI keeps history in
// memory for the lifetime of the process.
type Store struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Server configures the HTTP service.
type Server struct {
	Addr string `toml:"addr"`
}

// Pipeline is one entry of the pipeline catalogue.
type Pipeline struct {
	Name      string   `toml:"name"`
	Providers []string `toml:"providers"`
}

// Duration is a time.Duration read from a TOML string such as "10m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIBaseURL:    "http://localhost:8080",
		RetryAttempts: 1,
		Cache: Cache{
			Backend:   CacheFile,
			TTL:       Duration{10 * time.Minute},
			RedisAddr: "localhost:6379",
		},
		Store: Store{
			Database: "costgraph",
		},
		Server: Server{
			Addr: ":8090",
		},
		Pipelines: DefaultPipelines(),
	}
}

// DefaultPipelines returns the case-study pipelines, each available on
// every provider.
func DefaultPipelines() []Pipeline {
	names := []string{
		"Connected Vehicle Analytics Platform",
		"E-commerce Personalization Platform",
		"Global Finance Analytics Platform",
		"Global Media Streaming Platform",
		"Healthcare Data Exchange Platform",
		"IoT-Based Manufacturing Platform",
		"Smart City Operations Platform",
		"Smart Grid Analytics Platform",
		"Smart Tourism Platform",
	}
	out := make([]Pipeline, len(names))
	for i, n := range names {
		out[i] = Pipeline{Name: n, Providers: append([]string(nil), errs.Providers...)}
	}
	return out
}

// DefaultPath returns $XDG_CONFIG_HOME/costgraph/config.toml, falling back
// to the OS user config directory.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "costgraph", "config.toml"), nil
}

// Load reads the configuration. An empty path means [DefaultPath], where a
// missing file is not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults without consulting the
// environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := c.decode(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *Config) decode(data []byte) error {
	pipelines := c.Pipelines
	c.Pipelines = nil
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if !md.IsDefined("pipelines") {
		c.Pipelines = pipelines
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.APIBaseURL = getEnv(EnvAPIBaseURL, c.APIBaseURL)
	c.Server.Addr = getEnv(EnvServerAddr, c.Server.Addr)
	c.Store.MongoURI = getEnv(EnvMongoURI, c.Store.MongoURI)
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		c.Cache.RedisAddr = addr
		c.Cache.Backend = CacheRedis
	}
	c.Cache.RedisDB = getEnvAsInt(EnvRedisDB, c.Cache.RedisDB)
	if v := os.Getenv(EnvCacheTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s", EnvCacheTTL)
		}
		c.Cache.TTL = Duration{ttl}
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := errs.ValidateURL(c.APIBaseURL); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "api_base_url")
	}
	if c.RetryAttempts < 1 {
		return errs.New(errs.ErrCodeInvalidConfig, "retry_attempts must be at least 1, got %d", c.RetryAttempts)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	for i, p := range c.Pipelines {
		if err := errs.ValidatePipelineName(p.Name); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "pipelines[%d]", i)
		}
		for _, provider := range p.Providers {
			if err := errs.ValidateProvider(provider); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidConfig, err, "pipelines[%d] (%s)", i, p.Name)
			}
		}
	}
	return nil
}

// Pipeline looks up a catalogue entry by exact name.
func (c *Config) Pipeline(name string) (Pipeline, bool) {
	for _, p := range c.Pipelines {
		if p.Name == name {
			return p, true
		}
	}
	return Pipeline{}, false
}

// Supports reports whether the pipeline is configured for provider.
func (p Pipeline) Supports(provider string) bool {
	return slices.Contains(p.Providers, provider)
}

// Write encodes c as TOML to path, creating parent directories.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
