package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	errs "github.com/matzehuels/costgraph/pkg/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIBaseURL, EnvRedisAddr, EnvRedisDB, EnvMongoURI, EnvCacheTTL, EnvServerAddr} {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.RetryAttempts != 1 {
		t.Errorf("RetryAttempts = %d, want 1", cfg.RetryAttempts)
	}
	if cfg.Cache.Backend != CacheFile || cfg.Cache.TTL.Duration != 10*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":8090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Pipelines) != 9 {
		t.Fatalf("pipelines = %d, want 9", len(cfg.Pipelines))
	}
	for _, p := range cfg.Pipelines {
		if len(p.Providers) != 4 || !p.Supports("Multi-Cloud") {
			t.Errorf("%s providers = %v", p.Name, p.Providers)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestDefaultPipelinesAreIndependent(t *testing.T) {
	a := DefaultPipelines()
	a[0].Providers[0] = "changed"
	if b := DefaultPipelines(); b[0].Providers[0] != "AWS" {
		t.Error("DefaultPipelines shares provider slices")
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
api_base_url = "https://costs.example.com"
retry_attempts = 3

[cache]
backend = "redis"
ttl = "90s"
redis_addr = "cache:6379"
redis_db = 2

[server]
addr = "127.0.0.1:9000"

[[pipelines]]
name = "Smart Tourism Platform"
providers = ["AWS", "GCP"]
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.APIBaseURL != "https://costs.example.com" || cfg.RetryAttempts != 3 {
		t.Errorf("top level = %q / %d", cfg.APIBaseURL, cfg.RetryAttempts)
	}
	if cfg.Cache != (Cache{Backend: CacheRedis, TTL: Duration{90 * time.Second}, RedisAddr: "cache:6379", RedisDB: 2}) {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Store.Database != "costgraph" {
		t.Errorf("unset table should keep defaults, Store = %+v", cfg.Store)
	}
	if len(cfg.Pipelines) != 1 {
		t.Fatalf("pipelines = %+v, want the configured one only", cfg.Pipelines)
	}
	p, ok := cfg.Pipeline("Smart Tourism Platform")
	if !ok || !p.Supports("GCP") || p.Supports("Azure") {
		t.Errorf("Pipeline() = %+v, %v", p, ok)
	}
	if _, ok := cfg.Pipeline("smart tourism platform"); ok {
		t.Error("pipeline lookup should be exact")
	}
}

func TestParseKeepsDefaultPipelines(t *testing.T) {
	cfg, err := Parse([]byte(`api_base_url = "http://localhost:1"`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(cfg.Pipelines) != 9 {
		t.Errorf("pipelines = %d, want defaults", len(cfg.Pipelines))
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `api_base_url = `},
		{"unknown key", `colour = "blue"`},
		{"bad url", `api_base_url = "ftp://x"`},
		{"zero retries", `retry_attempts = 0`},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"bad ttl", "[cache]\nttl = \"soon\""},
		{"negative ttl", "[cache]\nttl = \"-1m\""},
		{"redis without addr", "[cache]\nbackend = \"redis\"\nredis_addr = \"\""},
		{"bad provider", "[[pipelines]]\nname = \"x\"\nproviders = [\"aws\"]"},
		{"bad pipeline", "[[pipelines]]\nname = \"a/b\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Errorf("Parse() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBaseURL != Default().APIBaseURL {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() of a missing explicit path should fail")
	}
}

func TestLoadDefaultPath(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "costgraph", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[server]\naddr = \":7000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := DefaultPath()
	if err != nil || got != path {
		t.Fatalf("DefaultPath() = %q, %v", got, err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_base_url = "http://file:1"`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvAPIBaseURL, "http://env:2")
	t.Setenv(EnvRedisAddr, "redis:6380")
	t.Setenv(EnvRedisDB, "4")
	t.Setenv(EnvMongoURI, "mongodb://db:27017")
	t.Setenv(EnvCacheTTL, "1h")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBaseURL != "http://env:2" {
		t.Errorf("APIBaseURL = %q, env should win over file", cfg.APIBaseURL)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "redis:6380" || cfg.Cache.RedisDB != 4 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("TTL = %v", cfg.Cache.TTL)
	}
	if cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Errorf("MongoURI = %q", cfg.Store.MongoURI)
	}

	t.Setenv(EnvCacheTTL, "later")
	if _, err := Load(path); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("bad TTL env = %v, want INVALID_CONFIG", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := Default()
	want.Cache.TTL = Duration{5 * time.Minute}

	if err := want.Write(path); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v\n%s", err, data)
	}
	if got.Cache.TTL != want.Cache.TTL || len(got.Pipelines) != len(want.Pipelines) {
		t.Errorf("round trip = %+v", got)
	}
}
