package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the pixdex API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Encoder    EncoderConfig    `yaml:"encoder"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Search     SearchConfig     `yaml:"search"`
	QueryCache QueryCacheConfig `yaml:"query_cache"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxUploadBytes  int64 `yaml:"max_upload_bytes"`
}

// EncoderConfig holds the image encoder endpoint settings.
type EncoderConfig struct {
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	BuildConcurrency int    `yaml:"build_concurrency"`
}

// CatalogConfig holds catalog source and cache locations.
type CatalogConfig struct {
	MetadataPath string `yaml:"metadata_path"`
	ImagesDir    string `yaml:"images_dir"`
	CachePath    string `yaml:"cache_path"`
}

// SearchConfig holds ranking settings.
type SearchConfig struct {
	DefaultK  int        `yaml:"default_k"`
	MaxK      int        `yaml:"max_k"`
	Algorithm string     `yaml:"algorithm"` // exact, hnsw (default: exact)
	HNSW      HNSWConfig `yaml:"hnsw"`
}

// HNSWConfig holds approximate index tuning knobs.
type HNSWConfig struct {
	M        int `yaml:"m"`
	EFSearch int `yaml:"ef_search"`
}

// QueryCacheConfig holds query-embedding cache settings.
type QueryCacheConfig struct {
	Driver string            `yaml:"driver"` // none, badger, redis (default: none)
	TTLSec int               `yaml:"ttl_sec"`
	Badger BadgerCacheConfig `yaml:"badger"`
	Redis  RedisCacheConfig  `yaml:"redis"`
}

// BadgerCacheConfig holds embedded cache settings.
type BadgerCacheConfig struct {
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"in_memory"`
}

// RedisCacheConfig holds networked cache settings.
type RedisCacheConfig struct {
	Addrs               []string `yaml:"addrs"`
	Password            string   `yaml:"password"`
	ReadinessTimeoutSec int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		c.HTTP.MaxUploadBytes = 10 << 20
	}
	if c.Encoder.Model == "" {
		c.Encoder.Model = "clip-vit-base-patch32"
	}
	if c.Encoder.Dimensions <= 0 {
		c.Encoder.Dimensions = 512
	}
	if c.Encoder.TimeoutSec <= 0 {
		c.Encoder.TimeoutSec = 30
	}
	if c.Encoder.BuildConcurrency <= 0 {
		c.Encoder.BuildConcurrency = 4
	}
	if c.Catalog.CachePath == "" {
		c.Catalog.CachePath = "data/product_vectors.json"
	}
	if c.Search.DefaultK <= 0 {
		c.Search.DefaultK = 10
	}
	if c.Search.MaxK <= 0 {
		c.Search.MaxK = 100
	}
	if c.Search.Algorithm == "" {
		c.Search.Algorithm = "exact"
	}
	if c.Search.HNSW.M <= 0 {
		c.Search.HNSW.M = 16
	}
	if c.Search.HNSW.EFSearch <= 0 {
		c.Search.HNSW.EFSearch = 64
	}
	if c.QueryCache.Driver == "" {
		c.QueryCache.Driver = "none"
	}
	if c.QueryCache.Redis.ReadinessTimeoutSec <= 0 {
		c.QueryCache.Redis.ReadinessTimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Encoder.BaseURL == "" {
		return fmt.Errorf("encoder.base_url is required")
	}
	if c.Search.DefaultK > c.Search.MaxK {
		return fmt.Errorf("search.default_k (%d) must not exceed search.max_k (%d)",
			c.Search.DefaultK, c.Search.MaxK)
	}
	switch c.Search.Algorithm {
	case "exact", "hnsw":
		// ok
	default:
		return fmt.Errorf("search.algorithm must be \"exact\" or \"hnsw\", got %q", c.Search.Algorithm)
	}
	switch c.QueryCache.Driver {
	case "none", "badger", "redis":
		// ok
	default:
		return fmt.Errorf("query_cache.driver must be \"none\", \"badger\" or \"redis\", got %q",
			c.QueryCache.Driver)
	}
	if c.QueryCache.Driver == "redis" && len(c.QueryCache.Redis.Addrs) == 0 {
		return fmt.Errorf("query_cache.redis.addrs is required for the redis driver")
	}
	if c.QueryCache.Driver == "badger" && !c.QueryCache.Badger.InMemory && c.QueryCache.Badger.Dir == "" {
		return fmt.Errorf("query_cache.badger.dir is required for the on-disk badger driver")
	}
	if c.Catalog.MetadataPath == "" && c.Catalog.CachePath == "" {
		return fmt.Errorf("catalog.metadata_path or catalog.cache_path is required")
	}
	return nil
}

// findConfigPath locates the config file. PIXDEX_CONFIG overrides the search.
func findConfigPath(env string) string {
	if path := os.Getenv("PIXDEX_CONFIG"); path != "" {
		return path
	}

	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
