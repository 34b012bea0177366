package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cityhealth/directory/internal/domain"
)

// Config holds the CityHealth API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Profiles  ProfilesConfig  `yaml:"profiles"`
	Search    SearchConfig    `yaml:"search"`
	Chat      ChatConfig      `yaml:"chat"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	AllowedOrigins  []string `yaml:"allowed_origins"` // websocket origins, empty = any
}

// DatabaseConfig holds the provider document store settings.
type DatabaseConfig struct {
	Driver           string      `yaml:"driver"` // mongo, memory (default: mongo)
	URI              string      `yaml:"uri"`
	Name             string      `yaml:"name"`
	MaxPoolSize      uint64      `yaml:"max_pool_size"`
	ReadinessTimeout int         `yaml:"readiness_timeout_sec"`
	Retry            RetryConfig `yaml:"retry"`
}

// RetryConfig bounds retries of transient store failures.
type RetryConfig struct {
	Attempts    int `yaml:"attempts"`
	BaseDelayMs int `yaml:"base_delay_ms"`
	MaxDelayMs  int `yaml:"max_delay_ms"`
}

// CacheConfig holds the search page cache settings.
type CacheConfig struct {
	Driver   string   `yaml:"driver"` // redis, memory (default: memory)
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// ProfilesConfig holds the per-device profile store settings.
type ProfilesConfig struct {
	Driver  string `yaml:"driver"` // sqlite, redis, memory (default: sqlite)
	DataDir string `yaml:"data_dir"`
}

// SearchConfig holds pagination and caching knobs.
type SearchConfig struct {
	PageSize     int `yaml:"page_size"`
	MaxPage      int `yaml:"max_page"`
	CacheTTLSec  int `yaml:"cache_ttl_sec"`
	CursorTTLSec int `yaml:"cursor_ttl_sec"`
}

// ChatConfig holds the chatbot settings.
type ChatConfig struct {
	Model ModelConfig `yaml:"model"`
}

// ModelConfig configures the OpenAI-compatible fallback for unrecognized messages.
type ModelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = disabled
	Burst             int     `yaml:"burst"`
	IdleTTLSec        int     `yaml:"idle_ttl_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded into the environment first.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands environment references in data, decodes it and validates the result.
func Parse(data []byte) (Config, error) {
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
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mongo"
	}
	if c.Database.Name == "" {
		c.Database.Name = "cityhealth"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.Retry.Attempts <= 0 {
		c.Database.Retry.Attempts = 3
	}
	if c.Database.Retry.BaseDelayMs <= 0 {
		c.Database.Retry.BaseDelayMs = 100
	}
	if c.Database.Retry.MaxDelayMs <= 0 {
		c.Database.Retry.MaxDelayMs = 2000
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Profiles.Driver == "" {
		c.Profiles.Driver = "sqlite"
	}
	if c.Profiles.DataDir == "" {
		c.Profiles.DataDir = "data"
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 20
	}
	if c.Search.MaxPage <= 0 {
		c.Search.MaxPage = 50
	}
	if c.Search.CacheTTLSec <= 0 {
		c.Search.CacheTTLSec = 300
	}
	if c.Search.CursorTTLSec <= 0 {
		c.Search.CursorTTLSec = 1800
	}
	if c.Chat.Model.MaxTokens <= 0 {
		c.Chat.Model.MaxTokens = 200
	}
	if c.Chat.Model.TimeoutSec <= 0 {
		c.Chat.Model.TimeoutSec = 10
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 20
	}
	if c.RateLimit.IdleTTLSec <= 0 {
		c.RateLimit.IdleTTLSec = 600
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "mongo":
		if c.Database.URI == "" {
			return fmt.Errorf("database.uri is required for the mongo driver")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver must be \"mongo\" or \"memory\", got %q", c.Database.Driver)
	}
	switch c.Cache.Driver {
	case "redis":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for the redis driver")
		}
	case "memory":
	default:
		return fmt.Errorf("cache.driver must be \"redis\" or \"memory\", got %q", c.Cache.Driver)
	}
	switch c.Profiles.Driver {
	case "sqlite", "memory":
	case "redis":
		if c.Cache.Driver != "redis" {
			return fmt.Errorf("profiles.driver \"redis\" requires cache.driver \"redis\"")
		}
	default:
		return fmt.Errorf("profiles.driver must be \"sqlite\", \"redis\" or \"memory\", got %q", c.Profiles.Driver)
	}
	if c.Chat.Model.Enabled && c.Chat.Model.Model == "" {
		return fmt.Errorf("chat.model.model is required when the model fallback is enabled")
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rate_limit.requests_per_second must not be negative")
	}
	return nil
}

// SearchSettings converts the search section to the domain tuning knobs.
func (c *Config) SearchSettings() domain.SearchConfig {
	return domain.SearchConfig{
		PageSize:  c.Search.PageSize,
		MaxPage:   c.Search.MaxPage,
		CacheTTL:  time.Duration(c.Search.CacheTTLSec) * time.Second,
		CursorTTL: time.Duration(c.Search.CursorTTLSec) * time.Second,
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
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
