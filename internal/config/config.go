package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	BindAddress       string `yaml:"bind_address"`
	ServerPort        string `yaml:"port"`
	StoreBackend      string `yaml:"store_backend"`
	DatabaseType      string `yaml:"database_type"`
	DatabasePath      string `yaml:"db_path"`
	DatabaseURL       string `yaml:"database_url"`
	MigrationsPath    string `yaml:"migrations_path"`
	RedisAddr         string `yaml:"redis_addr"`
	RedisPassword     string `yaml:"redis_password"`
	RedisDB           int    `yaml:"redis_db"`
	RedisKeyPrefix    string `yaml:"redis_key_prefix"`
	UploadMaxSize     int64  `yaml:"upload_max_size"`
	UploadRateLimit   int    `yaml:"upload_rate_limit"`
	TimeZone          string `yaml:"time_zone"`
	RandomSeed        uint64 `yaml:"random_seed"`
	LogLevel          string `yaml:"log_level"`
	LogFormat         string `yaml:"log_format"`
	MetricsEnabled    bool   `yaml:"metrics_enabled"`
	TrustProxyHeaders bool   `yaml:"trust_proxy_headers"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		BindAddress:     "127.0.0.1",
		ServerPort:      "8080",
		StoreBackend:    "sql",
		DatabaseType:    "sqlite",
		DatabasePath:    "./emotionquest.db",
		MigrationsPath:  "./migrations",
		RedisAddr:       "localhost:6379",
		RedisKeyPrefix:  "emotionquest:",
		UploadMaxSize:   5 * 1024 * 1024, // 5MB
		UploadRateLimit: 60,              // per client per minute
		TimeZone:        "Local",
		LogLevel:        "info",
		LogFormat:       "text",
		MetricsEnabled:  true,
	}
}

// Load reads configuration from an optional .env file, an optional YAML file
// named by CONFIG_FILE, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate applies range checks to the merged configuration
func (c *Config) validate() error {
	if c.UploadMaxSize <= 0 {
		return fmt.Errorf("invalid upload max size %d: must be positive", c.UploadMaxSize)
	}
	if c.UploadRateLimit < 0 {
		return fmt.Errorf("invalid upload rate limit %d: must not be negative", c.UploadRateLimit)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("invalid redis db %d: must not be negative", c.RedisDB)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// mergeFile overlays values from a YAML file onto cfg
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.BindAddress = getEnv("BIND_ADDRESS", c.BindAddress)
	c.ServerPort = getEnv("PORT", c.ServerPort)
	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.DatabaseType = getEnv("DATABASE_TYPE", c.DatabaseType)
	c.DatabasePath = getEnv("DB_PATH", c.DatabasePath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.MigrationsPath = getEnv("MIGRATIONS_PATH", c.MigrationsPath)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisKeyPrefix = getEnv("REDIS_KEY_PREFIX", c.RedisKeyPrefix)
	c.TimeZone = getEnv("TIME_ZONE", c.TimeZone)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		c.RedisDB = n
	}
	if v := os.Getenv("UPLOAD_MAX_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid UPLOAD_MAX_SIZE %q: %w", v, err)
		}
		c.UploadMaxSize = n
	}
	if v := os.Getenv("UPLOAD_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid UPLOAD_RATE_LIMIT %q: %w", v, err)
		}
		c.UploadRateLimit = n
	}
	if v := os.Getenv("RANDOM_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid RANDOM_SEED %q: %w", v, err)
		}
		c.RandomSeed = n
	}
	if v := os.Getenv("TRUST_PROXY_HEADERS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRUST_PROXY_HEADERS %q: %w", v, err)
		}
		c.TrustProxyHeaders = b
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED %q: %w", v, err)
		}
		c.MetricsEnabled = b
	}
	return nil
}

// Location resolves the time zone used to decide calendar days
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// ListenAddr returns the host:port the API server binds to
func (c *Config) ListenAddr() string {
	return c.BindAddress + ":" + c.ServerPort
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
