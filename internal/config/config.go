package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable holding an optional YAML config file
const FileEnv = "STOREFRONT_CONFIG"

// Session store kinds
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config holds all configuration for the application. Values come from
// Default, then the YAML file named by STOREFRONT_CONFIG, then environment
// variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  BackendConfig  `yaml:"backend"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Menu     MenuConfig     `yaml:"menu"`
	CORS     CORSConfig     `yaml:"cors"`

	LogLevel    string `env:"LOG_LEVEL" yaml:"log_level"`
	Environment string `env:"ENVIRONMENT" yaml:"environment"`
}

type ServerConfig struct {
	Host            string        `env:"HOST" yaml:"host"`
	Port            int           `env:"PORT" yaml:"port"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" yaml:"read_timeout"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type BackendConfig struct {
	BaseURL        string        `env:"BACKEND_URL" yaml:"base_url"`
	Timeout        time.Duration `env:"BACKEND_TIMEOUT" yaml:"timeout"`
	MaxRetries     int           `env:"BACKEND_MAX_RETRIES" yaml:"max_retries"`
	BreakerTimeout time.Duration `env:"BACKEND_BREAKER_TIMEOUT" yaml:"breaker_timeout"`
}

type SessionConfig struct {
	Store         string        `env:"SESSION_STORE" yaml:"store"`
	TTL           time.Duration `env:"SESSION_TTL" yaml:"ttl"`
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE" yaml:"cookie_secure"`
	CartIdle      time.Duration `env:"CART_IDLE_TIMEOUT" yaml:"cart_idle_timeout"`
	SweepInterval time.Duration `env:"CART_SWEEP_INTERVAL" yaml:"sweep_interval"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" yaml:"addr"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB" yaml:"db"`
}

type KafkaConfig struct {
	Enabled bool     `env:"KAFKA_ENABLED" yaml:"enabled"`
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:"," yaml:"brokers"`
	Topic   string   `env:"KAFKA_TOPIC" yaml:"topic"`
}

type TracingConfig struct {
	Enabled    bool    `env:"OTEL_ENABLED" yaml:"enabled"`
	Endpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" yaml:"endpoint"`
	SampleRate float64 `env:"OTEL_SAMPLE_RATE" yaml:"sample_rate"`
}

type CheckoutConfig struct {
	TableID       int64         `env:"CHECKOUT_TABLE_ID" yaml:"table_id"`
	StaffID       int64         `env:"CHECKOUT_STAFF_ID" yaml:"staff_id"`
	RedirectDelay time.Duration `env:"CHECKOUT_REDIRECT_DELAY" yaml:"redirect_delay"`
}

type MenuConfig struct {
	CacheTTL time.Duration `env:"MENU_CACHE_TTL" yaml:"cache_ttl"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," yaml:"allowed_origins"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8020",
			Timeout:        15 * time.Second,
			MaxRetries:     2,
			BreakerTimeout: 30 * time.Second,
		},
		Session: SessionConfig{
			Store:         SessionStoreMemory,
			TTL:           24 * time.Hour,
			CartIdle:      2 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "storefront.checkout",
		},
		Tracing: TracingConfig{
			Endpoint:   "localhost:4318",
			SampleRate: 1.0,
		},
		Checkout: CheckoutConfig{
			TableID:       2,
			StaffID:       1,
			RedirectDelay: 1500 * time.Millisecond,
		},
		Menu: MenuConfig{
			CacheTTL: time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		LogLevel:    "info",
		Environment: "development",
	}
}

// Load builds the configuration and validates it
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend url: %q", c.Backend.BaseURL)
	}
	if c.Backend.MaxRetries < 0 {
		return fmt.Errorf("BACKEND_MAX_RETRIES must not be negative")
	}

	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis session store")
		}
	default:
		return fmt.Errorf("invalid session store: %s (must be memory or redis)", c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Session.SweepInterval <= 0 || c.Session.CartIdle <= 0 {
		return fmt.Errorf("CART_SWEEP_INTERVAL and CART_IDLE_TIMEOUT must be positive")
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("KAFKA_BROKERS and KAFKA_TOPIC are required when kafka is enabled")
	}

	if c.Checkout.TableID <= 0 || c.Checkout.StaffID <= 0 {
		return fmt.Errorf("checkout table and staff ids must be positive")
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0 and 1, got %v", c.Tracing.SampleRate)
	}

	return nil
}
