package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openlitera/pulse/pkg/observability"
	"github.com/openlitera/pulse/pkg/storage"
)

// Config holds all daemon configuration
type Config struct {
	// Ops server configuration (health, metrics)
	Server ServerConfig

	// Redis store configuration
	Store storage.Config

	// Engine dispatch configuration
	Engine EngineConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds the ops HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// RateLimitPerMinute caps ops requests per client IP per minute.
	// Zero disables the limiter.
	RateLimitPerMinute int
}

// EngineConfig holds fire-and-forget dispatch settings
type EngineConfig struct {
	Workers         int
	QueueSize       int
	DispatchTimeout time.Duration

	// WarmInterval is how often the daemon refreshes gauges and warms
	// snapshots for the current hot items.
	WarmInterval time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	TracingEnabled  bool
	TracingEndpoint string
	ServiceName     string
	ServiceVersion  string
	TracingInsecure bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Store:         loadStoreConfig(),
		Engine:        loadEngineConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("PULSE_HOST", "0.0.0.0"),
		Port:            getEnv("PULSE_PORT", "9090"),
		ReadTimeout:     getEnvDuration("PULSE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("PULSE_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("PULSE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("PULSE_SHUTDOWN_TIMEOUT", 30*time.Second),

		RateLimitPerMinute: getEnvInt("PULSE_OPS_RATE_LIMIT", 0),
	}
}

func loadStoreConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if addrs := getEnv("PULSE_REDIS_ADDRS", ""); addrs != "" {
		cfg.Addrs = splitAndTrim(addrs)
	}
	if password := getEnv("PULSE_REDIS_PASSWORD", ""); password != "" {
		cfg.Password = password
	}
	if db := getEnvInt("PULSE_REDIS_DB", -1); db >= 0 {
		cfg.DB = db
	}
	if poolSize := getEnvInt("PULSE_REDIS_POOL_SIZE", 0); poolSize > 0 {
		cfg.PoolSize = poolSize
	}
	if redirects := getEnvInt("PULSE_REDIS_MAX_REDIRECTS", 0); redirects > 0 {
		cfg.MaxRedirects = redirects
	}
	if replicas := getEnv("PULSE_READ_FROM_REPLICAS", ""); replicas != "" {
		cfg.ReadFromReplicas = strings.ToLower(replicas) == "true" || replicas == "1"
	}

	// Per-structure expiry windows
	if ttl := getEnvDuration("PULSE_VISITOR_TTL", 0); ttl > 0 {
		cfg.CacheTTL[storage.TTLVisitors] = ttl
	}
	if ttl := getEnvDuration("PULSE_STATS_TTL", 0); ttl > 0 {
		cfg.CacheTTL[storage.TTLStats] = ttl
	}
	if ttl := getEnvDuration("PULSE_AGGREGATE_TTL", 0); ttl > 0 {
		cfg.CacheTTL[storage.TTLAggregate] = ttl
	}
	if ttl := getEnvDuration("PULSE_HOT_TTL", 0); ttl > 0 {
		cfg.CacheTTL[storage.TTLHot] = ttl
	}
	if ttl := getEnvDuration("PULSE_CACHE_TTL", 0); ttl > 0 {
		cfg.CacheTTL[storage.TTLGeneral] = ttl
	}

	if bound := getEnvInt64("PULSE_SERIES_MAX_SAMPLES", 0); bound > 0 {
		cfg.SeriesMaxSamples = bound
	}
	if maxLen := getEnvInt64("PULSE_STREAM_MAX_LEN", 0); maxLen > 0 {
		cfg.StreamMaxLen = maxLen
	}
	if threshold := getEnvInt("PULSE_HOT_THRESHOLD", 0); threshold > 0 {
		cfg.HotThreshold = float64(threshold)
	}
	if size := getEnvInt("PULSE_L1_CACHE_SIZE", -1); size >= 0 {
		cfg.L1CacheSize = size
	}

	return cfg
}

func loadEngineConfig() EngineConfig {
	return EngineConfig{
		Workers:         getEnvInt("PULSE_WORKERS", 8),
		QueueSize:       getEnvInt("PULSE_QUEUE_SIZE", 256),
		DispatchTimeout: getEnvDuration("PULSE_DISPATCH_TIMEOUT", 10*time.Second),
		WarmInterval:    getEnvDuration("PULSE_WARM_INTERVAL", time.Minute),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:        observability.ParseLogLevel(getEnv("PULSE_LOG_LEVEL", "info")),
		MetricsEnabled:  getEnvBool("PULSE_METRICS_ENABLED", true),
		TracingEnabled:  getEnvBool("PULSE_TRACING_ENABLED", false),
		TracingEndpoint: getEnv("PULSE_TRACING_ENDPOINT", "localhost:4317"),
		ServiceName:     getEnv("PULSE_SERVICE_NAME", "pulse"),
		ServiceVersion:  getEnv("PULSE_SERVICE_VERSION", "1.0.0"),
		TracingInsecure: getEnvBool("PULSE_TRACING_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("ops server port is required")
	}
	if len(c.Store.Addrs) == 0 {
		return fmt.Errorf("at least one redis address is required")
	}
	for kind, ttl := range c.Store.CacheTTL {
		if ttl <= 0 {
			return fmt.Errorf("TTL for %q must be positive", kind)
		}
	}
	if c.Store.SeriesMaxSamples <= 0 {
		return fmt.Errorf("series sample bound must be positive")
	}
	if c.Store.StreamMaxLen <= 0 {
		return fmt.Errorf("stream max length must be positive")
	}
	if c.Engine.Workers <= 0 {
		return fmt.Errorf("engine worker count must be positive")
	}
	if c.Observability.TracingEnabled {
		if c.Observability.TracingEndpoint == "" {
			return fmt.Errorf("tracing endpoint is required when tracing is enabled")
		}
		if c.Observability.ServiceName == "" {
			return fmt.Errorf("service name is required when tracing is enabled")
		}
	}
	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
