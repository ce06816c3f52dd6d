package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the dashboard.
type Config struct {
	App      AppConfig
	API      APIConfig
	Cache    CacheConfig
	Session  SessionConfig
	Gate     GateConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// APIConfig points at the upstream REST API.
type APIConfig struct {
	BaseURL          string
	MediaBaseURL     string
	MaxResponseBytes int64
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Driver     string
	TTLSeconds int
	KeyPrefix  string
}

// SessionConfig controls session cookie attributes.
type SessionConfig struct {
	RememberMaxAgeSeconds int
}

// GateConfig tunes the access gate.
type GateConfig struct {
	RejectExpiredTokens bool
	StaticExtensions    []string
}

// PostgresConfig holds DB connection values for the access audit store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	baseURL := strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "retailer-dashboard"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		API: APIConfig{
			BaseURL:          baseURL,
			MediaBaseURL:     strings.TrimRight(getEnv("API_MEDIA_BASE_URL", baseURL), "/"),
			MaxResponseBytes: int64(getEnvAsInt("API_MAX_RESPONSE_BYTES", 2*1024*1024)),
		},
		Cache: CacheConfig{
			Driver:     strings.ToLower(getEnv("CACHE_DRIVER", CacheDriverMemory)),
			TTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 60),
			KeyPrefix:  getEnv("CACHE_KEY_PREFIX", "dashboard:cache:"),
		},
		Session: SessionConfig{
			RememberMaxAgeSeconds: getEnvAsInt("SESSION_REMEMBER_MAX_AGE_SECONDS", 2592000),
		},
		Gate: GateConfig{
			RejectExpiredTokens: getEnvAsBool("GATE_REJECT_EXPIRED_TOKENS", true),
			StaticExtensions:    getEnvAsList("GATE_STATIC_EXTENSIONS"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 5)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Cache.Driver != CacheDriverMemory && cfg.Cache.Driver != CacheDriverRedis {
		return nil, fmt.Errorf("invalid CACHE_DRIVER %q", cfg.Cache.Driver)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// Production reports whether the service runs in production.
func (a AppConfig) Production() bool {
	return strings.EqualFold(a.Env, "production")
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TTL returns how long an unused cache entry is retained.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
