package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrMissingEnv = errors.New("missing required environment variable")

type Config struct {
	Port                 string
	Environment          string
	LogLevel             string
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	JWTSecret            string
	RedisURL             string
	RedisPassword        string
	RedisDB              int
	SessionCacheTTL      time.Duration
}

// LoadConfig reads the process environment. DATABASE_URL and JWT_SECRET have
// no defaults.
func LoadConfig() (*Config, error) {
	// Append simple_protocol for PgBouncer compatibility (pgx driver)
	dbURL := GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", ""))
	if dbURL == "" {
		return nil, missing("DATABASE_URL")
	}
	if u, err := url.Parse(dbURL); err == nil {
		q := u.Query()
		if q.Get("default_query_exec_mode") == "" {
			q.Set("default_query_exec_mode", "simple_protocol")
			u.RawQuery = q.Encode()
			dbURL = u.String()
		}
	}

	jwtSecret := GetEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, missing("JWT_SECRET")
	}

	cacheTTLSec := GetEnvAsInt("SESSION_CACHE_TTL_SECONDS", 60)

	return &Config{
		Port:                 GetEnv("PORT", "8080"),
		Environment:          GetEnv("ENVIRONMENT", "development"),
		LogLevel:             GetEnv("LOG_LEVEL", "info"),
		DatabaseURL:          dbURL,
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		JWTSecret:            jwtSecret,
		RedisURL:             GetEnv("REDIS_URL", ""),
		RedisPassword:        GetEnv("REDIS_PASSWORD", ""),
		RedisDB:              GetEnvAsInt("REDIS_DB", 0),
		SessionCacheTTL:      time.Duration(cacheTTLSec) * time.Second,
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func missing(key string) error {
	return &envError{key: key}
}

type envError struct {
	key string
}

func (e *envError) Error() string { return ErrMissingEnv.Error() + ": " + e.key }

func (e *envError) Unwrap() error { return ErrMissingEnv }

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Int("default", defaultValue).
			Msg("invalid integer value, using default")
		return defaultValue
	}
	return value
}
