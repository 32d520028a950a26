// Package config loads process configuration from the environment, optionally seeded by a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minJWTSecretLength = 32

// Config is the fully parsed runtime configuration.
type Config struct {
	DatabaseURL    string
	ListenAddr     string
	JWTSecret      string
	JWTTTL         time.Duration
	AllowedOrigins string
	LogLevel       string

	// Redis is optional; an empty RedisAddr disables caching and uses in-memory rate limiting.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Pub/Sub is optional; an empty project disables event publishing.
	PubSubProjectID   string
	PubSubStockTopic  string
	PubSubOrdersTopic string
}

// Load reads .env (if present) and then the process environment.
// Every invalid or missing required value is reported in one joined error.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// LoadTools is Load for operator tools, which only need DATABASE_URL.
func LoadTools() (*Config, error) {
	_ = godotenv.Load()
	return parse(os.Getenv, false)
}

// FromEnv builds a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (*Config, error) {
	return parse(getenv, true)
}

func parse(getenv func(string) string, server bool) (*Config, error) {
	var errs []error
	p := parser{getenv: getenv, errs: &errs}

	cfg := &Config{
		DatabaseURL:       strings.TrimSpace(getenv("DATABASE_URL")),
		ListenAddr:        listenAddr(getenv),
		JWTSecret:         getenv("JWT_SECRET"),
		JWTTTL:            p.duration("JWT_TTL", 24*time.Hour),
		AllowedOrigins:    getenv("ALLOWED_ORIGINS"),
		LogLevel:          getenv("LOG_LEVEL"),
		RedisAddr:         strings.TrimSpace(getenv("REDIS_ADDR")),
		RedisPassword:     getenv("REDIS_PASSWORD"),
		RedisDB:           p.int("REDIS_DB", 0),
		CacheTTL:          p.duration("CACHE_TTL", 5*time.Minute),
		RateLimitRequests: p.int("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   p.duration("RATE_LIMIT_WINDOW", time.Minute),
		PubSubProjectID:   strings.TrimSpace(getenv("PUBSUB_PROJECT_ID")),
		PubSubStockTopic:  withDefault(getenv("PUBSUB_TOPIC_STOCK"), "inventory-stock-events"),
		PubSubOrdersTopic: withDefault(getenv("PUBSUB_TOPIC_ORDERS"), "inventory-order-events"),
	}

	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if server && len(cfg.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength))
	}
	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS must be positive"))
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// listenAddr honours LISTEN_ADDR, then SERVER_PORT, then :8080.
func listenAddr(getenv func(string) string) string {
	if addr := strings.TrimSpace(getenv("LISTEN_ADDR")); addr != "" {
		return addr
	}
	if port := strings.TrimSpace(getenv("SERVER_PORT")); port != "" {
		return ":" + port
	}
	return ":8080"
}

func withDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

type parser struct {
	getenv func(string) string
	errs   *[]error
}

func (p parser) int(key string, def int) int {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p parser) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
