// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "certdedup/pkg/platform/strings"
)

// Config is the full service configuration.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	Scorer   Scorer
	Dedup    Dedup
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// Postgres holds the identity/result store connection settings.
type Postgres struct {
	DSN string
}

// Redis holds the result cache settings. An empty URL disables the cache.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ResultTTL    time.Duration
}

// Kafka holds the audit sink settings. Empty brokers disable the sink.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Scorer holds the external similarity scorer settings.
type Scorer struct {
	BaseURL string
	Secret  string
	Timeout time.Duration
}

// Dedup holds adjudication defaults; callers may override per request.
type Dedup struct {
	TopK               int
	ThresholdUnique    float64
	ThresholdDuplicate float64
	DefaultPhoneRegion string
}

// FromEnv builds a Config from environment variables, applying the defaults
// observed in development.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: envString("CERTDEDUP_ADDR", ":8080"),
		},
		Postgres: Postgres{
			DSN: os.Getenv("CERTDEDUP_POSTGRES_DSN"),
		},
		Redis: Redis{
			URL:          os.Getenv("CERTDEDUP_REDIS_URL"),
			PoolSize:     envInt("CERTDEDUP_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CERTDEDUP_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("CERTDEDUP_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CERTDEDUP_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CERTDEDUP_REDIS_WRITE_TIMEOUT", 3*time.Second),
			ResultTTL:    envDuration("CERTDEDUP_RESULT_CACHE_TTL", 24*time.Hour),
		},
		Kafka: Kafka{
			Brokers:    splitNonEmpty(os.Getenv("CERTDEDUP_KAFKA_BROKERS")),
			AuditTopic: envString("CERTDEDUP_AUDIT_TOPIC", "certdedup.audit"),
		},
		Scorer: Scorer{
			BaseURL: envString("AI_BASE_URL", "http://127.0.0.1:8001"),
			Secret:  envString("AI_SECRET", "default_secret_key"),
			Timeout: envDuration("AI_TIMEOUT", 30*time.Second),
		},
		Dedup: Dedup{
			TopK:               envInt("DEDUP_TOPK", 3),
			ThresholdUnique:    envFloat("DEDUP_THRESHOLD_UNIQUE", 0.80),
			ThresholdDuplicate: envFloat("DEDUP_THRESHOLD_DUPLICATE", 0.95),
			DefaultPhoneRegion: envString("CERTDEDUP_PHONE_REGION", "VN"),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// splitNonEmpty parses a comma-separated list, dropping blanks and repeats.
func splitNonEmpty(csv string) []string {
	out := pstrings.DedupeAndTrim(strings.Split(csv, ","))
	if len(out) == 0 {
		return nil
	}
	return out
}
