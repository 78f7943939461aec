package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "offsite/pkg/platform/strings"
)

// Config captures everything the profiling service reads from the environment
// so main stays lean.
type Config struct {
	Addr           string
	Redis          RedisConfig
	PostgresURL    string
	Ingest         IngestConfig
	Kafka          KafkaConfig
	DraftBackend   string // "memory", "redis" or "postgres"
	SessionIdleTTL time.Duration
}

// RedisConfig holds connection tuning for the optional Redis draft store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// IngestConfig describes the single ingestion endpoint submissions go to.
type IngestConfig struct {
	URL           string
	SubmitTimeout time.Duration
}

// KafkaConfig configures the audit event publisher. Empty brokers disable it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables with development
// defaults.
func FromEnv() Config {
	return Config{
		Addr: getenv("OFFSITE_ADDR", ":8080"),
		Redis: RedisConfig{
			URL:          os.Getenv("OFFSITE_REDIS_URL"),
			PoolSize:     getint("OFFSITE_REDIS_POOL_SIZE", 10),
			MinIdleConns: getint("OFFSITE_REDIS_MIN_IDLE", 2),
			DialTimeout:  getdur("OFFSITE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getdur("OFFSITE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getdur("OFFSITE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		PostgresURL: os.Getenv("OFFSITE_POSTGRES_URL"),
		Ingest: IngestConfig{
			URL:           getenv("OFFSITE_INGEST_URL", "http://localhost:9090/ingest/profiling"),
			SubmitTimeout: getdur("OFFSITE_SUBMIT_TIMEOUT", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitlist(os.Getenv("OFFSITE_KAFKA_BROKERS")),
			Topic:   getenv("OFFSITE_KAFKA_AUDIT_TOPIC", "offsite.audit.events"),
		},
		DraftBackend:   getenv("OFFSITE_DRAFT_BACKEND", "memory"),
		SessionIdleTTL: getdur("OFFSITE_SESSION_IDLE_TTL", 4*time.Hour),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitlist(v string) []string {
	if v == "" {
		return nil
	}
	out := pstrings.DedupeAndTrim(strings.Split(v, ","))
	if len(out) == 0 {
		return nil
	}
	return out
}
