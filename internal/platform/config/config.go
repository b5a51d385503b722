// Package config builds process configuration from environment variables so
// main stays lean. Each concern gets its own struct; zero values mean "not
// configured" and the caller decides the fallback.
package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	SeedConfig    bool
}

// Verifier configures the external proof-verification capability.
type Verifier struct {
	// Mode is "mock" or "remote". Mock is the default for development.
	Mode     string
	Endpoint string
	Scope    string
}

// Redis configures the optional Redis-backed stores. Empty URL disables Redis.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Postgres configures the optional Postgres-backed stores. Empty DSN disables.
type Postgres struct {
	DSN string
}

// Kafka configures the audit event publisher. Empty brokers disables kafka
// publishing and audit events stay on the in-process store.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Fees carries the marketplace fee schedule used by the listing workflow.
type Fees struct {
	AirlineFee      float64
	PlatformFeeRate float64
}

// Workflow carries listing workflow tuning knobs.
type Workflow struct {
	ObservationDelay time.Duration
}

// Config aggregates all concerns for cmd/server wiring.
type Config struct {
	Server   Server
	Verifier Verifier
	Redis    Redis
	Postgres Postgres
	Kafka    Kafka
	Fees     Fees
	Workflow Workflow
}

// FromEnv reads the full configuration from the environment.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          envOr("SEATSWAP_ADDR", ":8080"),
			JWTSigningKey: envOr("SEATSWAP_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			SeedConfig:    os.Getenv("SEATSWAP_SEED_CONFIG") == "true",
		},
		Verifier: Verifier{
			Mode:     envOr("SEATSWAP_VERIFIER_MODE", "mock"),
			Endpoint: os.Getenv("SEATSWAP_VERIFIER_ENDPOINT"),
			Scope:    envOr("SEATSWAP_VERIFIER_SCOPE", "seatswap"),
		},
		Redis: Redis{
			URL:          os.Getenv("SEATSWAP_REDIS_URL"),
			PoolSize:     envIntOr("SEATSWAP_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("SEATSWAP_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("SEATSWAP_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("SEATSWAP_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("SEATSWAP_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: Postgres{
			DSN: os.Getenv("SEATSWAP_POSTGRES_DSN"),
		},
		Kafka: Kafka{
			Brokers: splitNonEmpty(os.Getenv("SEATSWAP_KAFKA_BROKERS")),
			Topic:   envOr("SEATSWAP_KAFKA_AUDIT_TOPIC", "seatswap.audit"),
		},
		Fees: Fees{
			AirlineFee:      envFloatOr("SEATSWAP_AIRLINE_FEE", 50),
			PlatformFeeRate: envFloatOr("SEATSWAP_PLATFORM_FEE_RATE", 0.025),
		},
		Workflow: Workflow{
			ObservationDelay: envDurationOr("SEATSWAP_OBSERVATION_DELAY", 2*time.Second),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if part := s[start:i]; part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}
