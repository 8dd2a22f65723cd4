package config

import (
	"os"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
}

// Postgres holds the connection settings for the establishment store.
type Postgres struct {
	URL string
}

// Redis holds the connection settings for the trade-resolution cache. An
// empty URL disables caching.
type Redis struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka holds the broker settings for the search telemetry stream. Empty
// brokers disable the stream sink.
type Kafka struct {
	Brokers []string
	Topic   string
}

// ExternalGateway holds the settings of the external company-matching API.
type ExternalGateway struct {
	BaseURL string
	APIKey  string
}

// Config is everything main needs to wire the service.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	Gateway  ExternalGateway
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("IMMERSION_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Config{
		Server: Server{
			Addr:          addr,
			JWTSigningKey: jwtSigningKey,
		},
		Postgres: Postgres{
			URL: os.Getenv("POSTGRES_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Brokers: brokers,
			Topic:   os.Getenv("KAFKA_SEARCHES_TOPIC"),
		},
		Gateway: ExternalGateway{
			BaseURL: os.Getenv("LBB_BASE_URL"),
			APIKey:  os.Getenv("LBB_API_KEY"),
		},
	}
}
