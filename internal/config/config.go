package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration values.
type Config struct {
	Secret      string
	DatabaseURL string
	HTTPPort    string
	TokenTTL    time.Duration
	RedisAddr   string
	KafkaBroker string
	KafkaTopic  string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		secret = "dev_secret"
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		host := envOr("DB_HOST", "localhost")
		user := envOr("DB_USER", "postgres")
		dbPort := envOr("DB_PORT", "5432")
		name := envOr("DB_NAME", "pharmacy")
		password := os.Getenv("DB_PASSWORD")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, dbPort, name)
	}

	ttl := 7 * 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL_DAYS"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			ttl = time.Duration(days) * 24 * time.Hour
		}
	}

	topic := envOr("KAFKA_TOPIC", "pharmacy.sales")

	return Config{
		Secret:      secret,
		DatabaseURL: dsn,
		HTTPPort:    port,
		TokenTTL:    ttl,
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		KafkaTopic:  topic,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
