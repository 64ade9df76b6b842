// Package config loads service configuration from the environment, with a
// .env file picked up automatically when present. Every knob has a default
// so a bare `bonum-api` starts against a local SQLite file.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the binaries read from the environment.
type Config struct {
	HTTPAddr     string
	StoreDialect string // "sqlite" or "postgres"
	DatabaseURL  string // postgres DSN; ignored for sqlite
	SQLitePath   string

	RateBurst     int
	RatePerSecond int
	MaxBodyBytes  int64

	Version string
	Commit  string
}

// Load reads configuration from environment variables with defaults,
// loading .env from the current directory first if one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:      envOrDefault("HTTP_ADDR", ":8080"),
		StoreDialect:  envOrDefault("STORE_DIALECT", "sqlite"),
		DatabaseURL:   envOrDefault("DATABASE_URL", ""),
		SQLitePath:    envOrDefault("SQLITE_PATH", "bonum.db"),
		RateBurst:     envOrDefaultInt("RATE_BURST", 50),
		RatePerSecond: envOrDefaultInt("RATE_PER_SECOND", 25),
		MaxBodyBytes:  envOrDefaultInt64("MAX_BODY_BYTES", 8<<20),
		Version:       envOrDefault("VERSION", "dev"),
		Commit:        envOrDefault("COMMIT", "none"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid integer for %s: %q, using default %d", key, v, def)
			return def
		}
		return n
	}
	return def
}

func envOrDefaultInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("invalid integer for %s: %q, using default %d", key, v, def)
			return def
		}
		return n
	}
	return def
}
