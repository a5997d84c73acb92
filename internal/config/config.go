// Package config loads runtime configuration from environment variables.
// Required variables fail fast at startup; there are deliberately no
// baked-in defaults for secrets.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime settings. Strings for identifiers and secrets,
// ints for durations and costs.
type Config struct {
	Env            string // application environment (dev/test/prod)
	Port           string // HTTP port to listen on
	DBUser         string
	DBPass         string // optional
	DBHost         string
	DBPort         string
	DBName         string
	JWTSecret      string // signing key material; required, min length enforced by auth.NewSigner
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int

	PolishAPIKey   string // optional; empty selects the mock polisher
	PolishEndpoint string
	PolishModel    string // default model when a request names none
}

// Load reads configuration from the environment. Missing required
// variables abort the process.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		PolishAPIKey:   os.Getenv("POLISH_API_KEY"),
		PolishEndpoint: getenv("POLISH_ENDPOINT", "https://api-inference.huggingface.co/models"),
		PolishModel:    getenv("POLISH_MODEL", "google/flan-t5-base"),
	}
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
