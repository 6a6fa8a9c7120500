// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the server needs to run.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// DBPath is the SQLite database file path.
	DBPath string

	// JWTSecret signs session tokens. Override in production.
	JWTSecret string

	// TokenTTL is how long issued tokens remain valid.
	TokenTTL time.Duration

	// OracleURL is the price feed endpoint. Empty selects the built-in
	// manual oracle (development only).
	OracleURL string

	// OracleFeed is the trusted feed identifier, e.g. "SOL/USD".
	OracleFeed string

	// OracleAPIKey is attached to feed requests when non-empty.
	OracleAPIKey string

	// QuoteMaxAge is the freshness window for oracle quotes.
	QuoteMaxAge time.Duration

	// SlippageBps is the acceptance band around the expected payment
	// amount, in basis points.
	SlippageBps int64

	// MaxParticipants caps group size. Zero disables the cap; the lower
	// bound of 2 always applies.
	MaxParticipants int

	// RequireFullPayment makes settlement fail until every participant
	// has paid.
	RequireFullPayment bool

	// FaucetEnabled exposes the dev funding endpoint.
	FaucetEnabled bool
}

// FromEnv builds a Config from environment variables, applying development
// defaults for anything unset.
func FromEnv() Config {
	return Config{
		Addr:               getEnv("ADDR", ":8080"),
		DBPath:             getEnv("DB_PATH", "./data/splitvault.db"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		TokenTTL:           getDuration("TOKEN_TTL", 24*time.Hour),
		OracleURL:          os.Getenv("ORACLE_URL"),
		OracleFeed:         getEnv("ORACLE_FEED", "SOL/USD"),
		OracleAPIKey:       os.Getenv("ORACLE_API_KEY"),
		QuoteMaxAge:        getDuration("QUOTE_MAX_AGE", 60*time.Second),
		SlippageBps:        getInt64("SLIPPAGE_BPS", 200),
		MaxParticipants:    int(getInt64("MAX_PARTICIPANTS", 10)),
		RequireFullPayment: os.Getenv("REQUIRE_FULL_PAYMENT") == "true",
		FaucetEnabled:      os.Getenv("FAUCET_ENABLED") == "true",
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
