package config

import (
	"os"
	"strconv"
)

// Config — environment-derived settings for the service.
type Config struct {
	// MaxPlayers — room capacity; a room starts when it fills.
	MaxPlayers int
	// MinReady — distinct ready votes that force an early start.
	MinReady int

	ListenAddr  string
	RedisAddr   string
	DatabaseDSN string
	JWTSecret   string
}

func Load() *Config {
	return &Config{
		MaxPlayers: envInt("MATCHHUB_MAX_PLAYERS", 2),
		MinReady:   envInt("MATCHHUB_MIN_READY", 2),
		ListenAddr: envString("MATCHHUB_LISTEN_ADDR", ":8080"),
		RedisAddr:  envString("MATCHHUB_REDIS_ADDR", "localhost:6379"),
		DatabaseDSN: envString(
			"MATCHHUB_DATABASE_DSN",
			"user=postgres password=postgres dbname=matchhub sslmode=disable host=localhost port=5432",
		),
		JWTSecret: envString("MATCHHUB_JWT_SECRET", "your-secret-key"),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
