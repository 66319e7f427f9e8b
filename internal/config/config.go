package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// ErrMissingDatabaseURL is returned when no database DSN is configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// Config holds application configuration (DB, server, and search settings).
type Config struct {
	DatabaseURL       string
	ServerPort        string
	RedisURL          string // optional; empty disables caching
	UserAgent         string
	SearchTimeout     time.Duration // per-source request timeout
	SearchConcurrency int           // max sources queried at once
}

// Load builds config from environment variables.
// If DATABASE_URL is not set, Load tries to load .env.local and .env first.
// DATABASE_URL is required; everything else has defaults.
func Load() (*Config, error) {
	if os.Getenv("DATABASE_URL") == "" {
		loadEnvFiles()
	}
	c := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ServerPort:  os.Getenv("SERVER_PORT"),
		RedisURL:    os.Getenv("REDIS_URL"),
		UserAgent:   os.Getenv("SEARCH_USER_AGENT"),
	}
	if s := os.Getenv("SEARCH_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			c.SearchTimeout = d
		}
	}
	if s := os.Getenv("SEARCH_CONCURRENCY"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			c.SearchConcurrency = n
		}
	}
	c.applyDefaults()
	if c.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.ServerPort == "" {
		c.ServerPort = "8080"
	}
	if c.UserAgent == "" {
		c.UserAgent = "Metaseek/1.0"
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = 10 * time.Second
	}
	if c.SearchConcurrency <= 0 {
		c.SearchConcurrency = 8
	}
}
