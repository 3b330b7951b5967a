package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr string

	Backend   string // redis | bigcache | ristretto
	Namespace string

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	IdleTimeout time.Duration
	BackendTTL  bool
	Debug       bool
}

// Load reads the demo configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		Backend:       getenv("SESSION_BACKEND", "bigcache"),
		Namespace:     getenv("SESSION_REGION", "demo"),
		RedisHost:     getenv("REDIS_HOST", "localhost"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	var err error
	if cfg.RedisPort, err = atoi("REDIS_PORT", 6379); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = atoi("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.IdleTimeout, err = duration("SESSION_IDLE_TIMEOUT", 20*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.BackendTTL, err = boolean("SESSION_BACKEND_TTL", false); err != nil {
		return Config{}, err
	}
	if cfg.Debug, err = boolean("DEBUG", false); err != nil {
		return Config{}, err
	}

	switch cfg.Backend {
	case "redis", "bigcache", "ristretto":
	default:
		return Config{}, fmt.Errorf("config: unknown SESSION_BACKEND %q", cfg.Backend)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func boolean(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}
