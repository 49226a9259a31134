package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvCacheStaleTime = "CACHE_STALE_TIME"
	EnvCacheTTL       = "CACHE_TTL"
)

// CacheConfig configures the session-scoped query cache.
type CacheConfig struct {
	// StaleTime is how long an entry is served before it is refetched.
	StaleTime string `toml:"stale_time"`
	// TTL bounds how long an idle scope survives, in redis or in memory.
	TTL string `toml:"ttl"`
}

func (c *CacheConfig) StaleTimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.StaleTime)
	return d
}

func (c *CacheConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

func (c *CacheConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *CacheConfig) Merge(overlay *CacheConfig) {
	if overlay.StaleTime != "" {
		c.StaleTime = overlay.StaleTime
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
}

func (c *CacheConfig) loadDefaults() {
	if c.StaleTime == "" {
		c.StaleTime = "30s"
	}
	if c.TTL == "" {
		c.TTL = "1h"
	}
}

func (c *CacheConfig) loadEnv() {
	if v := os.Getenv(EnvCacheStaleTime); v != "" {
		c.StaleTime = v
	}
	if v := os.Getenv(EnvCacheTTL); v != "" {
		c.TTL = v
	}
}

func (c *CacheConfig) validate() error {
	if _, err := time.ParseDuration(c.StaleTime); err != nil {
		return fmt.Errorf("invalid stale_time: %w", err)
	}
	if _, err := time.ParseDuration(c.TTL); err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	return nil
}
