package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvSessionCookieName = "SESSION_COOKIE_NAME"
	EnvSessionTTL        = "SESSION_TTL"
	EnvSessionSecure     = "SESSION_SECURE"
)

// SessionConfig configures session tokens and the cookie that carries them.
type SessionConfig struct {
	CookieName string `toml:"cookie_name"`
	TTL        string `toml:"ttl"`
	Secure     bool   `toml:"secure"`
}

func (c *SessionConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

func (c *SessionConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

func (c *SessionConfig) Merge(overlay *SessionConfig) {
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.Secure {
		c.Secure = true
	}
}

func (c *SessionConfig) loadDefaults() {
	if c.CookieName == "" {
		c.CookieName = "agent_meet_session"
	}
	if c.TTL == "" {
		c.TTL = "24h"
	}
}

func (c *SessionConfig) loadEnv() error {
	if v := os.Getenv(EnvSessionCookieName); v != "" {
		c.CookieName = v
	}
	if v := os.Getenv(EnvSessionTTL); v != "" {
		c.TTL = v
	}
	if v := os.Getenv(EnvSessionSecure); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSessionSecure, err)
		}
		c.Secure = secure
	}
	return nil
}

func (c *SessionConfig) validate() error {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return nil
}
