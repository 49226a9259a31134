package redisdb

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config contains redis connection configuration. An empty Addr disables redis
// and callers fall back to in-memory stores.
type Config struct {
	Addr        string `toml:"addr"`
	Password    string `toml:"password"`
	DB          int    `toml:"db"`
	Namespace   string `toml:"namespace"`
	DialTimeout string `toml:"dial_timeout"`
	PoolSize    int    `toml:"pool_size"`
}

// Env maps environment variable names for redis configuration.
type Env struct {
	Addr        string
	Password    string
	DB          string
	Namespace   string
	DialTimeout string
}

// Enabled reports whether a redis address is configured.
func (c *Config) Enabled() bool {
	return c.Addr != ""
}

func (c *Config) DialTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.DialTimeout)
	return d
}

func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

func (c *Config) Merge(overlay *Config) {
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.Namespace != "" {
		c.Namespace = overlay.Namespace
	}
	if overlay.DialTimeout != "" {
		c.DialTimeout = overlay.DialTimeout
	}
	if overlay.PoolSize != 0 {
		c.PoolSize = overlay.PoolSize
	}
}

func (c *Config) loadDefaults() {
	if c.Namespace == "" {
		c.Namespace = "agent-meet"
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
}

func (c *Config) loadEnv(env *Env) error {
	if env.Addr != "" {
		if v := os.Getenv(env.Addr); v != "" {
			c.Addr = v
		}
	}
	if env.Password != "" {
		if v := os.Getenv(env.Password); v != "" {
			c.Password = v
		}
	}
	if env.DB != "" {
		if v := os.Getenv(env.DB); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", env.DB, err)
			}
			c.DB = n
		}
	}
	if env.Namespace != "" {
		if v := os.Getenv(env.Namespace); v != "" {
			c.Namespace = v
		}
	}
	if env.DialTimeout != "" {
		if v := os.Getenv(env.DialTimeout); v != "" {
			c.DialTimeout = v
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.DB < 0 {
		return fmt.Errorf("db cannot be negative")
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("pool_size must be positive")
	}
	if _, err := time.ParseDuration(c.DialTimeout); err != nil {
		return fmt.Errorf("invalid dial_timeout: %w", err)
	}
	return nil
}
