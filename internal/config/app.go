package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/docker/go-units"
)

const (
	EnvAppAPIURL          = "APP_API_URL"
	EnvAppAPITimeout      = "APP_API_TIMEOUT"
	EnvAppMaxFormSize     = "APP_MAX_FORM_SIZE"
	EnvAppFormIdleTimeout = "APP_FORM_IDLE_TIMEOUT"
)

// AppConfig configures the server-rendered dashboard.
type AppConfig struct {
	Title string `toml:"title"`
	// APIURL switches the dashboard from in-process systems to the HTTP client
	// against a remote API when set.
	APIURL          string `toml:"api_url"`
	APITimeout      string `toml:"api_timeout"`
	MaxFormSize     string `toml:"max_form_size"`
	FormIdleTimeout string `toml:"form_idle_timeout"`
}

// MaxFormSizeBytes parses MaxFormSize (e.g. "1MB").
func (c *AppConfig) MaxFormSizeBytes() int64 {
	n, _ := units.FromHumanSize(c.MaxFormSize)
	return n
}

func (c *AppConfig) APITimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.APITimeout)
	return d
}

func (c *AppConfig) FormIdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.FormIdleTimeout)
	return d
}

func (c *AppConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *AppConfig) Merge(overlay *AppConfig) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.APIURL != "" {
		c.APIURL = overlay.APIURL
	}
	if overlay.APITimeout != "" {
		c.APITimeout = overlay.APITimeout
	}
	if overlay.MaxFormSize != "" {
		c.MaxFormSize = overlay.MaxFormSize
	}
	if overlay.FormIdleTimeout != "" {
		c.FormIdleTimeout = overlay.FormIdleTimeout
	}
}

func (c *AppConfig) loadDefaults() {
	if c.Title == "" {
		c.Title = "Agent Meet"
	}
	if c.APITimeout == "" {
		c.APITimeout = "10s"
	}
	if c.MaxFormSize == "" {
		c.MaxFormSize = "1MB"
	}
	if c.FormIdleTimeout == "" {
		c.FormIdleTimeout = "30m"
	}
}

func (c *AppConfig) loadEnv() {
	if v := os.Getenv(EnvAppAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvAppAPITimeout); v != "" {
		c.APITimeout = v
	}
	if v := os.Getenv(EnvAppMaxFormSize); v != "" {
		c.MaxFormSize = v
	}
	if v := os.Getenv(EnvAppFormIdleTimeout); v != "" {
		c.FormIdleTimeout = v
	}
}

func (c *AppConfig) validate() error {
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid api_url: %q", c.APIURL)
		}
	}
	if _, err := time.ParseDuration(c.APITimeout); err != nil {
		return fmt.Errorf("invalid api_timeout: %w", err)
	}
	if _, err := units.FromHumanSize(c.MaxFormSize); err != nil {
		return fmt.Errorf("invalid max_form_size: %w", err)
	}
	if _, err := time.ParseDuration(c.FormIdleTimeout); err != nil {
		return fmt.Errorf("invalid form_idle_timeout: %w", err)
	}
	return nil
}
