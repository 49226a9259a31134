// Package api assembles the JSON API module mounted at the configured base path.
package api

import (
	"net/http"

	"github.com/JaimeStill/agent-meet/internal/config"
	"github.com/JaimeStill/agent-meet/internal/session"
	"github.com/JaimeStill/agent-meet/pkg/middleware"
	"github.com/JaimeStill/agent-meet/pkg/module"
)

// NewModule builds the API module over domain. Every route requires a session.
func NewModule(cfg *config.Config, runtime *Runtime, domain *Domain) *module.Module {
	mux := http.NewServeMux()
	registerRoutes(mux, runtime, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.MaxBytes(cfg.App.MaxFormSizeBytes()))
	m.Use(session.Require(runtime.Sessions, runtime.Logger))

	return m
}
