package main

import (
	"net/http"

	"github.com/JaimeStill/agent-meet/internal/api"
	"github.com/JaimeStill/agent-meet/internal/config"
	"github.com/JaimeStill/agent-meet/internal/forms"
	"github.com/JaimeStill/agent-meet/internal/infrastructure"
	"github.com/JaimeStill/agent-meet/internal/remote"
	"github.com/JaimeStill/agent-meet/pkg/module"
	"github.com/JaimeStill/agent-meet/web/app"
)

// Modules holds the mounted JSON API and the dashboard handler.
type Modules struct {
	API *module.Module
	App *app.App
}

// NewModules builds the API over PostgreSQL and the dashboard over either
// the in-process domain or, when app.api_url is set, a remote API.
func NewModules(infra *infrastructure.Infrastructure, registry *forms.Registry, cfg *config.Config) (*Modules, error) {
	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(runtime)

	systems := app.Systems{
		Agents:   domain.Agents,
		Meetings: domain.Meetings,
	}

	if cfg.App.APIURL != "" {
		client, err := remote.New(remote.Config{
			BaseURL: cfg.App.APIURL,
			Timeout: cfg.App.APITimeoutDuration(),
			Logger:  infra.Logger,
		})
		if err != nil {
			return nil, err
		}
		systems = app.Systems{
			Agents:   client.Agents(),
			Meetings: client.Meetings(),
		}
	}

	dashboard, err := app.New(
		&cfg.App,
		cfg.API.Pagination,
		systems,
		infra.Sessions,
		infra.Cache,
		registry,
		infra.Logger,
	)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: api.NewModule(cfg, runtime, domain),
		App: dashboard,
	}, nil
}

// Mount registers the API under its base path and the dashboard as the
// catch-all handler.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.HandleNativeHandler("/", m.App.Handler())
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	router.HandleNativeHandler("GET /events", infra.Events)

	return router
}
