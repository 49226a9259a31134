package api

import (
	"net/http"

	"github.com/JaimeStill/agent-meet/internal/agents"
	"github.com/JaimeStill/agent-meet/internal/meetings"
	"github.com/JaimeStill/agent-meet/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, runtime *Runtime, domain *Domain) {
	agentsHandler := agents.NewHandler(domain.Agents, runtime.Logger, runtime.Pagination)
	meetingsHandler := meetings.NewHandler(domain.Meetings, runtime.Logger, runtime.Pagination)

	routes.Register(
		mux,
		agentsHandler.Routes(),
		meetingsHandler.Routes(),
	)
}
