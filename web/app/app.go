// Package app provides the server-rendered dashboard with embedded templates
// and assets. Every page is session-gated and reads through the session's
// query cache.
package app

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/JaimeStill/agent-meet/internal/agents"
	"github.com/JaimeStill/agent-meet/internal/config"
	"github.com/JaimeStill/agent-meet/internal/forms"
	"github.com/JaimeStill/agent-meet/internal/meetings"
	"github.com/JaimeStill/agent-meet/internal/session"
	"github.com/JaimeStill/agent-meet/pkg/cache"
	"github.com/JaimeStill/agent-meet/pkg/middleware"
	"github.com/JaimeStill/agent-meet/pkg/pagination"
	"github.com/JaimeStill/agent-meet/pkg/web"
)

//go:embed server/layouts/*.html
var layoutFS embed.FS

//go:embed server/views/*.html
var viewFS embed.FS

//go:embed static/*
var staticFS embed.FS

const layout = "app.html"

var (
	viewHome       = web.ViewDef{Template: "home.html", Title: "Home", Bundle: "app"}
	viewSignIn     = web.ViewDef{Template: "sign-in.html", Title: "Sign in", Bundle: "app"}
	viewAgents     = web.ViewDef{Template: "agents.html", Title: "My Agents", Bundle: "app"}
	viewAgentNew   = web.ViewDef{Template: "agent-new.html", Title: "New Agent", Bundle: "app"}
	viewAgent      = web.ViewDef{Template: "agent.html", Title: "Agent", Bundle: "app"}
	viewMeetings   = web.ViewDef{Template: "meetings.html", Title: "My Meetings", Bundle: "app"}
	viewMeetingNew = web.ViewDef{Template: "meeting-new.html", Title: "New Meeting", Bundle: "app"}
	viewMeeting    = web.ViewDef{Template: "meeting.html", Title: "Meeting", Bundle: "app"}
	viewError      = web.ViewDef{Template: "error.html", Title: "Error", Bundle: "app"}
	viewNotFound   = web.ViewDef{Template: "404.html", Title: "Not Found", Bundle: "app"}
)

var views = []web.ViewDef{
	viewHome,
	viewSignIn,
	viewAgents,
	viewAgentNew,
	viewAgent,
	viewMeetings,
	viewMeetingNew,
	viewMeeting,
	viewError,
	viewNotFound,
}

// Systems are the remote operations the dashboard calls. They are either the
// in-process domain systems or the HTTP client against a remote API.
type Systems struct {
	Agents   agents.System
	Meetings meetings.System
}

// App serves the dashboard.
type App struct {
	title      string
	templates  *web.TemplateSet
	pagination pagination.Config
	agents     agents.System
	meetings   meetings.System
	sessions   session.System
	caches     cache.Provider
	forms      *forms.Registry
	markdown   goldmark.Markdown
	logger     *slog.Logger
	handler    http.Handler
}

// New creates the dashboard. Open forms of a session are dropped when the
// session is revoked.
func New(
	cfg *config.AppConfig,
	pag pagination.Config,
	sys Systems,
	sessions session.System,
	caches cache.Provider,
	registry *forms.Registry,
	logger *slog.Logger,
) (*App, error) {
	if sys.Agents == nil || sys.Meetings == nil {
		return nil, fmt.Errorf("app requires agent and meeting systems")
	}

	a := &App{
		title:      cfg.Title,
		pagination: pag,
		agents:     sys.Agents,
		meetings:   sys.Meetings,
		sessions:   sessions,
		caches:     caches,
		forms:      registry,
		markdown:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:     logger.With("module", "app"),
	}

	ts, err := web.NewTemplateSet(
		layoutFS,
		viewFS,
		"server/layouts/*.html",
		"server/views",
		"",
		views,
		a.funcs(),
	)
	if err != nil {
		return nil, err
	}
	a.templates = ts

	router, err := a.buildRouter()
	if err != nil {
		return nil, err
	}

	mw := middleware.New()
	mw.Use(middleware.Logger(a.logger))
	mw.Use(middleware.MaxBytes(cfg.MaxFormSizeBytes()))
	a.handler = mw.Apply(router)

	sessions.OnRevoke(func(_ context.Context, token string) {
		registry.DropScope(token)
	})

	return a, nil
}

// Handler returns the dashboard handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) funcs() template.FuncMap {
	return template.FuncMap{
		"appTitle": func() string { return a.title },
		"markdown": a.renderMarkdown,
		"selected": func(x, y string) bool { return x == y },
	}
}

func (a *App) buildRouter() (http.Handler, error) {
	r := web.NewRouter()
	r.SetFallback(a.templates.ErrorHandler(layout, viewNotFound, http.StatusNotFound))

	static, err := web.Static(staticFS, "static", "/static/")
	if err != nil {
		return nil, err
	}
	r.Handle("GET /static/", static)

	r.HandleFunc("GET /sign-in", a.signInPage)
	r.HandleFunc("POST /sign-in", a.signIn)
	r.HandleFunc("POST /sign-out", a.signOut)

	r.HandleFunc("GET /{$}", a.gate(a.home))

	r.HandleFunc("GET /agents", a.gate(a.agentList))
	r.HandleFunc("POST /agents", a.gate(a.agentCreate))
	r.HandleFunc("GET /agents/new", a.gate(a.agentNew))
	r.HandleFunc("POST /agents/new/cancel", a.gate(a.agentNewCancel))
	r.HandleFunc("GET /agents/{id}", a.gate(a.agentDetail))
	r.HandleFunc("POST /agents/{id}", a.gate(a.agentUpdate))
	r.HandleFunc("POST /agents/{id}/cancel", a.gate(a.agentEditCancel))
	r.HandleFunc("POST /agents/{id}/remove", a.gate(a.agentRemove))

	r.HandleFunc("GET /meetings", a.gate(a.meetingList))
	r.HandleFunc("POST /meetings", a.gate(a.meetingCreate))
	r.HandleFunc("GET /meetings/new", a.gate(a.meetingNew))
	r.HandleFunc("POST /meetings/new/cancel", a.gate(a.meetingNewCancel))
	r.HandleFunc("GET /meetings/{id}", a.gate(a.meetingDetail))
	r.HandleFunc("POST /meetings/{id}", a.gate(a.meetingUpdate))
	r.HandleFunc("POST /meetings/{id}/cancel", a.gate(a.meetingEditCancel))
	r.HandleFunc("POST /meetings/{id}/remove", a.gate(a.meetingRemove))

	r.HandleFunc("POST /meetings/{id}/dialog", a.gate(a.dialogOpen))
	r.HandleFunc("POST /meetings/{id}/agents", a.gate(a.dialogSubmit))
	r.HandleFunc("POST /meetings/{id}/agents/cancel", a.gate(a.dialogCancel))

	return r, nil
}
