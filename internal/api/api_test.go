package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/internal/agents"
	"github.com/JaimeStill/agent-meet/internal/api"
	"github.com/JaimeStill/agent-meet/internal/config"
	"github.com/JaimeStill/agent-meet/internal/infrastructure"
	"github.com/JaimeStill/agent-meet/internal/meetings"
	"github.com/JaimeStill/agent-meet/internal/session"
	"github.com/JaimeStill/agent-meet/pkg/logging"
	"github.com/JaimeStill/agent-meet/pkg/module"
	"github.com/JaimeStill/agent-meet/pkg/pagination"
)

type stubAgents struct{ agents.System }

func (stubAgents) GetOne(_ context.Context, id uuid.UUID) (*agents.Agent, error) {
	return &agents.Agent{ID: id, Name: "Coach"}, nil
}

type stubMeetings struct{ meetings.System }

func (stubMeetings) GetMany(_ context.Context, page pagination.PageRequest, _ meetings.Filters) (*pagination.PageResult[meetings.Meeting], error) {
	r := pagination.NewPageResult([]meetings.Meeting{}, 0, page.Page, page.PageSize)
	return &r, nil
}

func newRouter(t *testing.T) (*module.Router, *session.Session) {
	t.Helper()

	cfg := &config.Config{}
	cfg.API.BasePath = "/api"
	cfg.API.CORS.Enabled = true
	cfg.API.CORS.Origins = []string{"http://localhost:3000"}
	cfg.App.MaxFormSize = "1MB"
	cfg.Session = config.SessionConfig{CookieName: "sid", TTL: "1h"}
	cfg.API.Pagination = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

	logger := logging.Discard()
	sessions := session.New(&cfg.Session, session.NewMemoryStore(), logger)
	s, err := sessions.Create(context.Background(), "Ada")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	runtime := api.NewRuntime(cfg, &infrastructure.Infrastructure{Logger: logger, Sessions: sessions})
	domain := &api.Domain{Agents: stubAgents{}, Meetings: stubMeetings{}}

	r := module.NewRouter()
	r.Mount(api.NewModule(cfg, runtime, domain))
	return r, s
}

func TestModule_RequiresSession(t *testing.T) {
	r, s := newRouter(t)
	path := "/api/agents/" + uuid.NewString()

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"bad token", "nope", http.StatusUnauthorized},
		{"signed in", s.Token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestModule_Routes(t *testing.T) {
	r, s := newRouter(t)

	req := httptest.NewRequest("GET", "/api/meetings?status=active", nil)
	req.Header.Set("Authorization", "Bearer "+s.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestModule_Preflight(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest("OPTIONS", "/api/agents", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
