package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/internal/agents"
	"github.com/JaimeStill/agent-meet/internal/config"
	"github.com/JaimeStill/agent-meet/internal/forms"
	"github.com/JaimeStill/agent-meet/internal/meetings"
	"github.com/JaimeStill/agent-meet/internal/session"
	"github.com/JaimeStill/agent-meet/pkg/cache"
	"github.com/JaimeStill/agent-meet/pkg/pagination"
	"github.com/JaimeStill/agent-meet/web/app"
)

type agentStore struct {
	mu      sync.Mutex
	items   map[uuid.UUID]agents.Agent
	order   []uuid.UUID
	creates int
	gets    int
	lists   int
	getErr  error
}

func newAgentStore() *agentStore {
	return &agentStore{items: make(map[uuid.UUID]agents.Agent)}
}

func (s *agentStore) add(name, instructions string) agents.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := agents.Agent{ID: uuid.New(), Name: name, Instructions: instructions, UpdatedAt: time.Now()}
	s.items[a.ID] = a
	s.order = append(s.order, a.ID)
	return a
}

func (s *agentStore) Create(_ context.Context, cmd agents.Command) (*agents.Agent, error) {
	s.mu.Lock()
	s.creates++
	s.mu.Unlock()
	a := s.add(cmd.Name, cmd.Instructions)
	return &a, nil
}

func (s *agentStore) Update(_ context.Context, id uuid.UUID, cmd agents.Command) (*agents.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, agents.ErrNotFound
	}
	a.Name, a.Instructions = cmd.Name, cmd.Instructions
	s.items[id] = a
	return &a, nil
}

func (s *agentStore) Remove(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return agents.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *agentStore) GetOne(_ context.Context, id uuid.UUID) (*agents.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	a, ok := s.items[id]
	if !ok {
		return nil, agents.ErrNotFound
	}
	return &a, nil
}

func (s *agentStore) GetMany(_ context.Context, page pagination.PageRequest, _ agents.Filters) (*pagination.PageResult[agents.Agent], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	var data []agents.Agent
	for _, id := range s.order {
		if a, ok := s.items[id]; ok {
			data = append(data, a)
		}
	}
	r := pagination.NewPageResult(data, len(data), page.Page, page.PageSize)
	return &r, nil
}

func (s *agentStore) counts() (creates, gets, lists int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates, s.gets, s.lists
}

type meetingStore struct {
	agents    *agentStore
	mu        sync.Mutex
	items     map[uuid.UUID]meetings.Meeting
	updates   []uuid.UUID
	lists     int
	updateErr error
}

func (s *meetingStore) add(name string, agent agents.Agent) meetings.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := meetings.Meeting{
		ID:        uuid.New(),
		Name:      name,
		AgentID:   agent.ID,
		AgentName: agent.Name,
		Status:    meetings.StatusUpcoming,
		CreatedAt: time.Now(),
	}
	s.items[m.ID] = m
	return m
}

func (s *meetingStore) Create(ctx context.Context, cmd meetings.Command) (*meetings.Meeting, error) {
	a, err := s.agents.GetOne(ctx, cmd.AgentID)
	if err != nil {
		return nil, meetings.ErrAgentNotFound
	}
	m := s.add(cmd.Name, *a)
	return &m, nil
}

func (s *meetingStore) Update(_ context.Context, id uuid.UUID, cmd meetings.Command) (*meetings.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, id)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	m, ok := s.items[id]
	if !ok {
		return nil, meetings.ErrNotFound
	}
	m.Name = cmd.Name
	if cmd.Status != "" {
		m.Status = cmd.Status
	}
	s.items[id] = m
	return &m, nil
}

func (s *meetingStore) Remove(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return meetings.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *meetingStore) GetOne(_ context.Context, id uuid.UUID) (*meetings.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	if !ok {
		return nil, meetings.ErrNotFound
	}
	return &m, nil
}

func (s *meetingStore) GetMany(_ context.Context, page pagination.PageRequest, _ meetings.Filters) (*pagination.PageResult[meetings.Meeting], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	data := make([]meetings.Meeting, 0, len(s.items))
	for _, m := range s.items {
		data = append(data, m)
	}
	r := pagination.NewPageResult(data, len(data), page.Page, page.PageSize)
	return &r, nil
}

func (s *meetingStore) listCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists
}

type harness struct {
	handler  http.Handler
	agents   *agentStore
	meetings *meetingStore
	registry *forms.Registry
	sessions session.System
	token    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	as := newAgentStore()
	ms := &meetingStore{agents: as, items: make(map[uuid.UUID]meetings.Meeting)}

	sessions := session.New(&config.SessionConfig{CookieName: "agent_meet_session", TTL: "1h"}, session.NewMemoryStore(), logger)
	registry := forms.NewRegistry(time.Hour, logger)

	a, err := app.New(
		&config.AppConfig{Title: "Agent Meet", MaxFormSize: "64KB"},
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		app.Systems{Agents: as, Meetings: ms},
		sessions,
		cache.NewMemoryProvider(time.Hour, cache.Options{}),
		registry,
		logger,
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s, err := sessions.Create(context.Background(), "Ada")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	return &harness{
		handler:  a.Handler(),
		agents:   as,
		meetings: ms,
		registry: registry,
		sessions: sessions,
		token:    s.Token,
	}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *harness) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", w.Code, want, w.Body.String())
	}
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	expectStatus(t, w, http.StatusSeeOther)
	if got := w.Header().Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestGate_RedirectsWithoutSession(t *testing.T) {
	h := newHarness(t)
	h.token = ""

	tests := []struct {
		path string
		want string
	}{
		{"/", "/sign-in"},
		{"/agents", "/sign-in?next=%2Fagents"},
		{"/meetings/new", "/sign-in?next=%2Fmeetings%2Fnew"},
		{"/agents?page=2", "/sign-in?next=%2Fagents%3Fpage%3D2"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			expectRedirect(t, h.get(tt.path), tt.want)
		})
	}
}

func TestSignIn(t *testing.T) {
	h := newHarness(t)
	h.token = ""

	w := h.post("/sign-in", url.Values{"name": {"Grace"}, "next": {"/agents"}})
	expectRedirect(t, w, "/agents")

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "agent_meet_session" || cookies[0].Value == "" {
		t.Fatalf("cookies = %v, want one session cookie", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	req.AddCookie(cookies[0])
	expectStatus(t, h.do(req), http.StatusOK)
}

func TestSignIn_Errors(t *testing.T) {
	h := newHarness(t)
	h.token = ""

	w := h.post("/sign-in", url.Values{"name": {"  "}})
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if !strings.Contains(w.Body.String(), "Name is required") {
		t.Error("body missing name error")
	}

	w = h.post("/sign-in", url.Values{"name": {"Grace"}, "next": {"//evil.example"}})
	expectRedirect(t, w, "/")
}

func TestSignOut_DropsForms(t *testing.T) {
	h := newHarness(t)

	expectStatus(t, h.get("/agents/new"), http.StatusOK)
	if n := h.registry.Len(); n != 1 {
		t.Fatalf("registry.Len() = %d, want 1", n)
	}

	expectRedirect(t, h.post("/sign-out", nil), "/sign-in")
	if n := h.registry.Len(); n != 0 {
		t.Errorf("registry.Len() after sign out = %d, want 0", n)
	}
	expectRedirect(t, h.get("/agents"), "/sign-in?next=%2Fagents")
}

func TestHome(t *testing.T) {
	h := newHarness(t)
	tutor := h.agents.add("Math tutor", "")
	h.meetings.add("Algebra review", tutor)

	w := h.get("/")
	expectStatus(t, w, http.StatusOK)

	body := w.Body.String()
	for _, want := range []string{"Welcome, Ada", "Algebra review", `id="query-state"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestAgentCreate_ValidationBlocksRemoteCall(t *testing.T) {
	h := newHarness(t)

	w := h.post("/agents", url.Values{"name": {""}, "instructions": {"abc"}})
	expectStatus(t, w, http.StatusUnprocessableEntity)

	body := w.Body.String()
	if !strings.Contains(body, agents.MsgNameRequired) {
		t.Error("body missing name error")
	}
	if !strings.Contains(body, ">abc</textarea>") {
		t.Error("instructions not retained")
	}
	if creates, _, _ := h.agents.counts(); creates != 0 {
		t.Errorf("creates = %d, want 0", creates)
	}
}

func TestAgentCreate_InvalidatesList(t *testing.T) {
	h := newHarness(t)

	expectStatus(t, h.get("/agents"), http.StatusOK)
	expectStatus(t, h.get("/agents"), http.StatusOK)
	if _, _, lists := h.agents.counts(); lists != 1 {
		t.Fatalf("lists before create = %d, want 1", lists)
	}

	w := h.post("/agents", url.Values{"name": {"Math tutor"}})
	expectStatus(t, w, http.StatusSeeOther)
	if !strings.HasPrefix(w.Header().Get("Location"), "/agents/") {
		t.Errorf("Location = %q, want /agents/<id>", w.Header().Get("Location"))
	}
	if creates, _, _ := h.agents.counts(); creates != 1 {
		t.Errorf("creates = %d, want 1", creates)
	}

	w = h.get("/agents")
	expectStatus(t, w, http.StatusOK)
	if _, _, lists := h.agents.counts(); lists != 2 {
		t.Errorf("lists after create = %d, want 2", lists)
	}
	if !strings.Contains(w.Body.String(), "Math tutor") {
		t.Error("list missing created agent")
	}
	if n := h.registry.Len(); n != 0 {
		t.Errorf("registry.Len() = %d, want 0 after success", n)
	}
}

func TestAgentNew_Cancel(t *testing.T) {
	h := newHarness(t)

	expectStatus(t, h.get("/agents/new"), http.StatusOK)
	expectRedirect(t, h.post("/agents/new/cancel", nil), "/agents")
	if n := h.registry.Len(); n != 0 {
		t.Errorf("registry.Len() = %d, want 0", n)
	}
}

func TestAgentDetail(t *testing.T) {
	h := newHarness(t)
	a := h.agents.add("Math tutor", "Explain **step by step**.")

	w := h.get("/agents/" + a.ID.String())
	expectStatus(t, w, http.StatusOK)

	body := w.Body.String()
	for _, want := range []string{
		"My Agents</a> › Math tutor",
		"<strong>step by step</strong>",
		`<script type="application/json" id="query-state">`,
		`"entity":"agents"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	if _, gets, _ := h.agents.counts(); gets != 1 {
		t.Errorf("gets = %d, want 1 (view read served from hydrated cache)", gets)
	}
}

func TestAgentDetail_Modes(t *testing.T) {
	h := newHarness(t)
	a := h.agents.add("Math tutor", "")
	path := "/agents/" + a.ID.String()

	tests := []struct {
		mode    string
		want    string
		notWant string
	}{
		{"", "Edit", `action="` + path + `/remove"`},
		{"edit", `name="name" value="Math tutor"`, `action="` + path + `/remove"`},
		{"remove", `action="` + path + `/remove"`, `name="instructions"`},
		{"bogus", "Edit", `name="instructions"`},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			w := h.get(path + "?mode=" + tt.mode)
			expectStatus(t, w, http.StatusOK)
			body := w.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
			if strings.Contains(body, tt.notWant) {
				t.Errorf("body contains %q", tt.notWant)
			}
		})
	}
}

func TestAgentDetail_ReadErrors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name   string
		path   string
		getErr error
		status int
	}{
		{"malformed id", "/agents/not-a-uuid", nil, http.StatusNotFound},
		{"missing", "/agents/" + uuid.NewString(), nil, http.StatusNotFound},
		{"remote failure", "/agents/" + uuid.NewString(), errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.agents.getErr = tt.getErr
			w := h.get(tt.path)
			expectStatus(t, w, tt.status)
			if !strings.Contains(w.Body.String(), "Error loading agent") {
				t.Error("body missing error heading")
			}
		})
	}
}

func TestAgentUpdate(t *testing.T) {
	h := newHarness(t)
	a := h.agents.add("Math tutor", "")
	path := "/agents/" + a.ID.String()

	w := h.post(path, url.Values{"name": {""}})
	expectStatus(t, w, http.StatusUnprocessableEntity)

	expectRedirect(t, h.post(path, url.Values{"name": {"Physics tutor"}}), path)

	w = h.get(path)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "Physics tutor") {
		t.Error("detail missing updated name")
	}
}

func TestAgentRemove(t *testing.T) {
	h := newHarness(t)
	a := h.agents.add("Math tutor", "")

	expectStatus(t, h.get("/agents"), http.StatusOK)
	expectRedirect(t, h.post("/agents/"+a.ID.String()+"/remove", nil), "/agents")

	w := h.get("/agents")
	expectStatus(t, w, http.StatusOK)
	if strings.Contains(w.Body.String(), "Math tutor") {
		t.Error("list still shows removed agent")
	}
}

func TestMeetingUpdate_RemoteErrorRetainsValues(t *testing.T) {
	h := newHarness(t)
	tutor := h.agents.add("Math tutor", "")
	m := h.meetings.add("Algebra review", tutor)
	h.meetings.updateErr = meetings.ErrAgentNotFound

	w := h.post("/meetings/"+m.ID.String(), url.Values{
		"name":     {"Geometry review"},
		"agent_id": {tutor.ID.String()},
		"status":   {"active"},
	})
	expectStatus(t, w, http.StatusOK)

	body := w.Body.String()
	if !strings.Contains(body, "Agent not found") {
		t.Error("body missing remote error message")
	}
	if !strings.Contains(body, `value="Geometry review"`) {
		t.Error("posted name not retained")
	}
	if len(h.meetings.updates) != 1 || h.meetings.updates[0] != m.ID {
		t.Errorf("updates = %v, want [%s]", h.meetings.updates, m.ID)
	}
}

func TestMeetingUpdate_InvalidatesList(t *testing.T) {
	h := newHarness(t)
	tutor := h.agents.add("Math tutor", "")
	m := h.meetings.add("Algebra review", tutor)
	path := "/meetings/" + m.ID.String()

	expectStatus(t, h.get("/meetings"), http.StatusOK)
	expectStatus(t, h.get("/meetings"), http.StatusOK)
	if n := h.meetings.listCount(); n != 1 {
		t.Fatalf("lists before update = %d, want 1", n)
	}

	expectRedirect(t, h.post(path, url.Values{
		"name":     {"Geometry review"},
		"agent_id": {tutor.ID.String()},
	}), path)

	w := h.get("/meetings")
	expectStatus(t, w, http.StatusOK)
	if n := h.meetings.listCount(); n != 2 {
		t.Errorf("lists after update = %d, want 2", n)
	}
	if !strings.Contains(w.Body.String(), "Geometry review") {
		t.Error("list missing updated name")
	}
}

func TestMeetingCreate_Validation(t *testing.T) {
	h := newHarness(t)

	w := h.post("/meetings", url.Values{"name": {"Standup"}})
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if !strings.Contains(w.Body.String(), meetings.MsgAgentRequired) {
		t.Error("body missing agent error")
	}
}

func TestMeetingDialog(t *testing.T) {
	h := newHarness(t)
	h.agents.add("Math tutor", "")

	expectStatus(t, h.get("/meetings/new"), http.StatusOK)

	expectRedirect(t, h.post("/meetings/new/dialog", url.Values{"name": {"Standup"}}), "/meetings/new")

	w := h.get("/meetings/new")
	expectStatus(t, w, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "<dialog") {
		t.Fatal("agent dialog not open")
	}
	if !strings.Contains(body, `value="Standup"`) {
		t.Error("meeting draft not kept while dialog opened")
	}
	if strings.Contains(body, meetings.MsgAgentRequired) {
		t.Error("opening the dialog validated the meeting form")
	}

	w = h.post("/meetings/new/agents", url.Values{"name": {""}})
	expectStatus(t, w, http.StatusUnprocessableEntity)

	expectRedirect(t, h.post("/meetings/new/agents", url.Values{"name": {"Helper"}}), "/meetings/new")

	w = h.get("/meetings/new")
	expectStatus(t, w, http.StatusOK)
	body = w.Body.String()
	if strings.Contains(body, "<dialog") {
		t.Error("agent dialog still open")
	}
	if !strings.Contains(body, ">Helper</option>") {
		t.Error("created agent not offered")
	}
	if strings.Contains(body, "selected>Helper") {
		t.Error("created agent auto-selected")
	}
	if !strings.Contains(body, `value="Standup"`) {
		t.Error("meeting draft lost after dialog")
	}
}

func TestMeetingDialog_Cancel(t *testing.T) {
	h := newHarness(t)

	expectRedirect(t, h.post("/meetings/new/dialog", url.Values{"name": {"Standup"}}), "/meetings/new")
	expectRedirect(t, h.post("/meetings/new/agents/cancel", nil), "/meetings/new")

	w := h.get("/meetings/new")
	expectStatus(t, w, http.StatusOK)
	if strings.Contains(w.Body.String(), "<dialog") {
		t.Error("agent dialog still open")
	}
}

func TestMeetingRemove(t *testing.T) {
	h := newHarness(t)
	tutor := h.agents.add("Math tutor", "")
	m := h.meetings.add("Algebra review", tutor)

	expectRedirect(t, h.post("/meetings/"+m.ID.String()+"/remove", nil), "/meetings")
	expectStatus(t, h.get("/meetings/"+m.ID.String()), http.StatusNotFound)
}

func TestNotFoundAndStatic(t *testing.T) {
	h := newHarness(t)

	expectStatus(t, h.get("/nowhere"), http.StatusNotFound)

	w := h.get("/static/app.css")
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q, want text/css", ct)
	}
}
