package app

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/internal/agents"
	"github.com/JaimeStill/agent-meet/internal/forms"
	"github.com/JaimeStill/agent-meet/internal/queries"
	"github.com/JaimeStill/agent-meet/internal/remote"
	"github.com/JaimeStill/agent-meet/internal/session"
	"github.com/JaimeStill/agent-meet/pkg/cache"
	"github.com/JaimeStill/agent-meet/pkg/pagination"
)

const (
	modeEdit   = "edit"
	modeRemove = "remove"
)

// agentEntry is an open agent form plus where it navigates when it closes.
type agentEntry struct {
	*forms.AgentForm
	next *pending
}

type agentListData struct {
	shell
	Agents []agents.Agent
	Search string
	Pager  pager
}

type agentNewData struct {
	shell
	Form *formView[agents.Draft]
}

type agentDetailData struct {
	shell
	Agent        *agents.Agent
	Instructions template.HTML
	Mode         string
	Form         *formView[agents.Draft]
}

func agentPath(id string) string { return "/agents/" + id }

// openAgentForm returns the open agent form at key, creating it when absent.
// done maps the created id ("" after an update) to the page shown on success.
func (a *App) openAgentForm(s *session.Session, key, id string, initial agents.Draft, done func(created string) string, cancelled string) *agentEntry {
	scope := s.Token
	return forms.Open(a.forms, scope, key, func() *agentEntry {
		next := &pending{}
		f := forms.NewAgentForm(a.agents, a.sessionCache(s), forms.Options[agents.Draft]{
			InitialID: id,
			Initial:   initial,
			OnSuccess: func(created string) {
				a.forms.Close(scope, key)
				next.set(done(created))
			},
			OnCancel: func() {
				a.forms.Close(scope, key)
				next.set(cancelled)
			},
			Notify: func(msg string) {
				a.logger.Warn("agent form submit failed", "form", key, "message", msg)
			},
		})
		return &agentEntry{AgentForm: f, next: next}
	})
}

func (a *App) openNewAgentForm(s *session.Session) *agentEntry {
	return a.openAgentForm(s, forms.KeyAgentNew, "", agents.Draft{},
		func(created string) string { return agentPath(created) },
		"/agents",
	)
}

func (a *App) openEditAgentForm(s *session.Session, agent *agents.Agent) *agentEntry {
	id := agent.ID.String()
	return a.openAgentForm(s, forms.KeyAgentEdit(id), id, agents.DraftOf(agent),
		func(string) string { return agentPath(id) },
		agentPath(id),
	)
}

func agentDraft(r *http.Request) agents.Draft {
	return agents.Draft{
		Name:         r.PostFormValue("name"),
		Instructions: r.PostFormValue("instructions"),
	}
}

func (a *App) agentList(w http.ResponseWriter, r *http.Request, s *session.Session) {
	q := r.URL.Query()
	page := pagination.PageRequestFromQuery(q, a.pagination)
	filters := agents.FiltersFromQuery(q)

	result, err := queries.AgentPage(r.Context(), a.sessionCache(s), a.agents, page, filters)
	if err != nil {
		a.logger.Error("agent list failed", "error", err)
		a.renderError(w, s, http.StatusInternalServerError, "Error loading agents", err)
		return
	}

	data := agentListData{
		shell:  shell{Session: s},
		Agents: result.Data,
		Pager:  newPager("/agents", page.Values(), result.Page, result.TotalPages, result.Total),
	}
	if page.Search != nil {
		data.Search = *page.Search
	}
	a.render(w, http.StatusOK, viewAgents, "", data)
}

func (a *App) agentNew(w http.ResponseWriter, r *http.Request, s *session.Session) {
	entry := a.openNewAgentForm(s)
	a.renderAgentNew(w, s, entry, http.StatusOK, "")
}

func (a *App) renderAgentNew(w http.ResponseWriter, s *session.Session, entry *agentEntry, status int, notice string) {
	a.render(w, status, viewAgentNew, "", agentNewData{
		shell: shell{Session: s, Notice: notice},
		Form:  viewOf(entry.AgentForm, "/agents", "/agents/new/cancel"),
	})
}

func (a *App) agentCreate(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if !a.parseForm(w, r, s) {
		return
	}
	entry := a.openNewAgentForm(s)
	out, err := entry.Submit(r.Context(), agentDraft(r))
	a.respond(w, r, s, out, err, entry.next, "/agents", func(status int, notice string) {
		a.renderAgentNew(w, s, entry, status, notice)
	})
}

func (a *App) agentNewCancel(w http.ResponseWriter, r *http.Request, s *session.Session) {
	entry, ok := forms.Lookup[*agentEntry](a.forms, s.Token, forms.KeyAgentNew)
	if !ok {
		redirect(w, r, "/agents")
		return
	}
	if err := entry.Cancel(); err != nil {
		a.renderAgentNew(w, s, entry, http.StatusConflict, "A submission is already in progress")
		return
	}
	redirect(w, r, entry.next.take("/agents"))
}

// loadAgent reads the agent at {id} through the session cache after
// hydrating it from a request-scoped prefetch. Read errors render the error
// view and return nil.
func (a *App) loadAgent(w http.ResponseWriter, r *http.Request, s *session.Session) (*agents.Agent, *cache.Cache, shell) {
	sh := shell{Session: s}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		a.renderError(w, s, http.StatusNotFound, "Error loading agent", agents.ErrNotFound)
		return nil, nil, sh
	}

	sc, state := a.hydrate(r.Context(), s, func(ctx context.Context, c *cache.Cache) error {
		_, err := queries.Agent(ctx, c, a.agents, id)
		return err
	})
	sh.State = state

	agent, err := queries.Agent(r.Context(), sc, a.agents, id)
	if err != nil {
		a.renderReadError(w, s, "Error loading agent", agents.MapHTTPStatus(err), err)
		return nil, nil, sh
	}
	return agent, sc, sh
}

func (a *App) renderReadError(w http.ResponseWriter, s *session.Session, heading string, status int, err error) {
	if status != http.StatusNotFound {
		a.logger.Error("read failed", "heading", heading, "error", err)
		status = http.StatusInternalServerError
	}
	a.renderError(w, s, status, heading, err)
}

func readMode(r *http.Request) string {
	switch m := r.URL.Query().Get("mode"); m {
	case modeEdit, modeRemove:
		return m
	default:
		return ""
	}
}

func (a *App) agentDetail(w http.ResponseWriter, r *http.Request, s *session.Session) {
	agent, _, sh := a.loadAgent(w, r, s)
	if agent == nil {
		return
	}

	mode := readMode(r)
	var entry *agentEntry
	if mode == modeEdit {
		entry = a.openEditAgentForm(s, agent)
	}
	a.renderAgentDetail(w, sh, agent, mode, entry, http.StatusOK)
}

func (a *App) renderAgentDetail(w http.ResponseWriter, sh shell, agent *agents.Agent, mode string, entry *agentEntry, status int) {
	data := agentDetailData{
		shell:        sh,
		Agent:        agent,
		Instructions: a.renderMarkdown(agent.Instructions),
		Mode:         mode,
	}
	if entry != nil {
		id := agent.ID.String()
		data.Form = viewOf(entry.AgentForm, agentPath(id), agentPath(id)+"/cancel")
	}
	a.render(w, status, viewAgent, agent.Name, data)
}

func (a *App) agentUpdate(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if !a.parseForm(w, r, s) {
		return
	}
	agent, _, sh := a.loadAgent(w, r, s)
	if agent == nil {
		return
	}

	entry := a.openEditAgentForm(s, agent)
	out, err := entry.Submit(r.Context(), agentDraft(r))
	a.respond(w, r, s, out, err, entry.next, agentPath(agent.ID.String()), func(status int, notice string) {
		sh.Notice = notice
		a.renderAgentDetail(w, sh, agent, modeEdit, entry, status)
	})
}

func (a *App) agentEditCancel(w http.ResponseWriter, r *http.Request, s *session.Session) {
	id := r.PathValue("id")
	entry, ok := forms.Lookup[*agentEntry](a.forms, s.Token, forms.KeyAgentEdit(id))
	if !ok {
		redirect(w, r, agentPath(id))
		return
	}
	if err := entry.Cancel(); err != nil {
		redirect(w, r, agentPath(id)+"?mode="+modeEdit)
		return
	}
	redirect(w, r, entry.next.take(agentPath(id)))
}

// agentRemove deletes the agent and its meetings, then marks every agent and
// meeting read stale before leaving for the list.
func (a *App) agentRemove(w http.ResponseWriter, r *http.Request, s *session.Session) {
	agent, sc, sh := a.loadAgent(w, r, s)
	if agent == nil {
		return
	}

	ctx := r.Context()
	id := agent.ID.String()
	if err := a.agents.Remove(ctx, agent.ID); err != nil {
		if errors.Is(err, agents.ErrNotFound) {
			a.renderError(w, s, http.StatusNotFound, "Error removing agent", err)
			return
		}
		sh.Notice = remote.Message(err)
		a.renderAgentDetail(w, sh, agent, modeRemove, nil, http.StatusOK)
		return
	}

	a.forms.Close(s.Token, forms.KeyAgentEdit(id))
	if err := queries.InvalidateAgent(ctx, sc, id); err != nil {
		a.logger.Error("invalidate agent failed", "error", err)
	}
	if _, err := sc.Invalidate(ctx, cache.Key{Entity: queries.Meetings}); err != nil {
		a.logger.Error("invalidate meetings failed", "error", err)
	}
	redirect(w, r, "/agents")
}
