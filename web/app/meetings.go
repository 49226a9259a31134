package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/internal/agents"
	"github.com/JaimeStill/agent-meet/internal/forms"
	"github.com/JaimeStill/agent-meet/internal/meetings"
	"github.com/JaimeStill/agent-meet/internal/queries"
	"github.com/JaimeStill/agent-meet/internal/remote"
	"github.com/JaimeStill/agent-meet/internal/session"
	"github.com/JaimeStill/agent-meet/pkg/cache"
	"github.com/JaimeStill/agent-meet/pkg/pagination"
)

// newOwner identifies the form of a meeting that does not exist yet.
const newOwner = "new"

type meetingEntry struct {
	*forms.MeetingForm
	next *pending
}

type meetingListData struct {
	shell
	Meetings []meetings.Meeting
	Agents   []agents.Agent
	Statuses []meetings.Status
	Search   string
	Status   string
	AgentID  string
	Pager    pager
}

type meetingData struct {
	shell
	// Meeting is nil on the new page.
	Meeting     *meetings.Meeting
	Mode        string
	Form        *formView[meetings.Draft]
	Agents      []agents.Agent
	AgentSearch string
	Statuses    []meetings.Status
	// Base is the path the nested agent dialog posts under.
	Base   string
	Dialog *formView[agents.Draft]
}

func meetingPath(id string) string { return "/meetings/" + id }

// meetingFormPath is where the meeting form of owner is shown.
func meetingFormPath(owner string) string {
	if owner == newOwner {
		return "/meetings/new"
	}
	return meetingPath(owner) + "?mode=" + modeEdit
}

func (a *App) openMeetingForm(s *session.Session, owner string, initial meetings.Draft, done func(created string) string, cancelled string) *meetingEntry {
	scope := s.Token
	id := ""
	key := forms.KeyMeetingNew
	if owner != newOwner {
		id = owner
		key = forms.KeyMeetingEdit(owner)
	}
	dialog := forms.KeyMeetingAgentDialog(owner)

	return forms.Open(a.forms, scope, key, func() *meetingEntry {
		next := &pending{}
		f := forms.NewMeetingForm(a.meetings, a.sessionCache(s), forms.Options[meetings.Draft]{
			InitialID: id,
			Initial:   initial,
			OnSuccess: func(created string) {
				a.forms.Close(scope, dialog)
				a.forms.Close(scope, key)
				next.set(done(created))
			},
			OnCancel: func() {
				a.forms.Close(scope, dialog)
				a.forms.Close(scope, key)
				next.set(cancelled)
			},
			Notify: func(msg string) {
				a.logger.Warn("meeting form submit failed", "form", key, "message", msg)
			},
		})
		return &meetingEntry{MeetingForm: f, next: next}
	})
}

func (a *App) openNewMeetingForm(s *session.Session) *meetingEntry {
	return a.openMeetingForm(s, newOwner, meetings.Draft{},
		func(created string) string { return meetingPath(created) },
		"/meetings",
	)
}

func (a *App) openEditMeetingForm(s *session.Session, m *meetings.Meeting) *meetingEntry {
	id := m.ID.String()
	return a.openMeetingForm(s, id, meetings.DraftOf(m),
		func(string) string { return meetingPath(id) },
		meetingPath(id),
	)
}

// openAgentDialog opens the nested agent form of the meeting form at owner.
// Closing it returns to the meeting form; the created agent is offered but
// not selected.
func (a *App) openAgentDialog(s *session.Session, owner string) *agentEntry {
	back := meetingFormPath(owner)
	return a.openAgentForm(s, forms.KeyMeetingAgentDialog(owner), "", agents.Draft{},
		func(string) string { return back },
		back,
	)
}

func meetingDraft(r *http.Request) meetings.Draft {
	return meetings.Draft{
		Name:    r.PostFormValue("name"),
		AgentID: r.PostFormValue("agent_id"),
		Status:  r.PostFormValue("status"),
	}
}

func (a *App) meetingList(w http.ResponseWriter, r *http.Request, s *session.Session) {
	q := r.URL.Query()
	page := pagination.PageRequestFromQuery(q, a.pagination)
	filters := meetings.FiltersFromQuery(q)
	sc := a.sessionCache(s)

	result, err := queries.MeetingPage(r.Context(), sc, a.meetings, page, filters)
	if err != nil {
		a.logger.Error("meeting list failed", "error", err)
		a.renderError(w, s, http.StatusInternalServerError, "Error loading meetings", err)
		return
	}

	values := page.Values()
	for k, v := range filters.Values() {
		values[k] = v
	}

	data := meetingListData{
		shell:    shell{Session: s},
		Meetings: result.Data,
		Statuses: meetings.Statuses,
		Pager:    newPager("/meetings", values, result.Page, result.TotalPages, result.Total),
	}
	if page.Search != nil {
		data.Search = *page.Search
	}
	if filters.Status != nil {
		data.Status = string(*filters.Status)
	}
	if filters.AgentID != nil {
		data.AgentID = filters.AgentID.String()
	}

	if options, err := queries.AgentOptions(r.Context(), sc, a.agents, ""); err == nil {
		data.Agents = options.Data
	} else {
		a.logger.Warn("agent options failed", "error", err)
	}

	a.render(w, http.StatusOK, viewMeetings, "", data)
}

// loadMeeting reads the meeting at {id} the same way loadAgent does.
func (a *App) loadMeeting(w http.ResponseWriter, r *http.Request, s *session.Session) (*meetings.Meeting, *cache.Cache, shell) {
	sh := shell{Session: s}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		a.renderError(w, s, http.StatusNotFound, "Error loading meeting", meetings.ErrNotFound)
		return nil, nil, sh
	}

	sc, state := a.hydrate(r.Context(), s, func(ctx context.Context, c *cache.Cache) error {
		_, err := queries.Meeting(ctx, c, a.meetings, id)
		return err
	})
	sh.State = state

	m, err := queries.Meeting(r.Context(), sc, a.meetings, id)
	if err != nil {
		a.renderReadError(w, s, "Error loading meeting", meetings.MapHTTPStatus(err), err)
		return nil, nil, sh
	}
	return m, sc, sh
}

// meetingForm opens the meeting form owned by {id}, which is either
// "new" or a meeting id. It returns nil after rendering a read error.
func (a *App) meetingForm(w http.ResponseWriter, r *http.Request, s *session.Session) (*meetingEntry, *meetings.Meeting, shell) {
	if r.PathValue("id") == newOwner {
		return a.openNewMeetingForm(s), nil, shell{Session: s}
	}
	m, _, sh := a.loadMeeting(w, r, s)
	if m == nil {
		return nil, nil, sh
	}
	return a.openEditMeetingForm(s, m), m, sh
}

// renderMeetingForm renders the new page, or the detail page in edit mode,
// with the agent picker and any open agent dialog.
func (a *App) renderMeetingForm(w http.ResponseWriter, r *http.Request, s *session.Session, sh shell, entry *meetingEntry, m *meetings.Meeting, status int) {
	owner := newOwner
	action, cancel := "/meetings", "/meetings/new/cancel"
	if m != nil {
		owner = m.ID.String()
		action, cancel = meetingPath(owner), meetingPath(owner)+"/cancel"
	}

	data := meetingData{
		shell:       sh,
		Meeting:     m,
		Mode:        modeEdit,
		Form:        viewOf(entry.Form, action, cancel),
		AgentSearch: r.URL.Query().Get("agent_search"),
		Statuses:    meetings.Statuses,
		Base:        meetingPath(owner),
	}

	options, err := queries.AgentOptions(r.Context(), a.sessionCache(s), a.agents, data.AgentSearch)
	if err != nil {
		a.logger.Warn("agent options failed", "error", err)
		if data.Notice == "" {
			data.Notice = "Agents could not be loaded: " + remote.Message(err)
		}
	} else {
		data.Agents = options.Data
	}

	if d, ok := forms.Lookup[*agentEntry](a.forms, s.Token, entry.DialogKey()); ok {
		base := meetingPath(owner)
		data.Dialog = viewOf(d.AgentForm, base+"/agents", base+"/agents/cancel")
	}

	if m == nil {
		a.render(w, status, viewMeetingNew, "", data)
		return
	}
	a.render(w, status, viewMeeting, m.Name, data)
}

func (a *App) meetingNew(w http.ResponseWriter, r *http.Request, s *session.Session) {
	entry := a.openNewMeetingForm(s)
	a.renderMeetingForm(w, r, s, shell{Session: s}, entry, nil, http.StatusOK)
}

func (a *App) meetingCreate(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if !a.parseForm(w, r, s) {
		return
	}
	entry := a.openNewMeetingForm(s)
	out, err := entry.Submit(r.Context(), meetingDraft(r))
	a.respond(w, r, s, out, err, entry.next, "/meetings", func(status int, notice string) {
		a.renderMeetingForm(w, r, s, shell{Session: s, Notice: notice}, entry, nil, status)
	})
}

func (a *App) meetingNewCancel(w http.ResponseWriter, r *http.Request, s *session.Session) {
	entry, ok := forms.Lookup[*meetingEntry](a.forms, s.Token, forms.KeyMeetingNew)
	if !ok {
		redirect(w, r, "/meetings")
		return
	}
	if err := entry.Cancel(); err != nil {
		redirect(w, r, "/meetings/new")
		return
	}
	redirect(w, r, entry.next.take("/meetings"))
}

func (a *App) meetingDetail(w http.ResponseWriter, r *http.Request, s *session.Session) {
	m, _, sh := a.loadMeeting(w, r, s)
	if m == nil {
		return
	}

	mode := readMode(r)
	if mode == modeEdit {
		a.renderMeetingForm(w, r, s, sh, a.openEditMeetingForm(s, m), m, http.StatusOK)
		return
	}
	a.render(w, http.StatusOK, viewMeeting, m.Name, meetingData{
		shell:   sh,
		Meeting: m,
		Mode:    mode,
	})
}

func (a *App) meetingUpdate(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if !a.parseForm(w, r, s) {
		return
	}
	m, _, sh := a.loadMeeting(w, r, s)
	if m == nil {
		return
	}

	entry := a.openEditMeetingForm(s, m)
	out, err := entry.Submit(r.Context(), meetingDraft(r))
	a.respond(w, r, s, out, err, entry.next, meetingPath(m.ID.String()), func(status int, notice string) {
		sh.Notice = notice
		a.renderMeetingForm(w, r, s, sh, entry, m, status)
	})
}

func (a *App) meetingEditCancel(w http.ResponseWriter, r *http.Request, s *session.Session) {
	id := r.PathValue("id")
	entry, ok := forms.Lookup[*meetingEntry](a.forms, s.Token, forms.KeyMeetingEdit(id))
	if !ok {
		redirect(w, r, meetingPath(id))
		return
	}
	if err := entry.Cancel(); err != nil {
		redirect(w, r, meetingFormPath(id))
		return
	}
	redirect(w, r, entry.next.take(meetingPath(id)))
}

// meetingRemove deletes the meeting. Agent reads carry meeting counts, so
// they are marked stale with the meeting reads.
func (a *App) meetingRemove(w http.ResponseWriter, r *http.Request, s *session.Session) {
	m, sc, sh := a.loadMeeting(w, r, s)
	if m == nil {
		return
	}

	ctx := r.Context()
	id := m.ID.String()
	if err := a.meetings.Remove(ctx, m.ID); err != nil {
		if errors.Is(err, meetings.ErrNotFound) {
			a.renderError(w, s, http.StatusNotFound, "Error removing meeting", err)
			return
		}
		sh.Notice = remote.Message(err)
		a.render(w, http.StatusOK, viewMeeting, m.Name, meetingData{shell: sh, Meeting: m, Mode: modeRemove})
		return
	}

	a.forms.Close(s.Token, forms.KeyMeetingEdit(id))
	a.forms.Close(s.Token, forms.KeyMeetingAgentDialog(id))
	if err := queries.InvalidateMeeting(ctx, sc, id); err != nil {
		a.logger.Error("invalidate meeting failed", "error", err)
	}
	if _, err := sc.Invalidate(ctx, cache.Key{Entity: queries.Agents}); err != nil {
		a.logger.Error("invalidate agents failed", "error", err)
	}
	redirect(w, r, "/meetings")
}

// dialogOpen stores the posted meeting values without validating them and
// opens the nested agent dialog. The meeting form's state is unchanged.
func (a *App) dialogOpen(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if !a.parseForm(w, r, s) {
		return
	}
	entry, m, _ := a.meetingForm(w, r, s)
	if entry == nil {
		return
	}

	owner := newOwner
	if m != nil {
		owner = m.ID.String()
	}

	if err := entry.SetDraft(meetingDraft(r)); err != nil {
		a.logger.Debug("meeting draft not stored", "error", err)
	}
	a.openAgentDialog(s, owner)
	redirect(w, r, meetingFormPath(owner))
}

func (a *App) dialogSubmit(w http.ResponseWriter, r *http.Request, s *session.Session) {
	owner := r.PathValue("id")
	dialog, ok := forms.Lookup[*agentEntry](a.forms, s.Token, forms.KeyMeetingAgentDialog(owner))
	if !ok {
		redirect(w, r, meetingFormPath(owner))
		return
	}
	if !a.parseForm(w, r, s) {
		return
	}

	out, err := dialog.Submit(r.Context(), agentDraft(r))
	a.respond(w, r, s, out, err, dialog.next, meetingFormPath(owner), func(status int, notice string) {
		entry, m, sh := a.meetingForm(w, r, s)
		if entry == nil {
			return
		}
		sh.Notice = notice
		a.renderMeetingForm(w, r, s, sh, entry, m, status)
	})
}

func (a *App) dialogCancel(w http.ResponseWriter, r *http.Request, s *session.Session) {
	owner := r.PathValue("id")
	dialog, ok := forms.Lookup[*agentEntry](a.forms, s.Token, forms.KeyMeetingAgentDialog(owner))
	if !ok {
		redirect(w, r, meetingFormPath(owner))
		return
	}
	if err := dialog.Cancel(); err != nil {
		redirect(w, r, meetingFormPath(owner))
		return
	}
	redirect(w, r, dialog.next.take(meetingFormPath(owner)))
}
