package app

import (
	"context"
	"net/http"

	"github.com/JaimeStill/agent-meet/internal/agents"
	"github.com/JaimeStill/agent-meet/internal/meetings"
	"github.com/JaimeStill/agent-meet/internal/queries"
	"github.com/JaimeStill/agent-meet/internal/session"
	"github.com/JaimeStill/agent-meet/pkg/cache"
	"github.com/JaimeStill/agent-meet/pkg/pagination"
	"github.com/JaimeStill/agent-meet/pkg/query"
)

// recentMeetings is how many meetings the home page lists.
const recentMeetings = 5

type homeData struct {
	shell
	AgentCount   int
	MeetingCount int
	Recent       []meetings.Meeting
}

func (a *App) home(w http.ResponseWriter, r *http.Request, s *session.Session) {
	agentPage := pagination.PageRequest{Page: 1, PageSize: 1}
	meetingPage := pagination.PageRequest{
		Page:     1,
		PageSize: recentMeetings,
		Sort:     []query.SortField{{Field: "CreatedAt", Descending: true}},
	}

	sc, state := a.hydrate(r.Context(), s, func(ctx context.Context, c *cache.Cache) error {
		if _, err := queries.AgentPage(ctx, c, a.agents, agentPage, agents.Filters{}); err != nil {
			return err
		}
		_, err := queries.MeetingPage(ctx, c, a.meetings, meetingPage, meetings.Filters{})
		return err
	})

	ag, err := queries.AgentPage(r.Context(), sc, a.agents, agentPage, agents.Filters{})
	if err != nil {
		a.renderReadError(w, s, "Error loading dashboard", http.StatusInternalServerError, err)
		return
	}
	mt, err := queries.MeetingPage(r.Context(), sc, a.meetings, meetingPage, meetings.Filters{})
	if err != nil {
		a.renderReadError(w, s, "Error loading dashboard", http.StatusInternalServerError, err)
		return
	}

	a.render(w, http.StatusOK, viewHome, "", homeData{
		shell:        shell{Session: s, State: state},
		AgentCount:   ag.Total,
		MeetingCount: mt.Total,
		Recent:       mt.Data,
	})
}
