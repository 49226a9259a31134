package agents

import (
	"net/url"

	"github.com/JaimeStill/agent-meet/pkg/query"
	"github.com/JaimeStill/agent-meet/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "agents", "a").
	Project("id", "ID").
	Project("name", "Name").
	Project("instructions", "Instructions").
	ProjectExpr("(SELECT COUNT(*) FROM public.meetings m WHERE m.agent_id = a.id)", "MeetingCount").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

const defaultSort = "CreatedAt"

func scanAgent(s repository.Scanner) (Agent, error) {
	var a Agent
	err := s.Scan(&a.ID, &a.Name, &a.Instructions, &a.MeetingCount, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Filters narrows agent lists beyond the page search.
type Filters struct {
	Name *string
}

// FiltersFromQuery reads filters from URL query values.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	return f
}

// Values encodes filters as URL query values.
func (f Filters) Values() url.Values {
	v := url.Values{}
	if f.Name != nil && *f.Name != "" {
		v.Set("name", *f.Name)
	}
	return v
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereContains("Name", f.Name)
}
