package meetings

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/pkg/query"
	"github.com/JaimeStill/agent-meet/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "meetings", "m").
	Join("JOIN public.agents a ON a.id = m.agent_id").
	Project("id", "ID").
	Project("name", "Name").
	Project("agent_id", "AgentID").
	ProjectExpr("a.name", "AgentName").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

const defaultSort = "CreatedAt"

func scanMeeting(s repository.Scanner) (Meeting, error) {
	var m Meeting
	err := s.Scan(&m.ID, &m.Name, &m.AgentID, &m.AgentName, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Filters narrows meeting lists beyond the page search.
type Filters struct {
	Status  *Status
	AgentID *uuid.UUID
}

// FiltersFromQuery reads status and agent_id from URL query values. Unknown
// statuses and malformed ids are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if s := Status(values.Get("status")); s.Valid() {
		f.Status = &s
	}
	if id, err := uuid.Parse(values.Get("agent_id")); err == nil {
		f.AgentID = &id
	}
	return f
}

// Values encodes filters as URL query values.
func (f Filters) Values() url.Values {
	v := url.Values{}
	if f.Status != nil {
		v.Set("status", string(*f.Status))
	}
	if f.AgentID != nil {
		v.Set("agent_id", f.AgentID.String())
	}
	return v
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.Status != nil {
		b.WhereEquals("Status", string(*f.Status))
	}
	if f.AgentID != nil {
		b.WhereEquals("AgentID", *f.AgentID)
	}
	return b
}
