package remote

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/internal/agents"
	"github.com/JaimeStill/agent-meet/pkg/pagination"
)

var agentErrors = []error{agents.ErrNotFound, agents.ErrDuplicate, agents.ErrInvalid}

type agentsClient struct {
	c *Client
}

// Agents returns an agents.System backed by the API.
func (c *Client) Agents() agents.System {
	return &agentsClient{c: c}
}

func (a *agentsClient) Create(ctx context.Context, cmd agents.Command) (*agents.Agent, error) {
	var out agents.Agent
	if err := a.c.do(ctx, http.MethodPost, "/agents", nil, cmd, &out, agentErrors); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *agentsClient) Update(ctx context.Context, id uuid.UUID, cmd agents.Command) (*agents.Agent, error) {
	var out agents.Agent
	if err := a.c.do(ctx, http.MethodPut, "/agents/"+id.String(), nil, cmd, &out, agentErrors); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *agentsClient) Remove(ctx context.Context, id uuid.UUID) error {
	return a.c.do(ctx, http.MethodDelete, "/agents/"+id.String(), nil, nil, nil, agentErrors)
}

func (a *agentsClient) GetOne(ctx context.Context, id uuid.UUID) (*agents.Agent, error) {
	var out agents.Agent
	if err := a.c.do(ctx, http.MethodGet, "/agents/"+id.String(), nil, nil, &out, agentErrors); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *agentsClient) GetMany(ctx context.Context, page pagination.PageRequest, filters agents.Filters) (*pagination.PageResult[agents.Agent], error) {
	q := page.Values()
	for k, v := range filters.Values() {
		q[k] = v
	}

	var out pagination.PageResult[agents.Agent]
	if err := a.c.do(ctx, http.MethodGet, "/agents", q, nil, &out, agentErrors); err != nil {
		return nil, err
	}
	return &out, nil
}
