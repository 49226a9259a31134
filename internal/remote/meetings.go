package remote

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/internal/meetings"
	"github.com/JaimeStill/agent-meet/pkg/pagination"
)

var meetingErrors = []error{meetings.ErrNotFound, meetings.ErrDuplicate, meetings.ErrAgentNotFound, meetings.ErrInvalidStatus}

type meetingsClient struct {
	c *Client
}

// Meetings returns a meetings.System backed by the API.
func (c *Client) Meetings() meetings.System {
	return &meetingsClient{c: c}
}

func (m *meetingsClient) Create(ctx context.Context, cmd meetings.Command) (*meetings.Meeting, error) {
	var out meetings.Meeting
	if err := m.c.do(ctx, http.MethodPost, "/meetings", nil, cmd, &out, meetingErrors); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *meetingsClient) Update(ctx context.Context, id uuid.UUID, cmd meetings.Command) (*meetings.Meeting, error) {
	var out meetings.Meeting
	if err := m.c.do(ctx, http.MethodPut, "/meetings/"+id.String(), nil, cmd, &out, meetingErrors); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *meetingsClient) Remove(ctx context.Context, id uuid.UUID) error {
	return m.c.do(ctx, http.MethodDelete, "/meetings/"+id.String(), nil, nil, nil, meetingErrors)
}

func (m *meetingsClient) GetOne(ctx context.Context, id uuid.UUID) (*meetings.Meeting, error) {
	var out meetings.Meeting
	if err := m.c.do(ctx, http.MethodGet, "/meetings/"+id.String(), nil, nil, &out, meetingErrors); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *meetingsClient) GetMany(ctx context.Context, page pagination.PageRequest, filters meetings.Filters) (*pagination.PageResult[meetings.Meeting], error) {
	q := page.Values()
	for k, v := range filters.Values() {
		q[k] = v
	}

	var out pagination.PageResult[meetings.Meeting]
	if err := m.c.do(ctx, http.MethodGet, "/meetings", q, nil, &out, meetingErrors); err != nil {
		return nil, err
	}
	return &out, nil
}
