package forms

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/internal/agents"
	"github.com/JaimeStill/agent-meet/internal/meetings"
	"github.com/JaimeStill/agent-meet/internal/queries"
	"github.com/JaimeStill/agent-meet/pkg/cache"
)

type AgentForm = Form[agents.Draft, agents.Command]

// NewAgentForm binds an agent form to sys and to the agent keys of c.
func NewAgentForm(sys agents.System, c *cache.Cache, opts Options[agents.Draft]) *AgentForm {
	return New(Binding[agents.Draft, agents.Command]{
		Validate: agents.Validate,
		Create: func(ctx context.Context, cmd agents.Command) (string, error) {
			a, err := sys.Create(ctx, cmd)
			if err != nil {
				return "", err
			}
			return a.ID.String(), nil
		},
		Update: func(ctx context.Context, id string, cmd agents.Command) error {
			uid, err := uuid.Parse(id)
			if err != nil {
				return agents.ErrNotFound
			}
			_, err = sys.Update(ctx, uid, cmd)
			return err
		},
		Invalidate: func(ctx context.Context, id string, _ agents.Command) error {
			return queries.InvalidateAgent(ctx, c, id)
		},
	}, opts)
}

// MeetingForm is a meeting form with a nested agent dialog.
type MeetingForm struct {
	*Form[meetings.Draft, meetings.Command]
}

// NewMeetingForm binds a meeting form to sys and to the meeting keys of c.
// Agent reads carry meeting counts, so every agent entry is invalidated too.
func NewMeetingForm(sys meetings.System, c *cache.Cache, opts Options[meetings.Draft]) *MeetingForm {
	f := New(Binding[meetings.Draft, meetings.Command]{
		Validate: meetings.Validate,
		Create: func(ctx context.Context, cmd meetings.Command) (string, error) {
			m, err := sys.Create(ctx, cmd)
			if err != nil {
				return "", err
			}
			return m.ID.String(), nil
		},
		Update: func(ctx context.Context, id string, cmd meetings.Command) error {
			uid, err := uuid.Parse(id)
			if err != nil {
				return meetings.ErrNotFound
			}
			_, err = sys.Update(ctx, uid, cmd)
			return err
		},
		Invalidate: func(ctx context.Context, id string, _ meetings.Command) error {
			if err := queries.InvalidateMeeting(ctx, c, id); err != nil {
				return err
			}
			_, err := c.Invalidate(ctx, cache.Key{Entity: queries.Agents})
			return err
		},
	}, opts)

	return &MeetingForm{Form: f}
}

// DialogKey names the nested agent dialog of this form.
func (m *MeetingForm) DialogKey() string {
	if m.Editing() {
		return KeyMeetingAgentDialog(m.ID())
	}
	return KeyMeetingAgentDialog("new")
}
