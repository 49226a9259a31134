// Package meetings manages named sessions that each reference one agent.
package meetings

import (
	"time"

	"github.com/google/uuid"
)

// MaxNameLength bounds meeting names.
const MaxNameLength = 255

// Status is the lifecycle state of a meeting.
type Status string

const (
	StatusUpcoming   Status = "upcoming"
	StatusActive     Status = "active"
	StatusCompleted  Status = "completed"
	StatusProcessing Status = "processing"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{
	StatusUpcoming,
	StatusActive,
	StatusCompleted,
	StatusProcessing,
	StatusCancelled,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func statusNames() []string {
	out := make([]string, len(Statuses))
	for i, s := range Statuses {
		out[i] = string(s)
	}
	return out
}

// Meeting is a stored session. AgentName is read from the referenced agent.
type Meeting struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AgentID   uuid.UUID `json:"agent_id"`
	AgentName string    `json:"agent_name"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Draft holds raw form values before validation. AgentID stays a string so an
// unselected or malformed value can be reported per field.
type Draft struct {
	Name    string `json:"name"`
	AgentID string `json:"agent_id"`
	Status  string `json:"status,omitempty"`
}

// Command is a validated create or update payload. An empty Status means
// upcoming on create and unchanged on update.
type Command struct {
	Name    string    `json:"name"`
	AgentID uuid.UUID `json:"agent_id"`
	Status  Status    `json:"status,omitempty"`
}

// DraftOf returns the draft that edits m.
func DraftOf(m *Meeting) Draft {
	if m == nil {
		return Draft{}
	}
	return Draft{
		Name:    m.Name,
		AgentID: m.AgentID.String(),
		Status:  string(m.Status),
	}
}
