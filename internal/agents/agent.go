// Package agents manages named, instruction-configured assistant profiles.
package agents

import (
	"time"

	"github.com/google/uuid"
)

// MaxNameLength bounds agent names.
const MaxNameLength = 255

// Agent is a stored assistant profile.
type Agent struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	MeetingCount int       `json:"meeting_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Draft holds raw form values before validation.
type Draft struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}

// Command is a validated create or update payload.
type Command struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}

// DraftOf returns the draft that edits a.
func DraftOf(a *Agent) Draft {
	if a == nil {
		return Draft{}
	}
	return Draft{Name: a.Name, Instructions: a.Instructions}
}
