package api

import (
	"github.com/JaimeStill/agent-meet/internal/agents"
	"github.com/JaimeStill/agent-meet/internal/meetings"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Agents   agents.System
	Meetings meetings.System
}

// NewDomain creates the PostgreSQL-backed domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	return &Domain{
		Agents:   agents.New(db, runtime.Logger, runtime.Pagination),
		Meetings: meetings.New(db, runtime.Logger, runtime.Pagination),
	}
}
