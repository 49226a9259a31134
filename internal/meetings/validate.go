package meetings

import (
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/pkg/validation"
)

const (
	MsgNameRequired  = "Name is required"
	MsgNameTooLong   = "Name must be at most 255 characters"
	MsgAgentRequired = "Agent is required"
	MsgAgentInvalid  = "Agent is invalid"
	MsgStatusInvalid = "Status is invalid"
)

// Validate checks a draft and parses the agent reference.
func Validate(d Draft) (Command, validation.Errors) {
	errs := validation.Errors{}

	name := strings.TrimSpace(d.Name)
	if validation.Required(errs, "name", name, MsgNameRequired) {
		validation.MaxLength(errs, "name", name, MaxNameLength, MsgNameTooLong)
	}

	agentID := strings.TrimSpace(d.AgentID)
	if validation.Required(errs, "agent_id", agentID, MsgAgentRequired) {
		validation.UUID(errs, "agent_id", agentID, MsgAgentInvalid)
	}

	status := strings.TrimSpace(d.Status)
	validation.OneOf(errs, "status", status, statusNames(), MsgStatusInvalid)

	if !errs.Empty() {
		return Command{}, errs
	}
	return Command{
		Name:    name,
		AgentID: uuid.MustParse(agentID),
		Status:  Status(status),
	}, nil
}
