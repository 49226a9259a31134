package agents

import (
	"strings"

	"github.com/JaimeStill/agent-meet/pkg/validation"
)

// Field messages shown inline on the agent form.
const (
	MsgNameRequired = "Name is required"
	MsgNameTooLong  = "Name must be at most 255 characters"
)

// Validate checks a draft. Name is required after trimming; instructions are
// optional free text.
func Validate(d Draft) (Command, validation.Errors) {
	errs := validation.Errors{}

	name := strings.TrimSpace(d.Name)
	if validation.Required(errs, "name", name, MsgNameRequired) {
		validation.MaxLength(errs, "name", name, MaxNameLength, MsgNameTooLong)
	}

	if !errs.Empty() {
		return Command{}, errs
	}
	return Command{Name: name, Instructions: d.Instructions}, nil
}
