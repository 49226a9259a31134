package meetings

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound      = errors.New("meeting not found")
	ErrDuplicate     = errors.New("meeting already exists")
	ErrAgentNotFound = errors.New("Agent not found")
	ErrInvalidStatus = errors.New("invalid meeting status")
)

// MapHTTPStatus maps domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrAgentNotFound), errors.Is(err, ErrInvalidStatus):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
