package agents

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound  = errors.New("agent not found")
	ErrDuplicate = errors.New("agent name already exists")
	ErrInvalid   = errors.New("invalid agent")
)

// MapHTTPStatus maps domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalid) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
