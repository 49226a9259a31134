package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/agent-meet/pkg/handlers"
)

var ErrUnauthorized = errors.New("authentication required")

// Require rejects requests without a valid session with a 401 JSON error and
// stores the session in the request context otherwise.
func Require(sys System, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := sys.GetSession(r.Context(), r.Header)
			if err != nil {
				handlers.RespondError(w, logger, http.StatusInternalServerError, err)
				return
			}
			if s == nil {
				handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}
