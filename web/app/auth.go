package app

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/agent-meet/internal/session"
)

type signInData struct {
	shell
	Next  string
	Name  string
	Error string
}

// signInPage renders the development sign-in form. A signed-in visitor is
// sent on to next.
func (a *App) signInPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))

	s, err := a.sessions.GetSession(r.Context(), r.Header)
	if err == nil && s != nil {
		redirect(w, r, next)
		return
	}

	a.render(w, http.StatusOK, viewSignIn, "", signInData{Next: next})
}

func (a *App) signIn(w http.ResponseWriter, r *http.Request) {
	if !a.parseForm(w, r, nil) {
		return
	}
	name := r.PostFormValue("name")
	next := safeNext(r.PostFormValue("next"))

	s, err := a.sessions.Create(r.Context(), name)
	if errors.Is(err, session.ErrNameRequired) {
		a.render(w, http.StatusUnprocessableEntity, viewSignIn, "", signInData{
			Next:  next,
			Name:  name,
			Error: "Name is required",
		})
		return
	}
	if err != nil {
		a.logger.Error("sign in failed", "error", err)
		a.renderError(w, nil, http.StatusInternalServerError, "Error signing in", err)
		return
	}

	http.SetCookie(w, a.sessions.Cookie(s))
	redirect(w, r, next)
}

// signOut revokes the session, which also drops its cache scope and open
// forms.
func (a *App) signOut(w http.ResponseWriter, r *http.Request) {
	if s, err := a.sessions.GetSession(r.Context(), r.Header); err == nil && s != nil {
		if err := a.sessions.Revoke(r.Context(), s.Token); err != nil {
			a.logger.Error("sign out failed", "error", err)
		}
	}

	http.SetCookie(w, a.sessions.ExpiredCookie())
	redirect(w, r, "/sign-in")
}
