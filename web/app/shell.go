package app

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/JaimeStill/agent-meet/internal/forms"
	"github.com/JaimeStill/agent-meet/internal/session"
	"github.com/JaimeStill/agent-meet/pkg/cache"
	"github.com/JaimeStill/agent-meet/pkg/validation"
	"github.com/JaimeStill/agent-meet/pkg/web"
)

type sessionHandler func(w http.ResponseWriter, r *http.Request, s *session.Session)

// shell is the data every dashboard page carries.
type shell struct {
	Session *session.Session
	// State is the dehydrated request cache, embedded as JSON.
	State template.JS
	// Notice is a page-level notification such as a failed remote call.
	Notice string
}

// formView is the render state of one open form.
type formView[D any] struct {
	Action string
	Cancel string
	Values D
	Errors validation.Errors
	// Message carries the text of a failed remote call.
	Message string
	Busy    bool
}

func viewOf[D, V any](f *forms.Form[D, V], action, cancel string) *formView[D] {
	return &formView[D]{
		Action:  action,
		Cancel:  cancel,
		Values:  f.Draft(),
		Errors:  f.Errors(),
		Message: f.Message(),
		Busy:    f.State() == forms.StateSubmitting,
	}
}

type errorData struct {
	shell
	Heading string
	Message string
}

// gate resolves the session or redirects to the sign-in page. The session is
// placed in the request context so remote calls can forward it.
func (a *App) gate(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := a.sessions.GetSession(r.Context(), r.Header)
		if err != nil {
			a.logger.Error("session lookup failed", "error", err)
			a.renderError(w, nil, http.StatusInternalServerError, "Error loading session", err)
			return
		}
		if s == nil {
			http.Redirect(w, r, signInURL(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next(w, r.WithContext(session.WithSession(r.Context(), s)), s)
	}
}

func signInURL(next string) string {
	if next == "" || next == "/" {
		return "/sign-in"
	}
	return "/sign-in?" + url.Values{"next": {next}}.Encode()
}

// safeNext keeps post-sign-in redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// sessionCache returns the query cache of s.
func (a *App) sessionCache(s *session.Session) *cache.Cache {
	return a.caches.Scope(s.Token)
}

// hydrate runs prefetch against a request-scoped cache, then dehydrates it
// into the session cache and returns that cache with the snapshot JSON.
// Prefetch errors are not reported here; the view read surfaces them.
func (a *App) hydrate(ctx context.Context, s *session.Session, prefetch func(context.Context, *cache.Cache) error) (*cache.Cache, template.JS) {
	sc := a.sessionCache(s)
	req := cache.NewRequest()

	if err := prefetch(ctx, req); err != nil {
		a.logger.Debug("prefetch failed", "error", err)
	}

	snap, err := req.Dehydrate(ctx)
	if err != nil {
		a.logger.Error("dehydrate failed", "error", err)
		return sc, ""
	}
	if err := sc.Hydrate(ctx, snap); err != nil {
		a.logger.Error("hydrate failed", "error", err)
	}

	data, err := snap.JSON()
	if err != nil {
		a.logger.Error("encode snapshot failed", "error", err)
		return sc, ""
	}
	return sc, template.JS(data)
}

func (a *App) render(w http.ResponseWriter, status int, view web.ViewDef, title string, data any) {
	if title == "" {
		title = view.Title
	}
	vd := web.ViewData{Title: title, Bundle: view.Bundle, Data: data}
	if err := a.templates.RenderStatus(w, status, layout, view.Template, vd); err != nil {
		a.logger.Error("render failed", "template", view.Template, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// renderError renders the error view. Read errors are shown once and not
// retried.
func (a *App) renderError(w http.ResponseWriter, s *session.Session, status int, heading string, err error) {
	msg := http.StatusText(status)
	if status < http.StatusInternalServerError && err != nil {
		msg = err.Error()
	}
	a.render(w, status, viewError, heading, errorData{
		shell:   shell{Session: s},
		Heading: heading,
		Message: msg,
	})
}

func (a *App) renderMarkdown(src string) template.HTML {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := a.markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// pending records where a form sends the browser once it closes. It is set
// by the form callbacks and read by the handler after Submit or Cancel.
type pending struct {
	mu  sync.Mutex
	url string
}

func (p *pending) set(u string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = u
}

func (p *pending) take(fallback string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	u := p.url
	p.url = ""
	if u == "" {
		return fallback
	}
	return u
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// pageURL returns path with values and the page number set.
func pageURL(path string, values url.Values, page int) string {
	v := url.Values{}
	for k, vs := range values {
		v[k] = append([]string(nil), vs...)
	}
	v.Set("page", strconv.Itoa(page))
	return path + "?" + v.Encode()
}

// pager links the neighbours of a list page.
type pager struct {
	Page       int
	TotalPages int
	Total      int
	Prev       string
	Next       string
}

func newPager(path string, values url.Values, page, totalPages, total int) pager {
	p := pager{Page: page, TotalPages: totalPages, Total: total}
	if page > 1 {
		p.Prev = pageURL(path, values, page-1)
	}
	if page < totalPages {
		p.Next = pageURL(path, values, page+1)
	}
	return p
}

// respond answers a form Submit. Success redirects to the form's pending
// target; validation errors re-render with 422; a failed remote call
// re-renders with 200 and keeps the values; a concurrent submit gets 409.
func (a *App) respond(w http.ResponseWriter, r *http.Request, s *session.Session, out forms.Outcome, err error, next *pending, fallback string, rerender func(status int, notice string)) {
	switch {
	case errors.Is(err, forms.ErrInFlight):
		rerender(http.StatusConflict, "A submission is already in progress")
	case errors.Is(err, forms.ErrClosed):
		redirect(w, r, next.take(fallback))
	case err != nil && out.State == forms.StateSuccess:
		a.logger.Error("invalidate after submit failed", "error", err)
		redirect(w, r, next.take(fallback))
	case err != nil:
		a.renderError(w, s, http.StatusInternalServerError, "Error saving changes", err)
	case out.State == forms.StateSuccess:
		redirect(w, r, next.take(fallback))
	case out.State == forms.StateFailed:
		rerender(http.StatusOK, "")
	default:
		rerender(http.StatusUnprocessableEntity, "")
	}
}

// parseForm reads the posted form. Oversized bodies fail with 413.
func (a *App) parseForm(w http.ResponseWriter, r *http.Request, s *session.Session) bool {
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.renderError(w, s, http.StatusRequestEntityTooLarge, "Form too large", err)
			return false
		}
		a.renderError(w, s, http.StatusBadRequest, "Invalid form", err)
		return false
	}
	return true
}
