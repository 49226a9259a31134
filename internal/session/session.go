// Package session resolves the signed-in user from a request and issues and
// revokes session tokens. Tokens travel in a cookie or an
// "Authorization: Bearer" header.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/agent-meet/internal/config"
)

var ErrNameRequired = errors.New("name is required")

// Session is an authenticated browser or API session.
type Session struct {
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has lapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// System is the session provider contract.
type System interface {
	// GetSession returns the session carried by h, or nil when there is none
	// or it has expired.
	GetSession(ctx context.Context, h http.Header) (*Session, error)
	Create(ctx context.Context, name string) (*Session, error)
	Revoke(ctx context.Context, token string) error
	// OnRevoke registers a callback run after a token is revoked.
	OnRevoke(fn func(ctx context.Context, token string))
	Cookie(s *Session) *http.Cookie
	ExpiredCookie() *http.Cookie
}

type provider struct {
	store  Store
	cfg    *config.SessionConfig
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	onRevoke []func(ctx context.Context, token string)
}

// New creates a session System over store.
func New(cfg *config.SessionConfig, store Store, logger *slog.Logger) System {
	return &provider{
		store:  store,
		cfg:    cfg,
		logger: logger.With("system", "session"),
		now:    time.Now,
	}
}

func (p *provider) GetSession(ctx context.Context, h http.Header) (*Session, error) {
	token := TokenFromHeader(h, p.cfg.CookieName)
	if token == "" {
		return nil, nil
	}

	s, err := p.store.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil || s.Expired(p.now()) {
		return nil, nil
	}
	return s, nil
}

func (p *provider) Create(ctx context.Context, name string) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := p.now()
	ttl := p.cfg.TTLDuration()
	s := &Session{
		Token:     token,
		Name:      name,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := p.store.Put(ctx, s, ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	p.logger.Info("session created", "name", name)
	return s, nil
}

func (p *provider) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := p.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	p.mu.RLock()
	hooks := p.onRevoke
	p.mu.RUnlock()

	for _, fn := range hooks {
		fn(ctx, token)
	}

	p.logger.Info("session revoked")
	return nil
}

func (p *provider) OnRevoke(fn func(ctx context.Context, token string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRevoke = append(p.onRevoke, fn)
}

func (p *provider) Cookie(s *Session) *http.Cookie {
	return &http.Cookie{
		Name:     p.cfg.CookieName,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   p.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (p *provider) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     p.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromHeader extracts a bearer token, falling back to the named cookie.
func TokenFromHeader(h http.Header, cookieName string) string {
	if auth := h.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	r := http.Request{Header: h}
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
