package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/agent-meet/internal/config"
	"github.com/JaimeStill/agent-meet/internal/session"
)

func testConfig() *config.SessionConfig {
	return &config.SessionConfig{CookieName: "sid", TTL: "1h"}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stores(t *testing.T) map[string]func() (session.Store, *miniredis.Miniredis) {
	return map[string]func() (session.Store, *miniredis.Miniredis){
		"memory": func() (session.Store, *miniredis.Miniredis) {
			return session.NewMemoryStore(), nil
		},
		"redis": func() (session.Store, *miniredis.Miniredis) {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { rdb.Close() })
			return session.NewRedisStore(rdb, "test"), mr
		},
	}
}

func TestProvider(t *testing.T) {
	ctx := context.Background()

	for name, newStore := range stores(t) {
		t.Run(name, func(t *testing.T) {
			store, _ := newStore()
			sys := session.New(testConfig(), store, discard())

			s, err := sys.Create(ctx, "  Ada ")
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if s.Name != "Ada" {
				t.Errorf("Name = %q, want %q", s.Name, "Ada")
			}
			if s.Token == "" {
				t.Fatal("Token is empty")
			}

			bearer := http.Header{"Authorization": {"Bearer " + s.Token}}
			got, err := sys.GetSession(ctx, bearer)
			if err != nil || got == nil {
				t.Fatalf("GetSession(bearer) = %v, %v", got, err)
			}

			req := httptest.NewRequest("GET", "/", nil)
			req.AddCookie(sys.Cookie(s))
			got, err = sys.GetSession(ctx, req.Header)
			if err != nil || got == nil || got.Name != "Ada" {
				t.Fatalf("GetSession(cookie) = %v, %v", got, err)
			}

			var revoked string
			sys.OnRevoke(func(_ context.Context, token string) { revoked = token })

			if err := sys.Revoke(ctx, s.Token); err != nil {
				t.Fatalf("Revoke() error = %v", err)
			}
			if revoked != s.Token {
				t.Errorf("OnRevoke token = %q, want %q", revoked, s.Token)
			}

			got, err = sys.GetSession(ctx, bearer)
			if err != nil || got != nil {
				t.Errorf("GetSession() after revoke = %v, %v, want nil", got, err)
			}
		})
	}
}

func TestProvider_NoSession(t *testing.T) {
	sys := session.New(testConfig(), session.NewMemoryStore(), discard())

	tests := []struct {
		name   string
		header http.Header
	}{
		{"no header", http.Header{}},
		{"unknown token", http.Header{"Authorization": {"Bearer nope"}}},
		{"other scheme", http.Header{"Authorization": {"Basic abc"}}},
		{"unknown cookie", http.Header{"Cookie": {"sid=nope"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := sys.GetSession(context.Background(), tt.header)
			if err != nil {
				t.Fatalf("GetSession() error = %v", err)
			}
			if s != nil {
				t.Errorf("GetSession() = %+v, want nil", s)
			}
		})
	}
}

func TestProvider_CreateRequiresName(t *testing.T) {
	sys := session.New(testConfig(), session.NewMemoryStore(), discard())

	if _, err := sys.Create(context.Background(), " "); !errors.Is(err, session.ErrNameRequired) {
		t.Errorf("Create() error = %v, want %v", err, session.ErrNameRequired)
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	sys := session.New(testConfig(), session.NewRedisStore(rdb, "test"), discard())
	s, err := sys.Create(context.Background(), "Ada")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !mr.Exists("test:session:" + s.Token) {
		t.Fatal("session key not written")
	}

	mr.FastForward(2 * time.Hour)

	got, err := sys.GetSession(context.Background(), http.Header{"Authorization": {"Bearer " + s.Token}})
	if err != nil || got != nil {
		t.Errorf("GetSession() after expiry = %v, %v, want nil", got, err)
	}
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		want   string
	}{
		{"bearer", http.Header{"Authorization": {"Bearer abc"}}, "abc"},
		{"lowercase scheme", http.Header{"Authorization": {"bearer abc"}}, "abc"},
		{"cookie", http.Header{"Cookie": {"sid=xyz"}}, "xyz"},
		{"bearer wins over cookie", http.Header{"Authorization": {"Bearer abc"}, "Cookie": {"sid=xyz"}}, "abc"},
		{"none", http.Header{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := session.TokenFromHeader(tt.header, "sid"); got != tt.want {
				t.Errorf("TokenFromHeader() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequire(t *testing.T) {
	sys := session.New(testConfig(), session.NewMemoryStore(), discard())
	s, _ := sys.Create(context.Background(), "Ada")

	var seen *session.Session
	h := session.Require(sys, discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.FromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/agents", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without session = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	req := httptest.NewRequest("GET", "/agents", nil)
	req.Header.Set("Authorization", "Bearer "+s.Token)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status with session = %d, want %d", w.Code, http.StatusOK)
	}
	if seen == nil || seen.Token != s.Token {
		t.Errorf("context session = %+v", seen)
	}
}
