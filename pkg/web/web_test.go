package web_test

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/agent-meet/pkg/web"
)

//go:embed testdata
var testFS embed.FS

var testViews = []web.ViewDef{
	{Route: "/{$}", Template: "home.html", Title: "Home", Bundle: "app"},
	{Template: "broken.html", Title: "Broken"},
}

var funcs = template.FuncMap{"shout": strings.ToUpper}

func newTemplateSet(t *testing.T) *web.TemplateSet {
	t.Helper()
	ts, err := web.NewTemplateSet(testFS, testFS, "testdata/layouts/*.html", "testdata/views", "/app", testViews, funcs)
	if err != nil {
		t.Fatalf("NewTemplateSet() error = %v", err)
	}
	return ts
}

func TestNewTemplateSet_Errors(t *testing.T) {
	tests := []struct {
		name       string
		layoutGlob string
		viewSubdir string
		views      []web.ViewDef
	}{
		{"invalid layout glob", "nonexistent/*.html", "testdata/views", testViews},
		{"missing view", "testdata/layouts/*.html", "testdata/views", []web.ViewDef{{Template: "nonexistent.html"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := web.NewTemplateSet(testFS, testFS, tt.layoutGlob, tt.viewSubdir, "/app", tt.views, funcs); err == nil {
				t.Error("NewTemplateSet() error = nil, want error")
			}
		})
	}
}

func TestRender(t *testing.T) {
	ts := newTemplateSet(t)

	w := httptest.NewRecorder()
	if err := ts.Render(w, "test.html", "home.html", web.ViewData{Title: "Test", Bundle: "test-bundle"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q, want text/html; charset=utf-8", ct)
	}

	body := w.Body.String()
	for _, want := range []string{"<title>Test</title>", "Home Page", "HI", `data-basepath="/app"`, "test-bundle"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderStatus(t *testing.T) {
	ts := newTemplateSet(t)

	w := httptest.NewRecorder()
	if err := ts.RenderStatus(w, http.StatusUnprocessableEntity, "test.html", "home.html", web.ViewData{}); err != nil {
		t.Fatalf("RenderStatus() error = %v", err)
	}
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}

	w = httptest.NewRecorder()
	if err := ts.RenderStatus(w, http.StatusOK, "test.html", "broken.html", web.ViewData{Data: "x"}); err == nil {
		t.Fatal("RenderStatus() error = nil for failing template")
	}
	if w.Body.Len() != 0 {
		t.Errorf("partial output written: %q", w.Body.String())
	}

	if err := ts.Render(httptest.NewRecorder(), "test.html", "missing.html", web.ViewData{}); err == nil {
		t.Error("Render() error = nil for unknown view")
	}
}

func TestErrorHandler(t *testing.T) {
	ts := newTemplateSet(t)
	h := ts.ErrorHandler("test.html", testViews[0], http.StatusNotFound)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRouter_Fallback(t *testing.T) {
	r := web.NewRouter()
	r.HandleFunc("GET /known", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("known"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status without fallback = %d, want %d", w.Code, http.StatusNotFound)
	}

	r.SetFallback(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/known", http.StatusOK, "known"},
		{"/unknown", http.StatusTeapot, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestStatic(t *testing.T) {
	h, err := web.Static(testFS, "testdata/static", "/static/")
	if err != nil {
		t.Fatalf("Static() error = %v", err)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/static/site.css", nil))

	resp := w.Result()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(string(body), "margin") {
		t.Errorf("body = %q", body)
	}
}
