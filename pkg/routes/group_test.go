package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/agent-meet/pkg/routes"
)

func echo(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(name + ":" + r.PathValue("id")))
	}
}

func testGroup() routes.Group {
	return routes.Group{
		Prefix: "/agents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: echo("list")},
			{Method: "GET", Pattern: "/{id}", Handler: echo("one")},
		},
		Children: []routes.Group{{
			Prefix: "/{id}/meetings",
			Routes: []routes.Route{{Method: "GET", Pattern: "", Handler: echo("meetings")}},
		}},
	}
}

func TestPatterns(t *testing.T) {
	got := routes.Patterns(testGroup(), routes.Group{Routes: []routes.Route{{Method: "GET", Handler: echo("root")}}})
	want := []string{"GET /agents", "GET /agents/{id}", "GET /agents/{id}/meetings", "GET /"}

	if len(got) != len(want) {
		t.Fatalf("Patterns() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Patterns()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, testGroup())

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{"GET", "/agents", http.StatusOK, "list:"},
		{"GET", "/agents/a1", http.StatusOK, "one:a1"},
		{"GET", "/agents/a1/meetings", http.StatusOK, "meetings:a1"},
		{"POST", "/agents", http.StatusMethodNotAllowed, ""},
		{"GET", "/meetings", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}
