// Package routes declares HTTP routes as data and registers them on a ServeMux.
package routes

import "net/http"

// Route is a single method + pattern binding. Pattern is relative to the
// enclosing group prefix and may use ServeMux wildcards such as {id}.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group is a collection of routes under a common prefix. Children inherit the
// parent prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in groups to mux as "METHOD prefix+pattern".
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		register(mux, "", g)
	}
}

// Patterns lists the mux patterns groups would register, in declaration order.
func Patterns(groups ...Group) []string {
	var out []string
	for _, g := range groups {
		out = collect(out, "", g)
	}
	return out
}

func register(mux *http.ServeMux, parent string, g Group) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(pattern(prefix, r), r.Handler)
	}
	for _, child := range g.Children {
		register(mux, prefix, child)
	}
}

func collect(out []string, parent string, g Group) []string {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		out = append(out, pattern(prefix, r))
	}
	for _, child := range g.Children {
		out = collect(out, prefix, child)
	}
	return out
}

func pattern(prefix string, r Route) string {
	path := prefix + r.Pattern
	if path == "" {
		path = "/"
	}
	return r.Method + " " + path
}
