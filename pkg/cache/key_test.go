package cache_test

import (
	"testing"

	"github.com/JaimeStill/agent-meet/pkg/cache"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  cache.Key
		want string
	}{
		{"no params", cache.NewKey("agents", "getMany"), "agents.getMany"},
		{"sorted params", cache.NewKey("agents", "getMany", "search", "tutor", "page", "2"), "agents.getMany?page=2&search=tutor"},
		{"escaped", cache.NewKey("meetings", "getOne", "id", "a b"), "meetings.getOne?id=a+b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}

			parsed, err := cache.ParseKey(tt.want)
			if err != nil {
				t.Fatalf("ParseKey() error = %v", err)
			}
			if parsed.String() != tt.want {
				t.Errorf("ParseKey().String() = %q, want %q", parsed.String(), tt.want)
			}
		})
	}
}

func TestParseKey_Invalid(t *testing.T) {
	for _, s := range []string{"", "agents", ".getOne", "agents.", "agents.getOne?%zz"} {
		if _, err := cache.ParseKey(s); err == nil {
			t.Errorf("ParseKey(%q) should fail", s)
		}
	}
}

func TestKey_Matches(t *testing.T) {
	list := cache.NewKey("agents", "getMany", "page", "1", "search", "tutor")
	one := cache.NewKey("agents", "getOne", "id", "a1")

	tests := []struct {
		name   string
		key    cache.Key
		filter cache.Key
		want   bool
	}{
		{"all lists", list, cache.NewKey("agents", "getMany"), true},
		{"entity wide", one, cache.Key{Entity: "agents"}, true},
		{"matching id", one, cache.NewKey("agents", "getOne", "id", "a1"), true},
		{"other id", one, cache.NewKey("agents", "getOne", "id", "a2"), false},
		{"other operation", one, cache.NewKey("agents", "getMany"), false},
		{"other entity", list, cache.NewKey("meetings", "getMany"), false},
		{"partial params", list, cache.NewKey("agents", "getMany", "search", "tutor"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.Matches(tt.filter); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
