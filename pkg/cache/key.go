// Package cache implements a scoped query cache. Entries are keyed by entity,
// operation and params, are invalidated by marking them stale, and can be
// dehydrated into a snapshot and hydrated into another cache.
package cache

import (
	"fmt"
	"net/url"
	"strings"
)

// Key identifies a cached query result.
type Key struct {
	Entity    string            `json:"entity" cbor:"entity"`
	Operation string            `json:"operation" cbor:"operation"`
	Params    map[string]string `json:"params,omitempty" cbor:"params,omitempty"`
}

// NewKey builds a key from alternating param name/value pairs.
func NewKey(entity, operation string, params ...string) Key {
	k := Key{Entity: entity, Operation: operation}
	if len(params) > 0 {
		k.Params = make(map[string]string, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			k.Params[params[i]] = params[i+1]
		}
	}
	return k
}

// String renders the canonical form "entity.operation?a=1&b=2" with params
// sorted by name.
func (k Key) String() string {
	base := k.Entity + "." + k.Operation
	if len(k.Params) == 0 {
		return base
	}

	v := url.Values{}
	for name, value := range k.Params {
		v.Set(name, value)
	}
	return base + "?" + v.Encode()
}

// Matches reports whether k falls under filter. An empty filter operation
// matches every operation; filter params must all be present in k with equal
// values, so a filter without params matches every param set.
func (k Key) Matches(filter Key) bool {
	if k.Entity != filter.Entity {
		return false
	}
	if filter.Operation != "" && k.Operation != filter.Operation {
		return false
	}
	for name, value := range filter.Params {
		if k.Params[name] != value {
			return false
		}
	}
	return true
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	base, rawQuery, _ := strings.Cut(s, "?")

	entity, operation, ok := strings.Cut(base, ".")
	if !ok || entity == "" || operation == "" {
		return Key{}, fmt.Errorf("invalid cache key: %q", s)
	}

	k := Key{Entity: entity, Operation: operation}
	if rawQuery == "" {
		return k, nil
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Key{}, fmt.Errorf("invalid cache key params: %w", err)
	}
	k.Params = make(map[string]string, len(values))
	for name := range values {
		k.Params[name] = values.Get(name)
	}
	return k, nil
}
