// Package validation collects field-scoped validation messages for drafts.
package validation

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Errors maps a field name to its first failing message.
type Errors map[string]string

// Add records message for field unless the field already has one.
func (e Errors) Add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

// Has reports whether field failed validation.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Get returns the message for field, or "".
func (e Errors) Get(field string) string {
	return e[field]
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

// Error lists failures as "field: message" sorted by field.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when empty.
func (e Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Required fails field when value is blank after trimming.
func Required(errs Errors, field, value, message string) bool {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, message)
		return false
	}
	return true
}

// MaxLength fails field when value exceeds max characters.
func MaxLength(errs Errors, field, value string, max int, message string) bool {
	if utf8.RuneCountInString(value) > max {
		errs.Add(field, message)
		return false
	}
	return true
}

// UUID fails field when value is not a canonical uuid. Blank values pass so
// Required reports emptiness on its own.
func UUID(errs Errors, field, value, message string) bool {
	if value == "" {
		return true
	}
	if _, err := uuid.Parse(value); err != nil {
		errs.Add(field, message)
		return false
	}
	return true
}

// OneOf fails field when value is not among allowed. Blank values pass.
func OneOf(errs Errors, field, value string, allowed []string, message string) bool {
	if value == "" {
		return true
	}
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	errs.Add(field, message)
	return false
}
