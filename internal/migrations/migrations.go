// Package migrations embeds the versioned PostgreSQL schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Dir is the directory within FS that holds the migration files.
const Dir = "."
