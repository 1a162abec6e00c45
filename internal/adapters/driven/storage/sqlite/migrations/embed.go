// Package migrations holds the schema migrations for the project registry,
// embedded so the binary can bootstrap its own database.
package migrations

import "embed"

// FS exposes the .up.sql files in lexical order.
//
//go:embed *.sql
var FS embed.FS
