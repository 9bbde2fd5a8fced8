package migrations

import "embed"

// FS holds the schema migrations shared by the postgres and sqlite dialects.
//
//go:embed *.sql
var FS embed.FS
