// Package migrations embeds the SQL schema migrations applied by
// cmd/migrate and by the integration tests.
package migrations

import "embed"

// FS holds the *.up.sql and *.down.sql files
//
//go:embed *.sql
var FS embed.FS
