// Package migrations embeds the SQL schema migrations applied at startup.
package migrations

import "embed"

// FS holds the *.up.sql / *.down.sql files read by golang-migrate.
//
//go:embed *.sql
var FS embed.FS
