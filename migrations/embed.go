// Package migrations embeds the goose SQL migration files that define the
// per-user database schema.
package migrations

import "embed"

// FS contains the SQL migration files applied by goose.
//
//go:embed *.sql
var FS embed.FS
