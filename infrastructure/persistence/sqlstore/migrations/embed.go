// Package migrations embeds the SQL migrations of each supported dialect.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
