// Package migrations embeds the SQL schema so binaries carry their own migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
