// Package migrations embeds the SQL migrations for the identity store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
