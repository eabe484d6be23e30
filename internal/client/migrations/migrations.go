// Package migrations embeds the goose migrations of the local lawdesk database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
