// Package migrations embeds the goose SQL migrations of the local cache.
//
// The cache is disposable: a migration that changes a table may drop and
// recreate it, and the next refresh repopulates it from the remote API.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
