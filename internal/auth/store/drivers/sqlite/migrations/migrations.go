// Package migrations holds the sqlite schema migrations, embedded so they
// ship inside the binary.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
