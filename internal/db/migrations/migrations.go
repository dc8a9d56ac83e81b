package migrations

import "embed"

// FS embeds the SQL migrations applied on startup through the iofs source.
//
//go:embed *.sql
var FS embed.FS

const Version = 1
