package migrations

import "embed"

// FS contains embedded SQLite migrations for the transfer ledger.
//
//go:embed *.sql
var FS embed.FS
