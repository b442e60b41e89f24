// Package migrations holds the SQLite schema applied at startup.
package migrations

import "embed"

// FS contains the ordered *.up.sql files.
//
//go:embed *.up.sql
var FS embed.FS
