// Package migrations embeds the versioned SQL schema for every supported
// database dialect.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
