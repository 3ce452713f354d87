// Package migrations embeds the SQL migrations for each supported dialect.
package migrations

import "embed"

// FS holds postgres/ and sqlite/ migration trees.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
