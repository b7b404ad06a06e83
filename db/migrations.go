// Package db embeds the SQL migrations so the binary can migrate without a checkout.
package db

import "embed"

//go:embed migrations/*.sql
var MigrationsFS embed.FS
