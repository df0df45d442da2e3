// Package migrations embeds the SQL migration files for each supported database.
package migrations

import "embed"

// Postgres holds the migrations applied to PostgreSQL databases.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite holds the migrations applied to SQLite databases.
//
//go:embed sqlite/*.sql
var SQLite embed.FS
