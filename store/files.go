package store

import (
	"embed"
	"io/fs"

	"github.com/uptrace/bun/dialect"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the migration files for all dialects
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// DialectMigrationsFS returns the migration directory for the given dialect
func DialectMigrationsFS(name dialect.Name) (fs.FS, error) {
	dir := "data/sql/migrations/sqlite"
	if name == dialect.PG {
		dir = "data/sql/migrations/postgres"
	}
	return fs.Sub(migrationsFS, dir)
}
