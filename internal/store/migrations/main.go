package storemigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the store_records schema.
var Migrations = migrate.NewMigrations()
