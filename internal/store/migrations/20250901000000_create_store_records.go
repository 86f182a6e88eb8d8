package storemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating store_records table...")

		// TEXT keeps the schema identical on Postgres and SQLite.
		if _, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS store_records (
				collection VARCHAR(64) NOT NULL,
				key VARCHAR(128) NOT NULL,
				value TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (collection, key)
			)
		`); err != nil {
			return fmt.Errorf("failed to create store_records table: %w", err)
		}
		if _, err := db.ExecContext(ctx, `
			CREATE INDEX IF NOT EXISTS idx_store_records_updated_at ON store_records (updated_at)
		`); err != nil {
			return fmt.Errorf("failed to create store_records index: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping store_records table...")
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS store_records`); err != nil {
			return fmt.Errorf("failed to drop store_records table: %w", err)
		}
		return nil
	})
}
