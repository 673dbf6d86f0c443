package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"caseflow/db"
)

// OpenMigrated applies the embedded migrations to dsn and returns a pool on it.
func OpenMigrated(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if err := db.Migrate(dsn); err != nil {
		return nil, err
	}
	return db.NewPool(ctx, dsn)
}

// Reset truncates mutable tables to provide a clean slate between tests.
func Reset(ctx context.Context, pool *pgxpool.Pool) error {
	tables := []string{"cases"}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("reset begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, tbl := range tables {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+tbl); err != nil {
			return fmt.Errorf("truncate %s: %w", tbl, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("reset commit: %w", err)
	}
	return nil
}
