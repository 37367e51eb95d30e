package migrations

import (
	"context"
	"fmt"

	"github.com/xbxaxd26/pump-swap-screen/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded schema files in lexical order.
// Statements are executed one at a time; pgx rejects multi-statement Exec.
// Migrations are expected to be idempotent.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := sqlFiles(PostgresFS, "postgres")
	if err != nil {
		return fmt.Errorf("read embedded postgres migrations: %w", err)
	}

	for _, file := range files {
		sql, err := readMigration(PostgresFS, "postgres", file)
		if err != nil {
			return err
		}
		for _, stmt := range splitStatements(sql) {
			if _, err := pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", file, err)
			}
		}
	}

	return nil
}
