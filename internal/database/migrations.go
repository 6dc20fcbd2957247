package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// StoreTables are the tables the catalog store expects after migrating
var StoreTables = []string{"products", "variants", "customers", "orders", "order_items"}

// RunMigrations applies pending goose migrations and checks that every
// store table is present afterwards
func RunMigrations(ctx context.Context, db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("Checking for pending migrations", zap.String("dir", migrationsDir))

	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if missing, err := missingTables(ctx, db); err != nil {
		return err
	} else if len(missing) > 0 {
		return fmt.Errorf("schema version %d is missing tables %v", version, missing)
	}

	logger.Info("Migrations completed", zap.Int64("version", version))
	return nil
}

func missingTables(ctx context.Context, db *sql.DB) ([]string, error) {
	var missing []string
	for _, table := range StoreTables {
		var name sql.NullString
		if err := db.QueryRowContext(ctx, `SELECT to_regclass($1)::text`, table).Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to look up table %s: %w", table, err)
		}
		if !name.Valid {
			missing = append(missing, table)
		}
	}
	return missing, nil
}

// GetMigrationStatus prints the applied and pending migrations
func GetMigrationStatus(ctx context.Context, db *sql.DB, migrationsDir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.StatusContext(ctx, db, migrationsDir)
}
