package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// SentinelTable is probed to decide whether the schema already exists.
const SentinelTable = "catalog_entries"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_catalog_entries",
		SQL: `CREATE TABLE IF NOT EXISTS catalog_entries (
  id             UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  kind           TEXT        NOT NULL,
  status         TEXT        NOT NULL,
  title          TEXT        NOT NULL,
  published_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  file_key       TEXT,
  download_count INTEGER     NOT NULL DEFAULT 0 CHECK (download_count >= 0)
);`,
	},
	{
		Name: "create_table_document_types",
		SQL: `CREATE TABLE IF NOT EXISTS document_types (
  id   UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE
);`,
	},
	{
		Name: "create_table_catalog_entry_types",
		SQL: `CREATE TABLE IF NOT EXISTS catalog_entry_types (
  entry_id UUID NOT NULL REFERENCES catalog_entries (id) ON DELETE CASCADE,
  type_id  UUID NOT NULL REFERENCES document_types (id) ON DELETE CASCADE,
  PRIMARY KEY (entry_id, type_id)
);`,
	},
	{
		Name: "create_index_catalog_entries_kind_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_catalog_entries_kind_status ON catalog_entries (kind, status);`,
	},
	{
		Name: "create_index_catalog_entries_published_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_catalog_entries_published_at ON catalog_entries (published_at);`,
	},
	{
		Name: "create_index_catalog_entry_types_type_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_catalog_entry_types_type_id ON catalog_entry_types (type_id);`,
	},
}

// EnsureMigrated checks if the sentinel table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "database", "db_host", dbHost)
	start := time.Now()

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := fmt.Sprintf("SELECT to_regclass('public.%s') IS NOT NULL", SentinelTable)
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"reason", "schema already exists",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress", "steps", len(steps))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
