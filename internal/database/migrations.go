package database

import (
	"database/sql"
	"os"
	"path/filepath"

	"pitwall/config"
	"pitwall/pkg/logger"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	MIGRATION_PATH    = "cmd/migration/migrations"
	MIGRATION_DIALECT = "postgres"
)

// MigrationSource returns the SQL files that own the schema
func MigrationSource(dir string) *migrate.FileMigrationSource {
	return &migrate.FileMigrationSource{Dir: dir}
}

// RunMigrations applies up to max migrations from dir in the given direction.
// A max of 0 applies all pending migrations.
func RunMigrations(
	config config.Config,
	dir string,
	direction migrate.MigrationDirection,
	max int,
) (int, error) {
	log := logger.New("database").Function("RunMigrations")

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, log.Error("migrations directory does not exist", "dir", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return 0, log.Err("failed to check for migration files", err)
	}
	if len(files) == 0 {
		log.Info("No migration files found", "dir", dir)
		return 0, nil
	}

	db, err := sql.Open(MIGRATION_DIALECT, DSN(config))
	if err != nil {
		return 0, log.Err("failed to open database for migrations", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Er("failed to close database", err)
		}
	}()

	n, err := migrate.ExecMax(db, MIGRATION_DIALECT, MigrationSource(dir), direction, max)
	if err != nil {
		return 0, log.Err("failed to run migrations", err, "direction", direction)
	}

	if n == 0 {
		log.Info("No migrations to apply")
	} else {
		log.Info("Applied migrations", "migrationCount", n, "direction", direction)
	}

	return n, nil
}

// PendingMigrations lists the migration ids not yet applied
func PendingMigrations(config config.Config, dir string) ([]string, error) {
	log := logger.New("database").Function("PendingMigrations")

	db, err := sql.Open(MIGRATION_DIALECT, DSN(config))
	if err != nil {
		return nil, log.Err("failed to open database for migrations", err)
	}
	defer db.Close()

	planned, _, err := migrate.PlanMigration(db, MIGRATION_DIALECT, MigrationSource(dir), migrate.Up, 0)
	if err != nil {
		return nil, log.Err("failed to plan migrations", err)
	}

	ids := make([]string, 0, len(planned))
	for _, m := range planned {
		ids = append(ids, m.Id)
	}
	return ids, nil
}
