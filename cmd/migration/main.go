package main

import (
	"os"
	"strconv"
	"time"

	"pitwall/cmd/migration/seed"
	"pitwall/config"
	"pitwall/internal/database"
	"pitwall/pkg/logger"

	migrate "github.com/rubenv/sql-migrate"
)

func main() {
	log := logger.New("migrations")
	log = log.Function("main")

	config, err := config.New()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	migrationType := "up"
	if len(os.Args) > 1 {
		migrationType = os.Args[1]
	}

	switch migrationType {
	case "up":
		err = migrateUp(config, log)
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil {
				log.Er("failed to parse step", err)
				os.Exit(1)
			}
		}
		err = migrateDown(steps, config, log)
	case "status":
		err = migrateStatus(config, log)
	case "seed":
		err = migrateSeed(config, log)
	default:
		err = log.Error("unknown command, expected up, down, status or seed", "command", migrationType)
	}

	if err != nil {
		log.Er("failed to run migrations", err)
		os.Exit(1)
	}

	log.Info("Migrations complete")
}

func migrateUp(config config.Config, log logger.Logger) error {
	log = log.Function("migrateUp")
	log.Info("Running migrations up")

	if _, err := database.RunMigrations(config, database.MIGRATION_PATH, migrate.Up, 0); err != nil {
		return log.Err("failed to run migrations", err)
	}
	return nil
}

func migrateDown(steps int, config config.Config, log logger.Logger) error {
	log = log.Function("migrateDown")
	log.Info("Running migrations down", "steps", steps)

	if _, err := database.RunMigrations(config, database.MIGRATION_PATH, migrate.Down, steps); err != nil {
		return log.Err("failed to run migrations", err)
	}
	return nil
}

func migrateStatus(config config.Config, log logger.Logger) error {
	log = log.Function("migrateStatus")

	pending, err := database.PendingMigrations(config, database.MIGRATION_PATH)
	if err != nil {
		return log.Err("failed to read migration status", err)
	}

	log.Info("Migration status", "pendingCount", len(pending), "pending", pending)
	return nil
}

func migrateSeed(config config.Config, log logger.Logger) error {
	log = log.Function("migrateSeed")

	if err := migrateUp(config, log); err != nil {
		return err
	}

	db, err := database.New(config)
	if err != nil {
		return log.Err("failed to create database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Er("failed to close database", err)
		}
	}()

	if err := seed.Seed(db.SQL, time.Now().Year(), log); err != nil {
		return log.Err("failed to seed database", err)
	}

	if err := db.FlushAllCaches(); err != nil {
		return log.Err("failed to flush caches after seeding", err)
	}

	return nil
}
