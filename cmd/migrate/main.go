// Command migrate applies or rolls back the SmartScheduler schema, following
// backend/cmd/migrate/main.go's golang-migrate CLI wrapper.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/pageza/smartscheduler/internal/config"
)

func main() {
	var migrationsPath = flag.String("path", "migrations", "Path to migrations directory")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: migrate [up|down|version] [flags]")
		fmt.Println("Commands:")
		fmt.Println("  up      - Apply all pending migrations")
		fmt.Println("  down    - Rollback the last migration")
		fmt.Println("  version - Print the current schema version")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	switch args[0] {
	case "up":
		runMigrationsUp(cfg.DatabaseURL, *migrationsPath)
	case "down":
		runMigrationsDown(cfg.DatabaseURL, *migrationsPath)
	case "version":
		printVersion(cfg.DatabaseURL, *migrationsPath)
	default:
		log.Fatalf("Unknown command: %s", args[0])
	}
}

func newMigrate(databaseURL, migrationsPath string) *migrate.Migrate {
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), databaseURL)
	if err != nil {
		log.Fatalf("Failed to create migrate instance: %v", err)
	}
	return m
}

func runMigrationsUp(databaseURL, migrationsPath string) {
	m := newMigrate(databaseURL, migrationsPath)
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	log.Println("Migrations applied successfully")
}

func runMigrationsDown(databaseURL, migrationsPath string) {
	m := newMigrate(databaseURL, migrationsPath)
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		log.Fatalf("Failed to rollback migration: %v", err)
	}
	log.Println("Migration rolled back successfully")
}

func printVersion(databaseURL, migrationsPath string) {
	m := newMigrate(databaseURL, migrationsPath)
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatalf("Failed to read schema version: %v", err)
	}
	fmt.Printf("version=%d dirty=%t\n", version, dirty)
}
