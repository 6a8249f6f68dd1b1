// Package postgres implements every repository.go interface against
// Postgres via sqlx, following backend/internal/repository/job_repository.go
// (raw SQL, pq.Array, sql.ErrNoRows handling, %w wrapping) and
// backend/pkg/database/connection.go's connect/ping/pool shape.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/pageza/smartscheduler/internal/config"
)

// Database holds the pooled Postgres connection every repository shares.
type Database struct {
	*sqlx.DB
}

// NewDatabase opens and pings a Postgres connection configured per
// config.Config, following pkg/database/connection.go's pool tuning.
func NewDatabase(cfg *config.Config) (*Database, error) {
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DatabaseMaxConnections)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdle)
	db.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{db}, nil
}

// HealthCheck pings the pool. The API's /healthz handler does not call it.
func (d *Database) HealthCheck(ctx context.Context) error {
	if err := d.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
