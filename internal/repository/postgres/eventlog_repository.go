package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/repository"
)

// EventLogRepository implements repository.EventLogRepo: the append-only
// trail of every realtime event the publisher fans out.
type EventLogRepository struct {
	db *Database
}

func NewEventLogRepository(db *Database) repository.EventLogRepo {
	return &EventLogRepository{db: db}
}

const eventLogColumns = `id, event_type, payload_json, published_at_utc, published_to`

func scanEventLog(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.EventLog, error) {
	e := &domain.EventLog{}
	var publishedTo pq.StringArray
	err := scanner.Scan(&e.ID, &e.EventType, &e.PayloadJSON, &e.PublishedAtUTC, &publishedTo)
	if err != nil {
		return nil, err
	}
	e.PublishedTo = []string(publishedTo)
	return e, nil
}

func (r *EventLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.EventLog, error) {
	query := `SELECT ` + eventLogColumns + ` FROM event_logs WHERE id = $1`
	row := r.db.QueryRowxContext(ctx, query, id)
	e, err := scanEventLog(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("event log entry not found")
		}
		return nil, fmt.Errorf("failed to get event log entry: %w", err)
	}
	return e, nil
}

func (r *EventLogRepository) Add(ctx context.Context, e *domain.EventLog) error {
	query := `INSERT INTO event_logs (` + eventLogColumns + `) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.EventType, e.PayloadJSON, e.PublishedAtUTC, pq.Array(e.PublishedTo))
	if err != nil {
		return fmt.Errorf("failed to append event log entry: %w", err)
	}
	return nil
}

func (r *EventLogRepository) GetSince(ctx context.Context, since time.Time) ([]*domain.EventLog, error) {
	query := `SELECT ` + eventLogColumns + ` FROM event_logs WHERE published_at_utc >= $1 ORDER BY published_at_utc ASC`
	rows, err := r.db.QueryxContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query event logs: %w", err)
	}
	defer rows.Close()

	var out []*domain.EventLog
	for rows.Next() {
		e, err := scanEventLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event log entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
