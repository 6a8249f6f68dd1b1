package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/repository"
)

// AssignmentRepository implements repository.AssignmentRepo, including the
// time-range and job-id lookup queries.
type AssignmentRepository struct {
	db *Database
}

func NewAssignmentRepository(db *Database) repository.AssignmentRepo {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `
	id, job_id, contractor_id, window, status, source, audit_id, created_at, updated_at`

func scanAssignment(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Assignment, error) {
	a := &domain.Assignment{}
	err := scanner.Scan(
		&a.ID,
		&a.JobID,
		&a.ContractorID,
		jsonOf(&a.Window),
		&a.Status,
		&a.Source,
		&a.AuditID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`
	row := r.db.QueryRowxContext(ctx, query, id)
	a, err := scanAssignment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("assignment not found")
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return a, nil
}

func (r *AssignmentRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) ([]*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE job_id = $1 ORDER BY created_at ASC`
	return r.queryMany(ctx, query, jobID)
}

func (r *AssignmentRepository) GetByContractorID(ctx context.Context, contractorID uuid.UUID) ([]*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE contractor_id = $1 ORDER BY created_at ASC`
	return r.queryMany(ctx, query, contractorID)
}

// GetByContractorAndRange returns a contractor's assignments overlapping
// window, the index the Availability Engine and Fatigue Calculator use to
// build their blocking-window sets.
func (r *AssignmentRepository) GetByContractorAndRange(ctx context.Context, contractorID uuid.UUID, window domain.TimeWindow) ([]*domain.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + ` FROM assignments
		WHERE contractor_id = $1
		  AND (window->>'startUtc')::timestamptz < $3
		  AND (window->>'endUtc')::timestamptz > $2
		ORDER BY created_at ASC`
	return r.queryMany(ctx, query, contractorID, window.StartUTC, window.EndUTC)
}

func (r *AssignmentRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*domain.Assignment, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AssignmentRepository) Add(ctx context.Context, a *domain.Assignment) error {
	query := `
		INSERT INTO assignments (` + assignmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.JobID, a.ContractorID, jsonOf(&a.Window), a.Status, a.Source, a.AuditID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) Update(ctx context.Context, a *domain.Assignment) error {
	query := `
		UPDATE assignments SET
			window = $2, status = $3, source = $4, audit_id = $5, updated_at = $6
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, a.ID, jsonOf(&a.Window), a.Status, a.Source, a.AuditID, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("assignment not found")
	}
	return nil
}

func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("assignment not found")
	}
	return nil
}
