package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/repository"
)

// JobRepository implements repository.JobRepo.
type JobRepository struct {
	db *Database
}

func NewJobRepository(db *Database) repository.JobRepo {
	return &JobRepository{db: db}
}

const jobColumns = `
	id, type, duration_minutes, location, service_window, priority, desired_date,
	required_skills, status, assignment_ids, latest_audit_id, created_at, updated_at`

func scanJob(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Job, error) {
	j := &domain.Job{}
	var requiredSkills pq.StringArray
	var assignmentIDs pq.StringArray

	err := scanner.Scan(
		&j.ID,
		&j.Type,
		&j.DurationMinutes,
		jsonOf(&j.Location),
		jsonOf(&j.ServiceWindow),
		&j.Priority,
		&j.DesiredDate,
		&requiredSkills,
		&j.Status,
		&assignmentIDs,
		&j.LatestAuditID,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.RequiredSkills = []string(requiredSkills)
	j.AssignmentIDs = make([]uuid.UUID, 0, len(assignmentIDs))
	for _, raw := range assignmentIDs {
		id, perr := uuid.Parse(raw)
		if perr != nil {
			return nil, fmt.Errorf("malformed assignment id in job row: %w", perr)
		}
		j.AssignmentIDs = append(j.AssignmentIDs, id)
	}
	return j, nil
}

func assignmentIDStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	row := r.db.QueryRowxContext(ctx, query, id)
	j, err := scanJob(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("job not found")
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

func (r *JobRepository) GetAll(ctx context.Context) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at ASC`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var out []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *JobRepository) Add(ctx context.Context, j *domain.Job) error {
	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query,
		j.ID, j.Type, j.DurationMinutes, jsonOf(&j.Location), jsonOf(&j.ServiceWindow),
		j.Priority, j.DesiredDate, pq.Array(j.RequiredSkills), j.Status,
		pq.Array(assignmentIDStrings(j.AssignmentIDs)), j.LatestAuditID, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *JobRepository) Update(ctx context.Context, j *domain.Job) error {
	query := `
		UPDATE jobs SET
			type = $2, duration_minutes = $3, location = $4, service_window = $5,
			priority = $6, desired_date = $7, required_skills = $8, status = $9,
			assignment_ids = $10, latest_audit_id = $11, updated_at = $12
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		j.ID, j.Type, j.DurationMinutes, jsonOf(&j.Location), jsonOf(&j.ServiceWindow),
		j.Priority, j.DesiredDate, pq.Array(j.RequiredSkills), j.Status,
		pq.Array(assignmentIDStrings(j.AssignmentIDs)), j.LatestAuditID, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("job not found")
	}
	return nil
}

func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("job not found")
	}
	return nil
}
