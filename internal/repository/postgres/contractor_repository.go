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

// ContractorRepository implements repository.ContractorRepo.
type ContractorRepository struct {
	db *Database
}

// NewContractorRepository constructs a repository.ContractorRepo backed by
// Postgres.
func NewContractorRepository(db *Database) repository.ContractorRepo {
	return &ContractorRepository{db: db}
}

const contractorColumns = `
	id, name, base_location, working_hours, skills, calendar,
	rating, max_jobs_per_day, created_at, updated_at`

func scanContractor(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Contractor, error) {
	c := &domain.Contractor{}
	var skills pq.StringArray

	err := scanner.Scan(
		&c.ID,
		&c.Name,
		jsonOf(&c.BaseLocation),
		jsonOf(&c.WorkingHours),
		&skills,
		jsonOf(&c.Calendar),
		&c.Rating,
		&c.MaxJobsPerDay,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Skills = []string(skills)
	return c, nil
}

func (r *ContractorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contractor, error) {
	query := `SELECT ` + contractorColumns + ` FROM contractors WHERE id = $1`
	row := r.db.QueryRowxContext(ctx, query, id)
	c, err := scanContractor(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("contractor not found")
		}
		return nil, fmt.Errorf("failed to get contractor: %w", err)
	}
	return c, nil
}

func (r *ContractorRepository) GetAll(ctx context.Context) ([]*domain.Contractor, error) {
	query := `SELECT ` + contractorColumns + ` FROM contractors ORDER BY created_at ASC`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contractors: %w", err)
	}
	defer rows.Close()

	var out []*domain.Contractor
	for rows.Next() {
		c, err := scanContractor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contractor: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetBySkills returns contractors whose normalized skill set is a superset
// of the given required skills (normalized here before querying), using
// Postgres' array-containment operator.
func (r *ContractorRepository) GetBySkills(ctx context.Context, skills []string) ([]*domain.Contractor, error) {
	normalized := domain.NormalizeSkills(skills)
	query := `SELECT ` + contractorColumns + ` FROM contractors WHERE skills @> $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryxContext(ctx, query, pq.Array(normalized))
	if err != nil {
		return nil, fmt.Errorf("failed to query contractors by skills: %w", err)
	}
	defer rows.Close()

	var out []*domain.Contractor
	for rows.Next() {
		c, err := scanContractor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contractor: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ContractorRepository) Add(ctx context.Context, c *domain.Contractor) error {
	if err := c.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO contractors (` + contractorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, jsonOf(&c.BaseLocation), jsonOf(&c.WorkingHours), pq.Array(c.Skills),
		jsonOf(&c.Calendar), c.Rating, c.MaxJobsPerDay, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contractor: %w", err)
	}
	return nil
}

func (r *ContractorRepository) Update(ctx context.Context, c *domain.Contractor) error {
	if err := c.Validate(); err != nil {
		return err
	}
	query := `
		UPDATE contractors SET
			name = $2, base_location = $3, working_hours = $4, skills = $5,
			calendar = $6, rating = $7, max_jobs_per_day = $8, updated_at = $9
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, jsonOf(&c.BaseLocation), jsonOf(&c.WorkingHours), pq.Array(c.Skills),
		jsonOf(&c.Calendar), c.Rating, c.MaxJobsPerDay, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update contractor: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("contractor not found")
	}
	return nil
}

func (r *ContractorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contractors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contractor: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("contractor not found")
	}
	return nil
}
