package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/repository"
)

// AuditRecommendationRepository implements repository.AuditRecommendationRepo.
type AuditRecommendationRepository struct {
	db *Database
}

func NewAuditRecommendationRepository(db *Database) repository.AuditRecommendationRepo {
	return &AuditRecommendationRepository{db: db}
}

const auditColumns = `
	id, request_id, request_payload, candidates_json, config_version,
	actor_id, selected_contractor_id, created_at`

func scanAudit(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.AuditRecommendation, error) {
	a := &domain.AuditRecommendation{}
	err := scanner.Scan(
		&a.ID,
		&a.RequestID,
		&a.RequestPayload,
		&a.CandidatesJSON,
		&a.ConfigVersion,
		&a.ActorID,
		&a.SelectedContractorID,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AuditRecommendationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuditRecommendation, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_recommendations WHERE id = $1`
	row := r.db.QueryRowxContext(ctx, query, id)
	a, err := scanAudit(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("audit record not found")
		}
		return nil, fmt.Errorf("failed to get audit record: %w", err)
	}
	return a, nil
}

func (r *AuditRecommendationRepository) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*domain.AuditRecommendation, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_recommendations WHERE request_id = $1`
	row := r.db.QueryRowxContext(ctx, query, requestID)
	a, err := scanAudit(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("audit record not found")
		}
		return nil, fmt.Errorf("failed to get audit record: %w", err)
	}
	return a, nil
}

func (r *AuditRecommendationRepository) Add(ctx context.Context, a *domain.AuditRecommendation) error {
	query := `
		INSERT INTO audit_recommendations (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.RequestID, a.RequestPayload, a.CandidatesJSON, a.ConfigVersion,
		a.ActorID, a.SelectedContractorID, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit record: %w", err)
	}
	return nil
}

// Update is used solely to stamp SelectedContractorID post-hoc when an
// assignment is created against this recommendation.
func (r *AuditRecommendationRepository) Update(ctx context.Context, a *domain.AuditRecommendation) error {
	query := `UPDATE audit_recommendations SET selected_contractor_id = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, a.ID, a.SelectedContractorID)
	if err != nil {
		return fmt.Errorf("failed to update audit record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("audit record not found")
	}
	return nil
}

func (r *AuditRecommendationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_recommendations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete audit record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("audit record not found")
	}
	return nil
}
