package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/repository"
)

// SystemConfigurationRepository implements repository.SystemConfigurationRepo.
type SystemConfigurationRepository struct {
	db *Database
}

func NewSystemConfigurationRepository(db *Database) repository.SystemConfigurationRepo {
	return &SystemConfigurationRepository{db: db}
}

func (r *SystemConfigurationRepository) GetActive(ctx context.Context) (*domain.SystemConfiguration, error) {
	query := `SELECT version, allowed_types, allowed_skills FROM system_configurations ORDER BY version DESC LIMIT 1`
	return r.scanOne(r.db.QueryRowxContext(ctx, query))
}

func (r *SystemConfigurationRepository) GetByVersion(ctx context.Context, version int) (*domain.SystemConfiguration, error) {
	query := `SELECT version, allowed_types, allowed_skills FROM system_configurations WHERE version = $1`
	return r.scanOne(r.db.QueryRowxContext(ctx, query, version))
}

func (r *SystemConfigurationRepository) scanOne(row interface {
	Scan(dest ...interface{}) error
}) (*domain.SystemConfiguration, error) {
	c := &domain.SystemConfiguration{}
	var types, skills pq.StringArray
	err := row.Scan(&c.Version, &types, &skills)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("system configuration not found")
		}
		return nil, fmt.Errorf("failed to get system configuration: %w", err)
	}
	c.AllowedTypes = []string(types)
	c.AllowedSkills = []string(skills)
	return c, nil
}

func (r *SystemConfigurationRepository) Add(ctx context.Context, c *domain.SystemConfiguration) error {
	query := `INSERT INTO system_configurations (version, allowed_types, allowed_skills) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, c.Version, pq.Array(c.AllowedTypes), pq.Array(c.AllowedSkills))
	if err != nil {
		return fmt.Errorf("failed to create system configuration: %w", err)
	}
	return nil
}

func (r *SystemConfigurationRepository) Update(ctx context.Context, c *domain.SystemConfiguration) error {
	query := `UPDATE system_configurations SET allowed_types = $2, allowed_skills = $3 WHERE version = $1`
	result, err := r.db.ExecContext(ctx, query, c.Version, pq.Array(c.AllowedTypes), pq.Array(c.AllowedSkills))
	if err != nil {
		return fmt.Errorf("failed to update system configuration: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("system configuration not found")
	}
	return nil
}

// WeightsConfigRepository implements repository.WeightsConfigRepo.
type WeightsConfigRepository struct {
	db *Database
}

func NewWeightsConfigRepository(db *Database) repository.WeightsConfigRepo {
	return &WeightsConfigRepository{db: db}
}

const weightsColumns = `
	version, is_active, availability_weight, rating_weight, distance_weight,
	tie_breakers, rotation`

func scanWeights(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.WeightsConfig, error) {
	w := &domain.WeightsConfig{}
	var tieBreakers pq.StringArray
	err := scanner.Scan(
		&w.Version, &w.IsActive, &w.AvailabilityWeight, &w.RatingWeight, &w.DistanceWeight,
		&tieBreakers, jsonOf(&w.Rotation),
	)
	if err != nil {
		return nil, err
	}
	w.TieBreakers = []string(tieBreakers)
	return w, nil
}

func (r *WeightsConfigRepository) GetActive(ctx context.Context) (*domain.WeightsConfig, error) {
	query := `SELECT ` + weightsColumns + ` FROM weights_configs WHERE is_active = true LIMIT 1`
	w, err := scanWeights(r.db.QueryRowxContext(ctx, query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("no active weights configuration")
		}
		return nil, fmt.Errorf("failed to get active weights configuration: %w", err)
	}
	return w, nil
}

func (r *WeightsConfigRepository) GetByVersion(ctx context.Context, version int) (*domain.WeightsConfig, error) {
	query := `SELECT ` + weightsColumns + ` FROM weights_configs WHERE version = $1`
	w, err := scanWeights(r.db.QueryRowxContext(ctx, query, version))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("weights configuration version not found")
		}
		return nil, fmt.Errorf("failed to get weights configuration: %w", err)
	}
	return w, nil
}

func (r *WeightsConfigRepository) Add(ctx context.Context, w *domain.WeightsConfig) error {
	if err := w.Validate(); err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if w.IsActive {
		if _, err := tx.ExecContext(ctx, `UPDATE weights_configs SET is_active = false WHERE is_active = true`); err != nil {
			return fmt.Errorf("failed to deactivate previous weights configuration: %w", err)
		}
	}

	query := `INSERT INTO weights_configs (` + weightsColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = tx.ExecContext(ctx, query,
		w.Version, w.IsActive, w.AvailabilityWeight, w.RatingWeight, w.DistanceWeight,
		pq.Array(w.TieBreakers), jsonOf(&w.Rotation),
	)
	if err != nil {
		return fmt.Errorf("failed to create weights configuration: %w", err)
	}
	return tx.Commit()
}

func (r *WeightsConfigRepository) Update(ctx context.Context, w *domain.WeightsConfig) error {
	if err := w.Validate(); err != nil {
		return err
	}
	query := `
		UPDATE weights_configs SET
			is_active = $2, availability_weight = $3, rating_weight = $4,
			distance_weight = $5, tie_breakers = $6, rotation = $7
		WHERE version = $1`
	result, err := r.db.ExecContext(ctx, query,
		w.Version, w.IsActive, w.AvailabilityWeight, w.RatingWeight, w.DistanceWeight,
		pq.Array(w.TieBreakers), jsonOf(&w.Rotation),
	)
	if err != nil {
		return fmt.Errorf("failed to update weights configuration: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("weights configuration version not found")
	}
	return nil
}
