// Package repository declares the persistence contracts for every
// aggregate (Get/Add/Update/Delete, plus the time-range and job-id indexes
// AssignmentRepo needs). Follows the interface/constructor shape of
// backend/internal/repository/repository.go; concrete Postgres
// implementations live in the postgres sub-package.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/smartscheduler/internal/domain"
)

// ContractorRepo persists Contractor aggregates.
type ContractorRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contractor, error)
	GetAll(ctx context.Context) ([]*domain.Contractor, error)
	GetBySkills(ctx context.Context, skills []string) ([]*domain.Contractor, error)
	Add(ctx context.Context, c *domain.Contractor) error
	Update(ctx context.Context, c *domain.Contractor) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// JobRepo persists Job aggregates.
type JobRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	GetAll(ctx context.Context) ([]*domain.Job, error)
	Add(ctx context.Context, j *domain.Job) error
	Update(ctx context.Context, j *domain.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AssignmentRepo persists Assignment aggregates, with the time-range and
// job-id lookups the scheduling core needs.
type AssignmentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Assignment, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) ([]*domain.Assignment, error)
	GetByContractorID(ctx context.Context, contractorID uuid.UUID) ([]*domain.Assignment, error)
	GetByContractorAndRange(ctx context.Context, contractorID uuid.UUID, window domain.TimeWindow) ([]*domain.Assignment, error)
	Add(ctx context.Context, a *domain.Assignment) error
	Update(ctx context.Context, a *domain.Assignment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditRecommendationRepo persists AuditRecommendation records.
type AuditRecommendationRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AuditRecommendation, error)
	GetByRequestID(ctx context.Context, requestID uuid.UUID) (*domain.AuditRecommendation, error)
	Add(ctx context.Context, a *domain.AuditRecommendation) error
	Update(ctx context.Context, a *domain.AuditRecommendation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventLogRepo persists realtime event-log entries.
type EventLogRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EventLog, error)
	Add(ctx context.Context, e *domain.EventLog) error
	GetSince(ctx context.Context, since time.Time) ([]*domain.EventLog, error)
}

// SystemConfigurationRepo persists versioned system configuration.
type SystemConfigurationRepo interface {
	GetActive(ctx context.Context) (*domain.SystemConfiguration, error)
	GetByVersion(ctx context.Context, version int) (*domain.SystemConfiguration, error)
	Add(ctx context.Context, c *domain.SystemConfiguration) error
	Update(ctx context.Context, c *domain.SystemConfiguration) error
}

// WeightsConfigRepo persists versioned scoring weights. Exactly one row has
// IsActive=true at any time; cmd/api reads GetActive once at startup to seed
// the weights cache, and nothing reloads the cache from it afterwards.
type WeightsConfigRepo interface {
	GetActive(ctx context.Context) (*domain.WeightsConfig, error)
	GetByVersion(ctx context.Context, version int) (*domain.WeightsConfig, error)
	Add(ctx context.Context, w *domain.WeightsConfig) error
	Update(ctx context.Context, w *domain.WeightsConfig) error
}

// Repositories groups every repository, constructed once at startup and
// threaded through the service layer, following the Repositories aggregate
// in backend/internal/repository/repository.go.
type Repositories struct {
	Contractor   ContractorRepo
	Job          JobRepo
	Assignment   AssignmentRepo
	Audit        AuditRecommendationRepo
	EventLog     EventLogRepo
	SystemConfig SystemConfigurationRepo
	Weights      WeightsConfigRepo
}
