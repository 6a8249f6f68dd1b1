package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/smartscheduler/internal/domain"
)

type fakeContractorRepo struct {
	byID map[uuid.UUID]*domain.Contractor
}

func newFakeContractorRepo(contractors ...*domain.Contractor) *fakeContractorRepo {
	m := make(map[uuid.UUID]*domain.Contractor, len(contractors))
	for _, c := range contractors {
		m[c.ID] = c
	}
	return &fakeContractorRepo{byID: m}
}

func (f *fakeContractorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contractor, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, domain.NotFound("contractor not found")
}

func (f *fakeContractorRepo) GetAll(ctx context.Context) ([]*domain.Contractor, error) {
	out := make([]*domain.Contractor, 0, len(f.byID))
	for _, c := range f.byID {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeContractorRepo) GetBySkills(ctx context.Context, skills []string) ([]*domain.Contractor, error) {
	out := make([]*domain.Contractor, 0, len(f.byID))
	for _, c := range f.byID {
		if c.HasSkills(skills) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContractorRepo) Add(ctx context.Context, c *domain.Contractor) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeContractorRepo) Update(ctx context.Context, c *domain.Contractor) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeContractorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeJobRepo struct {
	byID map[uuid.UUID]*domain.Job
}

func newFakeJobRepo(jobs ...*domain.Job) *fakeJobRepo {
	m := make(map[uuid.UUID]*domain.Job, len(jobs))
	for _, j := range jobs {
		m[j.ID] = j
	}
	return &fakeJobRepo{byID: m}
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	if j, ok := f.byID[id]; ok {
		return j, nil
	}
	return nil, domain.NotFound("job not found")
}

func (f *fakeJobRepo) GetAll(ctx context.Context) ([]*domain.Job, error) {
	out := make([]*domain.Job, 0, len(f.byID))
	for _, j := range f.byID {
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeJobRepo) Add(ctx context.Context, j *domain.Job) error {
	f.byID[j.ID] = j
	return nil
}

func (f *fakeJobRepo) Update(ctx context.Context, j *domain.Job) error {
	f.byID[j.ID] = j
	return nil
}

func (f *fakeJobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeAssignmentRepo struct {
	byID map[uuid.UUID]*domain.Assignment
}

func newFakeAssignmentRepo(assignments ...*domain.Assignment) *fakeAssignmentRepo {
	m := make(map[uuid.UUID]*domain.Assignment, len(assignments))
	for _, a := range assignments {
		m[a.ID] = a
	}
	return &fakeAssignmentRepo{byID: m}
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assignment, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, domain.NotFound("assignment not found")
}

func (f *fakeAssignmentRepo) GetByJobID(ctx context.Context, jobID uuid.UUID) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, a := range f.byID {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) GetByContractorID(ctx context.Context, contractorID uuid.UUID) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, a := range f.byID {
		if a.ContractorID == contractorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) GetByContractorAndRange(ctx context.Context, contractorID uuid.UUID, window domain.TimeWindow) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, a := range f.byID {
		if a.ContractorID == contractorID && a.Window.Overlaps(window) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) Add(ctx context.Context, a *domain.Assignment) error {
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAssignmentRepo) Update(ctx context.Context, a *domain.Assignment) error {
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeAuditRepo struct {
	byID       map[uuid.UUID]*domain.AuditRecommendation
	byRequest  map[uuid.UUID]*domain.AuditRecommendation
	addedCh    chan struct{}
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{
		byID:      make(map[uuid.UUID]*domain.AuditRecommendation),
		byRequest: make(map[uuid.UUID]*domain.AuditRecommendation),
		addedCh:   make(chan struct{}, 16),
	}
}

func (f *fakeAuditRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuditRecommendation, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, domain.NotFound("audit record not found")
}

func (f *fakeAuditRepo) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*domain.AuditRecommendation, error) {
	if a, ok := f.byRequest[requestID]; ok {
		return a, nil
	}
	return nil, domain.NotFound("audit record not found")
}

func (f *fakeAuditRepo) Add(ctx context.Context, a *domain.AuditRecommendation) error {
	f.byID[a.ID] = a
	f.byRequest[a.RequestID] = a
	select {
	case f.addedCh <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeAuditRepo) Update(ctx context.Context, a *domain.AuditRecommendation) error {
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAuditRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeAuditRepo) waitForAdd(timeout time.Duration) bool {
	select {
	case <-f.addedCh:
		return true
	case <-time.After(timeout):
		return false
	}
}
