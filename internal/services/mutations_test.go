package services

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/smartscheduler/internal/domain"
)

func TestAssignConfirmSucceedsWithinAvailability(t *testing.T) {
	zone := "America/New_York"
	contractor := testContractor("c", zone, []string{"hvac"})
	window, err := domain.NewTimeWindow(
		time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 16, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	job, err := domain.NewJob("hvac-repair", 120, domain.GeoLocation{}, window, domain.PriorityNormal, []string{"hvac"})
	require.NoError(t, err)

	contractorRepo := newFakeContractorRepo(contractor)
	jobRepo := newFakeJobRepo(job)
	assignmentRepo := newFakeAssignmentRepo()
	auditRepo := newFakeAuditRepo()
	logger := log.New(io.Discard, "", 0)

	svc := NewMutationService(contractorRepo, jobRepo, assignmentRepo, auditRepo, nil, logger)

	assignment, err := svc.AssignConfirm(context.Background(), AssignConfirmRequest{
		JobID:        job.ID,
		ContractorID: contractor.ID,
		Window:       window,
		Source:       domain.SourceAuto,
		Region:       "west",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentPending, assignment.Status)

	updatedJob, _ := jobRepo.GetByID(context.Background(), job.ID)
	assert.Contains(t, updatedJob.AssignmentIDs, assignment.ID)
}

func TestAssignConfirmDetectsConflict(t *testing.T) {
	zone := "America/New_York"
	contractor := testContractor("c", zone, []string{"hvac"})
	window, err := domain.NewTimeWindow(
		time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 16, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	job, err := domain.NewJob("hvac-repair", 120, domain.GeoLocation{}, window, domain.PriorityNormal, []string{"hvac"})
	require.NoError(t, err)

	existing := domain.NewAssignment(uuid.New(), contractor.ID, window, domain.SourceManual)

	contractorRepo := newFakeContractorRepo(contractor)
	jobRepo := newFakeJobRepo(job)
	assignmentRepo := newFakeAssignmentRepo(existing)
	auditRepo := newFakeAuditRepo()
	logger := log.New(io.Discard, "", 0)

	svc := NewMutationService(contractorRepo, jobRepo, assignmentRepo, auditRepo, nil, logger)

	_, err = svc.AssignConfirm(context.Background(), AssignConfirmRequest{
		JobID:        job.ID,
		ContractorID: contractor.ID,
		Window:       window,
		Source:       domain.SourceAuto,
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeConflictingAssignment, domain.CodeOf(err))
}

func TestCancelFailsForCompletedJob(t *testing.T) {
	window, err := domain.NewTimeWindow(
		time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 16, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	job, err := domain.NewJob("hvac-repair", 120, domain.GeoLocation{}, window, domain.PriorityNormal, nil)
	require.NoError(t, err)
	require.NoError(t, job.Transition(domain.JobInProgress))
	require.NoError(t, job.Transition(domain.JobCompleted))

	jobRepo := newFakeJobRepo(job)
	logger := log.New(io.Discard, "", 0)
	svc := NewMutationService(newFakeContractorRepo(), jobRepo, newFakeAssignmentRepo(), newFakeAuditRepo(), nil, logger)

	_, err = svc.Cancel(context.Background(), CancelRequest{JobID: job.ID})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidState, domain.CodeOf(err))
}

func TestCancelSkipsCompletedAssignments(t *testing.T) {
	window, err := domain.NewTimeWindow(
		time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 16, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	job, err := domain.NewJob("hvac-repair", 120, domain.GeoLocation{}, window, domain.PriorityNormal, nil)
	require.NoError(t, err)

	completed := domain.NewAssignment(job.ID, uuid.New(), window, domain.SourceManual)
	completed.Status = domain.AssignmentCompleted
	pending := domain.NewAssignment(job.ID, uuid.New(), window, domain.SourceAuto)

	jobRepo := newFakeJobRepo(job)
	assignmentRepo := newFakeAssignmentRepo(completed, pending)
	logger := log.New(io.Discard, "", 0)
	svc := NewMutationService(newFakeContractorRepo(), jobRepo, assignmentRepo, newFakeAuditRepo(), nil, logger)

	_, err = svc.Cancel(context.Background(), CancelRequest{JobID: job.ID, Reason: "customer request"})
	require.NoError(t, err)

	gotCompleted, _ := assignmentRepo.GetByID(context.Background(), completed.ID)
	gotPending, _ := assignmentRepo.GetByID(context.Background(), pending.ID)
	assert.Equal(t, domain.AssignmentCompleted, gotCompleted.Status)
	assert.Equal(t, domain.AssignmentCancelled, gotPending.Status)
}
