package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/pageza/smartscheduler/internal/availability"
	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/fatigue"
	"github.com/pageza/smartscheduler/internal/realtime"
	"github.com/pageza/smartscheduler/internal/repository"
)

// MutationService implements the three mutation handlers: Assign/Confirm,
// Reschedule, and Cancel. Each handler loads the affected aggregates,
// re-validates, persists through separate repository calls (no database
// transaction spans the get, mutate and update steps), then publishes the
// matching realtime event through the Publisher. The aggregates' domain-event
// outboxes are neither raised into nor drained here.
type MutationService struct {
	contractors repository.ContractorRepo
	jobs        repository.JobRepo
	assignments repository.AssignmentRepo
	audits      repository.AuditRecommendationRepo
	publisher   *realtime.Publisher
	logger      *log.Logger
}

// NewMutationService wires the mutation handlers' collaborators.
func NewMutationService(
	contractors repository.ContractorRepo,
	jobs repository.JobRepo,
	assignments repository.AssignmentRepo,
	audits repository.AuditRecommendationRepo,
	publisher *realtime.Publisher,
	logger *log.Logger,
) *MutationService {
	return &MutationService{
		contractors: contractors,
		jobs:        jobs,
		assignments: assignments,
		audits:      audits,
		publisher:   publisher,
		logger:      logger,
	}
}

// AssignConfirmRequest carries the proposed binding for Assign/Confirm.
type AssignConfirmRequest struct {
	JobID        uuid.UUID
	ContractorID uuid.UUID
	Window       domain.TimeWindow
	Source       domain.AssignmentSource
	AuditID      *uuid.UUID
	Region       string
}

// AssignConfirm loads the job and contractor, re-validates availability and
// fatigue for the requested window, checks for a direct overlap against the
// contractor's other non-cancelled assignments, and on success persists a
// new Assignment and publishes JobAssigned.
func (s *MutationService) AssignConfirm(ctx context.Context, req AssignConfirmRequest) (*domain.Assignment, error) {
	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	contractor, err := s.contractors.GetByID(ctx, req.ContractorID)
	if err != nil {
		return nil, err
	}
	if req.Window.StartUTC.IsZero() || !req.Window.StartUTC.Before(req.Window.EndUTC) {
		return nil, domain.InvalidArgument("assignment window start must be before end")
	}

	existing, err := s.assignments.GetByContractorID(ctx, req.ContractorID)
	if err != nil {
		return nil, err
	}

	blocking := make([]domain.TimeWindow, 0, len(existing))
	bookings := make([]fatigue.Booking, 0, len(existing))
	for _, a := range existing {
		if a.Status == domain.AssignmentCancelled {
			continue
		}
		if a.Window.Overlaps(req.Window) {
			return nil, domain.ConflictingAssignment(a.ID.String())
		}
		blocking = append(blocking, a.Window)
		bookings = append(bookings, fatigue.Booking{Window: a.Window})
	}

	availWindows, err := availability.Available(
		contractor.WorkingHours, req.Window, blocking, int(req.Window.Duration().Minutes()),
		contractor.BaseLocation.IanaZone, &contractor.Calendar,
	)
	if err != nil {
		return nil, err
	}
	if !containsWindow(availWindows, req.Window) {
		return nil, domain.NotAvailable("requested window falls outside contractor availability")
	}

	feasibility, err := fatigue.Evaluate(req.Window, bookings, contractor.BaseLocation.IanaZone, job.Priority == domain.PriorityRush)
	if err != nil {
		return nil, err
	}
	if !feasibility.IsFeasible {
		return nil, domain.NotAvailableWithBreak(feasibility.Reason, feasibility.RequiredBreakMinutes)
	}

	assignment := domain.NewAssignment(job.ID, contractor.ID, req.Window, req.Source)
	assignment.AuditID = req.AuditID
	if err := s.assignments.Add(ctx, assignment); err != nil {
		return nil, err
	}

	job.AssignmentIDs = append(job.AssignmentIDs, assignment.ID)
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	if req.AuditID != nil {
		if audit, auditErr := s.audits.GetByID(ctx, *req.AuditID); auditErr == nil {
			audit.SelectedContractorID = &contractor.ID
			if err := s.audits.Update(ctx, audit); err != nil {
				s.logger.Printf("mutations: failed to stamp audit %s with selected contractor: %v", req.AuditID, err)
			}
		}
	}

	source := "manual"
	if req.Source == domain.SourceAuto {
		source = "auto"
	}
	auditID := uuid.Nil
	if req.AuditID != nil {
		auditID = *req.AuditID
	}
	if s.publisher != nil {
		s.publisher.PublishJobAssigned(ctx, realtime.JobAssignedEvent{
			JobID:        job.ID,
			ContractorID: contractor.ID,
			AssignmentID: assignment.ID,
			StartUTC:     req.Window.StartUTC,
			EndUTC:       req.Window.EndUTC,
			Region:       req.Region,
			Source:       source,
			AuditID:      auditID,
		})
	}

	return assignment, nil
}

// RescheduleRequest carries the new window for an in-flight job.
type RescheduleRequest struct {
	JobID     uuid.UUID
	NewWindow domain.TimeWindow
	Region    string
}

// Reschedule validates the job's status, re-validates availability for
// every currently-assigned contractor against the new window, and on
// success updates the job and its active assignments, publishing
// JobRescheduled.
func (s *MutationService) Reschedule(ctx context.Context, req RescheduleRequest) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status == domain.JobCompleted || job.Status == domain.JobCancelled {
		return nil, domain.InvalidState("cannot reschedule a " + string(job.Status) + " job")
	}
	if !req.NewWindow.StartUTC.Before(req.NewWindow.EndUTC) {
		return nil, domain.InvalidArgument("reschedule window start must be before end")
	}

	activeAssignments, err := s.assignments.GetByJobID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	var toUpdate []*domain.Assignment
	for _, a := range activeAssignments {
		if a.Status.IsTerminal() {
			continue
		}

		contractor, err := s.contractors.GetByID(ctx, a.ContractorID)
		if err != nil {
			return nil, err
		}

		others, err := s.assignments.GetByContractorAndRange(ctx, a.ContractorID, req.NewWindow)
		if err != nil {
			return nil, err
		}
		for _, o := range others {
			if o.ID == a.ID || o.Status == domain.AssignmentCancelled {
				continue
			}
			if o.Window.Overlaps(req.NewWindow) {
				return nil, domain.ConflictingAssignment(o.ID.String())
			}
		}

		availWindows, err := availability.Available(
			contractor.WorkingHours, req.NewWindow, nil, int(req.NewWindow.Duration().Minutes()),
			contractor.BaseLocation.IanaZone, &contractor.Calendar,
		)
		if err != nil {
			return nil, err
		}
		if !containsWindow(availWindows, req.NewWindow) {
			return nil, domain.InvalidState("contractor " + a.ContractorID.String() + " is not available for the new window")
		}

		toUpdate = append(toUpdate, a)
	}

	previousWindow := job.ServiceWindow
	if err := job.Reschedule(req.NewWindow); err != nil {
		return nil, err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	for _, a := range toUpdate {
		if err := a.Reschedule(req.NewWindow); err != nil {
			return nil, err
		}
		if err := s.assignments.Update(ctx, a); err != nil {
			return nil, err
		}
	}

	if s.publisher != nil {
		s.publisher.PublishJobRescheduled(ctx, realtime.JobRescheduledEvent{
			JobID:            job.ID,
			PreviousStartUTC: previousWindow.StartUTC,
			PreviousEndUTC:   previousWindow.EndUTC,
			NewStartUTC:      req.NewWindow.StartUTC,
			NewEndUTC:        req.NewWindow.EndUTC,
			Region:           req.Region,
		}, assignmentContractorIDs(toUpdate))
	}

	return job, nil
}

// CancelRequest carries the reason for a job cancellation.
type CancelRequest struct {
	JobID  uuid.UUID
	Reason string
	Region string
}

// Cancel fails for a Completed or already-Cancelled job; otherwise cancels
// the job and every non-terminal assignment (Completed ones remain as
// history), then publishes JobCancelled.
func (s *MutationService) Cancel(ctx context.Context, req CancelRequest) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status == domain.JobCompleted {
		return nil, domain.InvalidState("cannot cancel a completed job")
	}
	if job.Status == domain.JobCancelled {
		return nil, domain.InvalidState("job already cancelled")
	}

	if err := job.Transition(domain.JobCancelled); err != nil {
		return nil, err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	existing, err := s.assignments.GetByJobID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	var cancelled []*domain.Assignment
	for _, a := range existing {
		if a.Status == domain.AssignmentCompleted || a.Status == domain.AssignmentCancelled {
			continue
		}
		if err := a.Cancel(); err != nil {
			return nil, err
		}
		if err := s.assignments.Update(ctx, a); err != nil {
			return nil, err
		}
		cancelled = append(cancelled, a)
	}

	if s.publisher != nil {
		s.publisher.PublishJobCancelled(ctx, realtime.JobCancelledEvent{
			JobID:  job.ID,
			Reason: req.Reason,
			Region: req.Region,
		}, assignmentContractorIDs(cancelled))
	}

	return job, nil
}

func containsWindow(windows []domain.TimeWindow, target domain.TimeWindow) bool {
	for _, w := range windows {
		if !w.StartUTC.After(target.StartUTC) && !w.EndUTC.Before(target.EndUTC) {
			return true
		}
	}
	return false
}

func assignmentContractorIDs(assignments []*domain.Assignment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ContractorID)
	}
	return ids
}
