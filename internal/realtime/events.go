package realtime

import (
	"time"

	"github.com/google/uuid"
)

// Event type discriminators. Every payload carries this as its mandatory
// "type" field for forward-compatible consumers.
const (
	EventRecommendationReady = "RecommendationReady"
	EventJobAssigned         = "JobAssigned"
	EventJobRescheduled      = "JobRescheduled"
	EventJobCancelled        = "JobCancelled"
)

// DispatchGroup returns the dispatch/{region} group name.
func DispatchGroup(region string) string { return "dispatch/" + region }

// ContractorGroup returns the contractor/{id} group name.
func ContractorGroup(contractorID uuid.UUID) string { return "contractor/" + contractorID.String() }

// RecommendationReadyEvent fans out to the dispatch group only. Published
// only when the caller opts in, to distinguish an explicit recalculation
// from an incidental read.
type RecommendationReadyEvent struct {
	Type          string    `json:"type"`
	JobID         uuid.UUID `json:"jobId"`
	RequestID     uuid.UUID `json:"requestId"`
	Region        string    `json:"region"`
	ConfigVersion int       `json:"configVersion"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// JobAssignedEvent fans out to the dispatch group and the assigned
// contractor's group.
type JobAssignedEvent struct {
	Type         string    `json:"type"`
	JobID        uuid.UUID `json:"jobId"`
	ContractorID uuid.UUID `json:"contractorId"`
	AssignmentID uuid.UUID `json:"assignmentId"`
	StartUTC     time.Time `json:"startUtc"`
	EndUTC       time.Time `json:"endUtc"`
	Region       string    `json:"region"`
	Source       string    `json:"source"`
	AuditID      uuid.UUID `json:"auditId"`
}

// JobRescheduledEvent fans out to the dispatch group and every previously
// assigned contractor's group.
type JobRescheduledEvent struct {
	Type              string    `json:"type"`
	JobID             uuid.UUID `json:"jobId"`
	PreviousStartUTC  time.Time `json:"previousStartUtc"`
	PreviousEndUTC    time.Time `json:"previousEndUtc"`
	NewStartUTC       time.Time `json:"newStartUtc"`
	NewEndUTC         time.Time `json:"newEndUtc"`
	Region            string    `json:"region"`
}

// JobCancelledEvent fans out to the dispatch group and every assigned
// contractor's group.
type JobCancelledEvent struct {
	Type   string    `json:"type"`
	JobID  uuid.UUID `json:"jobId"`
	Reason string    `json:"reason"`
	Region string    `json:"region"`
}

// DefaultCancelReason is used when the caller supplies no cancellation
// reason.
const DefaultCancelReason = "No reason provided"
