// Package services implements the mutation handlers and the recommendation
// pipeline orchestration: the request/response shapes that wrap the lower
// packages (availability, slots, scoring, fatigue, travel) into the two
// public operations the rest of the system calls. Follows the
// constructor-with-repos-and-logger shape of SchedulingServiceImpl in
// scheduling_service.go.
package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/scoring"
)

// RecommendationRequest is the ranking pipeline's input. The job itself is
// loaded by JobID from the repository; callers never pass job fields
// directly, so the pipeline always scores against persisted state.
type RecommendationRequest struct {
	JobID      uuid.UUID
	Region     string
	MaxResults int
	ActorID    string
	// PublishReady opts in to a RecommendationReady realtime event.
	PublishReady bool
}

// CandidateRecommendation is one ranked contractor in the response.
type CandidateRecommendation struct {
	ContractorID uuid.UUID
	FinalScore   float64
	Breakdown    scoring.Breakdown
	Rationale    string
	Slots        []domain.GeneratedSlot
}

// RecommendationResponse is the ranking pipeline's output.
type RecommendationResponse struct {
	RequestID                      uuid.UUID
	Candidates                      []CandidateRecommendation
	BestRecommendationContractorID *uuid.UUID
	ConfigVersion                  int
	GeneratedAt                    time.Time
}

const maxAllowedResults = 50

func clampMaxResults(requested int) int {
	if requested <= 0 || requested > maxAllowedResults {
		return maxAllowedResults
	}
	return requested
}
