package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/smartscheduler/internal/availability"
	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/externals"
	"github.com/pageza/smartscheduler/internal/fatigue"
	"github.com/pageza/smartscheduler/internal/realtime"
	"github.com/pageza/smartscheduler/internal/repository"
	"github.com/pageza/smartscheduler/internal/scoring"
	"github.com/pageza/smartscheduler/internal/slots"
	"github.com/pageza/smartscheduler/internal/weights"
)

// RecommendationService is the ranking pipeline: for each candidate
// contractor passing the hard filters, it runs the availability engine, the
// slot generator (which in turn consults travel-buffer and fatigue), scores
// the result, and ranks the survivors.
type RecommendationService struct {
	contractors repository.ContractorRepo
	jobs        repository.JobRepo
	assignments repository.AssignmentRepo
	audits      repository.AuditRecommendationRepo
	weights     *weights.Cache
	distance    *externals.DistanceClient
	matrix      *externals.ETAMatrix
	publisher   *realtime.Publisher
	logger      *log.Logger
}

// NewRecommendationService wires the pipeline's collaborators. matrix may be
// nil, in which case every candidate's ETA is fetched individually through
// distance instead of in one batched call.
func NewRecommendationService(
	contractors repository.ContractorRepo,
	jobs repository.JobRepo,
	assignments repository.AssignmentRepo,
	audits repository.AuditRecommendationRepo,
	weightsCache *weights.Cache,
	distance *externals.DistanceClient,
	matrix *externals.ETAMatrix,
	publisher *realtime.Publisher,
	logger *log.Logger,
) *RecommendationService {
	return &RecommendationService{
		contractors: contractors,
		jobs:        jobs,
		assignments: assignments,
		audits:      audits,
		weights:     weightsCache,
		distance:    distance,
		matrix:      matrix,
		publisher:   publisher,
		logger:      logger,
	}
}

// candidateWork bundles a scored contractor with the slots that produced its
// score, so the response can surface both without recomputing anything.
type candidateWork struct {
	contractor *domain.Contractor
	scoreInput scoring.Candidate
	slots      []domain.GeneratedSlot
}

// Recommend runs the full pipeline for jobID and returns up to
// min(maxResults, 50) ranked candidates.
func (s *RecommendationService) Recommend(ctx context.Context, req RecommendationRequest) (*RecommendationResponse, error) {
	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	contractors, err := s.contractors.GetBySkills(ctx, job.RequiredSkills)
	if err != nil {
		return nil, err
	}

	activeWeights := s.weights.Current()

	etaByContractor := s.precomputeETAs(ctx, contractors, job)

	work := make([]candidateWork, 0, len(contractors))
	for _, contractor := range contractors {
		cw, ok, err := s.evaluateCandidate(ctx, contractor, job, etaByContractor[contractor.ID])
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		work = append(work, cw)
	}

	scoringCandidates := make([]scoring.Candidate, 0, len(work))
	for _, w := range work {
		scoringCandidates = append(scoringCandidates, w.scoreInput)
	}
	ranked := scoring.Rank(scoringCandidates, activeWeights)

	limit := clampMaxResults(req.MaxResults)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	slotsByContractor := make(map[string][]domain.GeneratedSlot, len(work))
	for _, w := range work {
		slotsByContractor[w.scoreInput.ContractorID] = w.slots
	}

	candidates := make([]CandidateRecommendation, 0, len(ranked))
	for _, r := range ranked {
		contractorID, parseErr := uuid.Parse(r.ContractorID)
		if parseErr != nil {
			continue
		}
		candidates = append(candidates, CandidateRecommendation{
			ContractorID: contractorID,
			FinalScore:   r.FinalScore,
			Breakdown:    r.Breakdown,
			Rationale:    r.Rationale,
			Slots:        slotsByContractor[r.ContractorID],
		})
	}

	var best *uuid.UUID
	if len(candidates) > 0 {
		id := candidates[0].ContractorID
		best = &id
	}

	response := &RecommendationResponse{
		RequestID:                      uuid.New(),
		Candidates:                     candidates,
		BestRecommendationContractorID: best,
		ConfigVersion:                  activeWeights.Version,
		GeneratedAt:                    time.Now().UTC(),
	}

	s.persistAuditAsync(req, response)

	if req.PublishReady && s.publisher != nil {
		s.publisher.PublishRecommendationReady(context.Background(), realtime.RecommendationReadyEvent{
			JobID:         job.ID,
			RequestID:     response.RequestID,
			Region:        req.Region,
			ConfigVersion: response.ConfigVersion,
			GeneratedAt:   response.GeneratedAt,
		})
	}

	return response, nil
}

// precomputeETAs asks the batched ETA matrix for every contractor-base ->
// job-location leg in a single round trip, avoiding N serial upstream calls
// when scoring N candidates. A nil matrix (no Redis/batcher configured) or a
// miss on any given pair simply falls back to evaluateCandidate's
// per-candidate distance.ETA call.
func (s *RecommendationService) precomputeETAs(ctx context.Context, contractors []*domain.Contractor, job *domain.Job) map[uuid.UUID]float64 {
	result := make(map[uuid.UUID]float64, len(contractors))
	if s.matrix == nil || len(contractors) == 0 {
		return result
	}

	origins := make([]domain.GeoLocation, 0, len(contractors))
	for _, c := range contractors {
		origins = append(origins, c.BaseLocation)
	}
	dests := []domain.GeoLocation{job.Location}

	etas, err := s.matrix.ETAs(ctx, origins, dests)
	if err != nil {
		s.logger.Printf("recommendation: batched ETA lookup failed, falling back to per-candidate calls: %v", err)
		return result
	}

	for i, c := range contractors {
		if mins, ok := etas[externals.PairKey{Origin: i, Dest: 0}]; ok {
			result[c.ID] = mins
		}
	}
	return result
}

// evaluateCandidate applies the hard filters (skill subset, zero-slot
// exclusion) and, for survivors, builds the scoring input. The second
// return value is false when the candidate should be dropped silently.
// precomputedETAMins, when non-zero, is used instead of issuing a fresh
// distance.ETA call for this contractor's leg.
func (s *RecommendationService) evaluateCandidate(ctx context.Context, contractor *domain.Contractor, job *domain.Job, precomputedETAMins float64) (candidateWork, bool, error) {
	if !contractor.HasSkills(job.RequiredSkills) {
		return candidateWork{}, false, nil
	}

	existing, err := s.assignments.GetByContractorID(ctx, contractor.ID)
	if err != nil {
		return candidateWork{}, false, err
	}

	bookings := make([]fatigue.Booking, 0, len(existing))
	blocking := make([]domain.TimeWindow, 0, len(existing))
	assignedMinutes := 0.0
	for _, a := range existing {
		if a.Status == domain.AssignmentCancelled {
			continue
		}
		bookings = append(bookings, fatigue.Booking{Window: a.Window})
		blocking = append(blocking, a.Window)
		assignedMinutes += a.Window.Duration().Minutes()
	}

	distanceResult, err := s.distance.Distance(ctx, contractor.BaseLocation, job.Location)
	if err != nil {
		return candidateWork{}, false, err
	}

	var etaResult externals.ETAResult
	if precomputedETAMins > 0 {
		mins := precomputedETAMins
		etaResult = externals.ETAResult{Minutes: &mins, Source: "matrix"}
	} else {
		etaResult, err = s.distance.ETA(ctx, contractor.BaseLocation, job.Location)
		if err != nil {
			return candidateWork{}, false, err
		}
	}

	availWindows, err := availability.Available(
		contractor.WorkingHours, job.ServiceWindow, blocking, job.DurationMinutes,
		contractor.BaseLocation.IanaZone, &contractor.Calendar,
	)
	if err != nil {
		s.logger.Printf("recommendation: availability check failed for contractor %s: %v", contractor.ID, err)
		return candidateWork{}, false, nil
	}
	if len(availWindows) == 0 {
		return candidateWork{}, false, nil
	}

	totalAvailableMins := 0.0
	for _, w := range availWindows {
		totalAvailableMins += w.Duration().Minutes()
	}

	generated, err := slots.Generate(slots.Request{
		WorkingHours:       contractor.WorkingHours,
		ServiceWindow:      job.ServiceWindow,
		ExistingBookings:   bookings,
		JobDurationMinutes: job.DurationMinutes,
		ContractorZone:     contractor.BaseLocation.IanaZone,
		Calendar:           &contractor.Calendar,
		BaseEtaMinutes:     etaResult.Minutes,
		Rating:             contractor.Rating,
		IsRush:             job.Priority == domain.PriorityRush,
		RegionalMultiplier: 1.0,
		EtaForWindow: func(domain.TimeWindow) (float64, bool) {
			if etaResult.Minutes == nil {
				return 0, false
			}
			return *etaResult.Minutes, true
		},
	})
	if err != nil {
		s.logger.Printf("recommendation: slot generation failed for contractor %s: %v", contractor.ID, err)
		return candidateWork{}, false, nil
	}
	if len(generated) == 0 {
		return candidateWork{}, false, nil
	}

	utilization := 0.0
	if totalAvailableMins > 0 {
		utilization = assignedMinutes / totalAvailableMins
	}

	meters := 0.0
	if distanceResult.Meters != nil {
		meters = *distanceResult.Meters
	}

	return candidateWork{
		contractor: contractor,
		scoreInput: scoring.Candidate{
			ContractorID:       contractor.ID.String(),
			SlotCount:          len(availWindows),
			TotalAvailableMins: totalAvailableMins,
			Rating:             contractor.Rating,
			DistanceMeters:     meters,
			Utilization:        utilization,
			EarliestStartUnix:  generated[0].OverallWindow.StartUTC.Unix(),
			NextLegTravelMins:  etaResult.Minutes,
		},
		slots: generated,
	}, true, nil
}

// persistAuditAsync writes the AuditRecommendation off the request path so
// audit persistence never blocks the response. Failures are logged, never
// surfaced; audit persistence is best-effort.
func (s *RecommendationService) persistAuditAsync(req RecommendationRequest, resp *RecommendationResponse) {
	requestPayload, err := json.Marshal(req)
	if err != nil {
		s.logger.Printf("recommendation: failed to marshal audit request payload: %v", err)
		return
	}
	candidatesJSON, err := json.Marshal(resp.Candidates)
	if err != nil {
		s.logger.Printf("recommendation: failed to marshal audit candidates payload: %v", err)
		return
	}

	record := &domain.AuditRecommendation{
		ID:             uuid.New(),
		RequestID:      resp.RequestID,
		RequestPayload: requestPayload,
		CandidatesJSON: candidatesJSON,
		ConfigVersion:  resp.ConfigVersion,
		ActorID:        req.ActorID,
		CreatedAt:      time.Now().UTC(),
	}

	go func() {
		if err := s.audits.Add(context.Background(), record); err != nil {
			s.logger.Printf("recommendation: failed to persist audit record for request %s: %v", resp.RequestID, err)
		}
	}()
}
