// Package scoring implements the scoring and ranking pipeline: per-factor
// candidate scores, weighted combine, rotation boost, deterministic
// tie-breakers and rationale. Follows the weighted-metric style of
// calculateScheduleMetrics/generateImprovements in scheduling_service.go.
package scoring

import (
	"math"
	"sort"

	"github.com/pageza/smartscheduler/internal/domain"
)

const maxDistanceMeters = 100000.0

// Candidate is one contractor's scoring inputs for a single recommendation
// request.
type Candidate struct {
	ContractorID       string
	SlotCount          int
	TotalAvailableMins float64
	Rating             float64
	DistanceMeters     float64
	Utilization        float64 // in [0,1]; assigned/available minutes
	EarliestStartUnix  int64
	NextLegTravelMins  *float64 // nil means unknown, treated as +Inf for tie-breaking
}

// Breakdown is the per-factor score detail surfaced for audit and rationale.
type Breakdown struct {
	Availability  float64
	Rating        float64
	Distance      float64
	RotationBoost float64
}

// Scored is one ranked candidate in the pipeline's output.
type Scored struct {
	ContractorID string
	FinalScore   float64
	Breakdown    Breakdown
	Rationale    string
	candidate    Candidate
}

// AvailabilityScore implements the availability factor formula.
func AvailabilityScore(slotCount int, totalMinutes float64) float64 {
	countTerm := math.Min(100, float64(slotCount)/5*50)
	minutesTerm := math.Min(50, totalMinutes/(8*60)*50)
	return math.Min(100, countTerm+minutesTerm)
}

// DistanceScore implements the distance factor formula.
func DistanceScore(meters float64) float64 {
	if meters <= 0 {
		return 100
	}
	if meters > maxDistanceMeters {
		return 0
	}
	return 100 * math.Exp(-meters/15000)
}

// RotationBoost computes the additive, per-candidate rotation nudge. This
// value is the only rotation contribution added to a candidate's score; the
// bare config Boost constant is never added again on top of the pipeline
// sum.
func RotationBoost(rotation domain.RotationConfig, utilization float64) float64 {
	if !rotation.Enabled {
		return 0
	}
	u := utilization
	if u < 0 {
		u = 0
	}
	if u > 1 {
		u = 1
	}
	if u >= rotation.UnderUtilizationThreshold {
		return 0
	}
	return rotation.Boost * (1 - u/rotation.UnderUtilizationThreshold)
}

// Rank scores and orders candidates, applying hard filters (skill subset
// and zero-slot exclusion) before this call; Rank assumes candidates have
// already passed those filters.
func Rank(candidates []Candidate, weights domain.WeightsConfig) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		availability := AvailabilityScore(c.SlotCount, c.TotalAvailableMins)
		distance := DistanceScore(c.DistanceMeters)
		rotation := RotationBoost(weights.Rotation, c.Utilization)

		final := availability*weights.AvailabilityWeight +
			c.Rating*weights.RatingWeight +
			distance*weights.DistanceWeight +
			rotation
		final = clamp(final, 0, 100)

		breakdown := Breakdown{
			Availability:  availability,
			Rating:        c.Rating,
			Distance:      distance,
			RotationBoost: rotation,
		}

		scored = append(scored, Scored{
			ContractorID: c.ContractorID,
			FinalScore:   final,
			Breakdown:    breakdown,
			Rationale:    Rationale(breakdown, weights),
			candidate:    c,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return lessByTieBreak(scored[i], scored[j])
	})

	return scored
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// lessByTieBreak orders a before b: higher rounded score first, then three
// deterministic tie-breakers.
func lessByTieBreak(a, b Scored) bool {
	sa, sb := round2(a.FinalScore), round2(b.FinalScore)
	if sa != sb {
		return sa > sb
	}
	if a.candidate.EarliestStartUnix != b.candidate.EarliestStartUnix {
		return a.candidate.EarliestStartUnix < b.candidate.EarliestStartUnix
	}
	if a.candidate.Utilization != b.candidate.Utilization {
		return a.candidate.Utilization < b.candidate.Utilization
	}
	aTravel := travelOrInf(a.candidate.NextLegTravelMins)
	bTravel := travelOrInf(b.candidate.NextLegTravelMins)
	return aTravel < bTravel
}

func travelOrInf(v *float64) float64 {
	if v == nil {
		return math.Inf(1)
	}
	return *v
}
