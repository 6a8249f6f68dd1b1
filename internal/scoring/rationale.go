package scoring

import (
	"fmt"

	"github.com/pageza/smartscheduler/internal/domain"
)

const maxRationaleLength = 200

// Rationale builds a deterministic, ≤200-char string naming the
// highest-weighted contributing factor by breakdown value. Identical
// inputs always produce an identical string.
func Rationale(b Breakdown, weights domain.WeightsConfig) string {
	type factor struct {
		name       string
		weighted   float64
		rawValue   float64
	}
	factors := []factor{
		{"availability", b.Availability * weights.AvailabilityWeight, b.Availability},
		{"rating", b.Rating * weights.RatingWeight, b.Rating},
		{"distance", b.Distance * weights.DistanceWeight, b.Distance},
	}

	best := factors[0]
	for _, f := range factors[1:] {
		if f.weighted > best.weighted {
			best = f
		}
	}

	rationale := fmt.Sprintf("Ranked primarily on %s (score %.1f, weighted %.1f).", best.name, best.rawValue, best.weighted)
	if b.RotationBoost > 0 {
		rationale += fmt.Sprintf(" Rotation boost +%.1f.", b.RotationBoost)
	}

	if len(rationale) > maxRationaleLength {
		rationale = rationale[:maxRationaleLength]
	}
	return rationale
}
