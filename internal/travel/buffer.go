// Package travel implements the travel-buffer service: deterministic buffer
// sizing from an ETA estimate. Follows the route/ETA helpers in
// scheduling_service.go, generalized to a clamp formula (no buffer clamp of
// its own existed before).
package travel

import (
	"math"

	"github.com/pageza/smartscheduler/internal/domain"
)

const (
	minBufferMinutes = 10
	maxBufferMinutes = 45
	bufferRatio      = 0.25
)

// BufferMinutes computes clamp(round(eta * 0.25 * multiplier), 10, 45).
// eta<0 or multiplier<=0 fail with InvalidArgument.
func BufferMinutes(etaMinutes float64, regionalMultiplier float64) (int, error) {
	if etaMinutes < 0 {
		return 0, domain.InvalidArgument("eta minutes must be non-negative")
	}
	multiplier := regionalMultiplier
	if multiplier <= 0 {
		return 0, domain.InvalidArgument("regional multiplier must be positive")
	}

	raw := math.Round(etaMinutes * bufferRatio * multiplier)
	clamped := int(raw)
	if clamped < minBufferMinutes {
		clamped = minBufferMinutes
	}
	if clamped > maxBufferMinutes {
		clamped = maxBufferMinutes
	}
	return clamped, nil
}

// BaseToFirst estimates the buffer between a contractor's base location and
// their first job of the day.
func BaseToFirst(etaMinutes float64, regionalMultiplier float64) (int, error) {
	return BufferMinutes(etaMinutes, regionalMultiplier)
}

// JobToJob estimates the buffer between two consecutive jobs.
func JobToJob(etaMinutes float64, regionalMultiplier float64) (int, error) {
	return BufferMinutes(etaMinutes, regionalMultiplier)
}

// LastToBase estimates the buffer between a contractor's last job and
// returning to base; carried for symmetry even though the MVP scoring path
// never needs the return leg.
func LastToBase(etaMinutes float64, regionalMultiplier float64) (int, error) {
	return BufferMinutes(etaMinutes, regionalMultiplier)
}
