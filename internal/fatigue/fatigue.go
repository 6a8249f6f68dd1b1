// Package fatigue implements the fatigue calculator: daily-hours caps and
// the consecutive-jobs break rule. Built in the procedural, sorted-slice
// style of scheduling_service.go's availability helpers.
package fatigue

import (
	"sort"
	"time"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/geo"
)

const (
	hardStopHours          = 12.0
	softCapHours           = 10.0
	maxConsecutiveJobs     = 4
	consecutiveGapMinutes  = 15
	requiredBreakMinutes   = 15
)

// Booking is the subset of an Assignment the fatigue calculator needs.
type Booking struct {
	Window domain.TimeWindow
}

// Evaluate checks whether a proposed [start,end) slot is feasible for a
// contractor given their existing assignments in the same contractor-local
// day.
func Evaluate(proposed domain.TimeWindow, existing []Booking, contractorZone string, isRush bool) (domain.FeasibilityResult, error) {
	loc, err := geo.LoadZone(contractorZone)
	if err != nil {
		return domain.FeasibilityResult{}, err
	}

	dayKey := proposed.StartUTC.In(loc).Format("2006-01-02")

	var sameDay []Booking
	for _, b := range existing {
		if b.Window.StartUTC.In(loc).Format("2006-01-02") == dayKey {
			sameDay = append(sameDay, b)
		}
	}

	totalMinutes := proposed.Duration().Minutes()
	for _, b := range sameDay {
		totalMinutes += b.Window.Duration().Minutes()
	}
	totalHours := totalMinutes / 60.0

	if totalHours > hardStopHours {
		return domain.FeasibilityResult{IsFeasible: false, Reason: "hard stop: daily hours exceed 12h limit"}, nil
	}
	if totalHours > softCapHours && !isRush {
		return domain.FeasibilityResult{IsFeasible: false, Reason: "soft cap: daily hours exceed 10h limit for non-rush work"}, nil
	}

	chain := append(append([]Booking{}, sameDay...), Booking{Window: proposed})
	sort.Slice(chain, func(i, j int) bool {
		return chain[i].Window.StartUTC.Before(chain[j].Window.StartUTC)
	})

	proposedIdx := -1
	for i, b := range chain {
		if b.Window.StartUTC.Equal(proposed.StartUTC) && b.Window.EndUTC.Equal(proposed.EndUTC) {
			proposedIdx = i
		}
	}

	// Walk backward through the chain counting assignments that immediately
	// abut their successor (gap < 15 min), including the proposed slot itself.
	consecutive := 1
	for i := proposedIdx; i > 0; i-- {
		gap := chain[i].Window.StartUTC.Sub(chain[i-1].Window.EndUTC)
		if gap < consecutiveGapMinutes*time.Minute {
			consecutive++
			continue
		}
		break
	}

	if consecutive > maxConsecutiveJobs {
		return domain.FeasibilityResult{
			IsFeasible:           false,
			Reason:               "consecutive jobs: exceeds max of 4 back-to-back assignments without a break",
			RequiredBreakMinutes: requiredBreakMinutes,
		}, nil
	}

	return domain.FeasibilityResult{IsFeasible: true}, nil
}

// EvaluateSpan checks feasibility of a job split across multiple
// contractor-local days, evaluating each day's piece independently against
// that day's existing bookings. The multi-day split path must use this
// instead of Evaluate: feeding the whole concatenated span to Evaluate would
// sum every day's hours together and trip the hard-stop cap on any split
// long enough to need more than one day in the first place.
func EvaluateSpan(dailyWindows []domain.TimeWindow, existing []Booking, contractorZone string, isRush bool) (domain.FeasibilityResult, error) {
	for _, day := range dailyWindows {
		result, err := Evaluate(day, existing, contractorZone, isRush)
		if err != nil {
			return domain.FeasibilityResult{}, err
		}
		if !result.IsFeasible {
			return result, nil
		}
	}
	return domain.FeasibilityResult{IsFeasible: true}, nil
}
