// Package slots implements the slot generator: from available sub-windows,
// produce up to three labeled slots, falling back to a multi-day split when
// the job doesn't fit in one workday. Follows the greedy scan in
// findNextAvailableSlot/optimizeJobSchedule, extended with a multi-day
// split for jobs spanning more than one workday.
package slots

import (
	"math"
	"time"

	"github.com/pageza/smartscheduler/internal/availability"
	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/fatigue"
	"github.com/pageza/smartscheduler/internal/travel"
)

const quarterHour = 15 * time.Minute

// Request bundles the slot generator's inputs so the signature stays
// manageable.
type Request struct {
	WorkingHours       []domain.WorkingHours
	ServiceWindow      domain.TimeWindow
	ExistingBookings   []fatigue.Booking
	JobDurationMinutes int
	ContractorZone     string
	Calendar           *domain.ContractorCalendar
	BaseEtaMinutes     *float64
	PrevEtaMinutes     *float64
	Rating             float64
	IsRush             bool
	RegionalMultiplier float64

	// EtaForWindow returns the applicable travel ETA in minutes for a given
	// candidate window, used to rank LowestTravel and compute confidence.
	// Returns (eta, true) when known, (0, false) when unknown/degraded.
	EtaForWindow func(w domain.TimeWindow) (float64, bool)
}

// Generate produces up to 3 GeneratedSlot values, deduplicated by
// (startUtc, type).
func Generate(req Request) ([]domain.GeneratedSlot, error) {
	rating := req.Rating
	if rating == 0 {
		rating = 50
	}

	buffer, err := estimateBuffer(req)
	if err != nil {
		return nil, err
	}

	minMinutes := buffer + req.JobDurationMinutes + 15

	blocking := make([]domain.TimeWindow, 0, len(req.ExistingBookings))
	for _, b := range req.ExistingBookings {
		blocking = append(blocking, b.Window)
	}

	windows, err := availability.Available(req.WorkingHours, req.ServiceWindow, blocking, minMinutes, req.ContractorZone, req.Calendar)
	if err != nil {
		return nil, err
	}

	jobDur := time.Duration(req.JobDurationMinutes) * time.Minute

	if len(windows) == 0 {
		multiDay, err := attemptMultiDaySplit(req, buffer)
		if err != nil {
			return nil, err
		}
		if multiDay != nil {
			return []domain.GeneratedSlot{*multiDay}, nil
		}
		return nil, nil
	}

	var candidates []domain.GeneratedSlot

	earliest := buildEarliestSlot(windows[0], buffer, jobDur)
	if feasible, err := checkFeasible(earliest.OverallWindow, req); err != nil {
		return nil, err
	} else if feasible {
		candidates = append(candidates, earliest)
	}

	lowestTravel := buildLowestTravelSlot(windows, buffer, jobDur, req.EtaForWindow)
	if lowestTravel != nil {
		if feasible, err := checkFeasible(lowestTravel.OverallWindow, req); err != nil {
			return nil, err
		} else if feasible {
			candidates = append(candidates, *lowestTravel)
		}
	}

	highestConfidence := buildHighestConfidenceSlot(windows, buffer, jobDur, rating, req.EtaForWindow)
	if highestConfidence != nil {
		if feasible, err := checkFeasible(highestConfidence.OverallWindow, req); err != nil {
			return nil, err
		} else if feasible {
			candidates = append(candidates, *highestConfidence)
		}
	}

	return dedupe(candidates), nil
}

func estimateBuffer(req Request) (int, error) {
	if req.BaseEtaMinutes != nil {
		return travel.BaseToFirst(*req.BaseEtaMinutes, multiplierOrDefault(req.RegionalMultiplier))
	}
	if req.PrevEtaMinutes != nil {
		return travel.JobToJob(*req.PrevEtaMinutes, multiplierOrDefault(req.RegionalMultiplier))
	}
	return 15, nil
}

func multiplierOrDefault(m float64) float64 {
	if m == 0 {
		return 1
	}
	return m
}

func checkFeasible(w domain.TimeWindow, req Request) (bool, error) {
	result, err := fatigue.Evaluate(w, req.ExistingBookings, req.ContractorZone, req.IsRush)
	if err != nil {
		return false, err
	}
	return result.IsFeasible, nil
}

func roundForwardToQuarterHour(t time.Time) time.Time {
	rem := t.Sub(t.Truncate(quarterHour))
	if rem == 0 {
		return t
	}
	return t.Truncate(quarterHour).Add(quarterHour)
}

func buildEarliestSlot(window domain.TimeWindow, bufferMinutes int, jobDur time.Duration) domain.GeneratedSlot {
	start := window.StartUTC.Add(time.Duration(bufferMinutes) * time.Minute)
	if start.Before(window.StartUTC) {
		start = roundForwardToQuarterHour(start)
	}
	end := start.Add(jobDur)
	overall := domain.TimeWindow{StartUTC: start, EndUTC: end}
	return domain.GeneratedSlot{
		OverallWindow: overall,
		DailyWindows:  []domain.TimeWindow{overall},
		Type:          domain.SlotEarliest,
		Confidence:    confidenceFor(window, jobDur, 50, nil),
	}
}

func buildLowestTravelSlot(windows []domain.TimeWindow, bufferMinutes int, jobDur time.Duration, etaFn func(domain.TimeWindow) (float64, bool)) *domain.GeneratedSlot {
	if etaFn == nil {
		return nil
	}
	type candidate struct {
		window domain.TimeWindow
		eta    float64
		start  time.Time
	}
	var best *candidate
	for _, w := range windows {
		start := w.StartUTC.Add(time.Duration(bufferMinutes) * time.Minute)
		end := start.Add(jobDur)
		if end.After(w.EndUTC) {
			continue
		}
		overall := domain.TimeWindow{StartUTC: start, EndUTC: end}
		eta, ok := etaFn(overall)
		if !ok {
			continue
		}
		if best == nil || eta < best.eta || (eta == best.eta && start.Before(best.start)) {
			best = &candidate{window: overall, eta: eta, start: start}
		}
	}
	if best == nil {
		return nil
	}
	return &domain.GeneratedSlot{
		OverallWindow: best.window,
		DailyWindows:  []domain.TimeWindow{best.window},
		Type:          domain.SlotLowestTravel,
		Confidence:    confidenceFor(best.window, jobDur, 50, &best.eta),
	}
}

func buildHighestConfidenceSlot(windows []domain.TimeWindow, bufferMinutes int, jobDur time.Duration, rating float64, etaFn func(domain.TimeWindow) (float64, bool)) *domain.GeneratedSlot {
	var best *domain.GeneratedSlot
	var bestConfidence = -1.0
	for _, w := range windows {
		start := w.StartUTC.Add(time.Duration(bufferMinutes) * time.Minute)
		end := start.Add(jobDur)
		if end.After(w.EndUTC) {
			continue
		}
		overall := domain.TimeWindow{StartUTC: start, EndUTC: end}
		var etaPtr *float64
		if etaFn != nil {
			if eta, ok := etaFn(overall); ok {
				etaPtr = &eta
			}
		}
		conf := confidenceFor(w, jobDur, rating, etaPtr)
		if conf > bestConfidence {
			bestConfidence = conf
			best = &domain.GeneratedSlot{
				OverallWindow: overall,
				DailyWindows:  []domain.TimeWindow{overall},
				Type:          domain.SlotHighestConfidence,
				Confidence:    conf,
			}
		}
	}
	return best
}

// confidenceFor implements
// clamp(50 + 0.2*min(100, windowMinutes/10) + 0.2*max(0, 100-eta/2) + 0.6*rating, 0, 100).
func confidenceFor(window domain.TimeWindow, jobDur time.Duration, rating float64, etaMinutes *float64) float64 {
	windowMinutes := window.Duration().Minutes()
	etaTerm := 100.0
	if etaMinutes != nil {
		etaTerm = math.Max(0, 100-*etaMinutes/2)
	}
	confidence := 50 + 0.2*math.Min(100, windowMinutes/10) + 0.2*etaTerm + 0.6*rating
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	return confidence
}

func dedupe(slots []domain.GeneratedSlot) []domain.GeneratedSlot {
	seen := map[string]bool{}
	out := make([]domain.GeneratedSlot, 0, len(slots))
	for _, s := range slots {
		key := s.OverallWindow.StartUTC.Format(time.RFC3339) + "|" + string(s.Type)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// attemptMultiDaySplit tries 2- and 3-day splits when no single-day slot
// satisfies the job duration. Splits duration evenly across days, the last
// day taking the remainder.
func attemptMultiDaySplit(req Request, bufferMinutes int) (*domain.GeneratedSlot, error) {
	for _, daysSpan := range []int{2, 3} {
		slot, err := tryDaysSpan(req, bufferMinutes, daysSpan)
		if err != nil {
			return nil, err
		}
		if slot != nil {
			return slot, nil
		}
	}
	return nil, nil
}

func tryDaysSpan(req Request, bufferMinutes, daysSpan int) (*domain.GeneratedSlot, error) {
	dates, err := consecutiveWorkingDates(req, daysSpan)
	if err != nil {
		return nil, err
	}
	if len(dates) < daysSpan {
		return nil, nil
	}

	perDay := req.JobDurationMinutes / daysSpan
	remainder := req.JobDurationMinutes - perDay*(daysSpan-1)

	var daily []domain.TimeWindow
	for i, date := range dates {
		dur := perDay
		if i == len(dates)-1 {
			dur = remainder
		}
		entry, ok := workingHoursForDate(req.WorkingHours, date)
		if !ok {
			return nil, nil
		}
		dayStart, err := combineDateClockUTC(date, entry.StartLocal, req.ContractorZone)
		if err != nil {
			return nil, err
		}
		start := dayStart
		if i == 0 {
			start = start.Add(time.Duration(bufferMinutes) * time.Minute)
		}
		start = roundForwardToQuarterHour(start)
		end := start.Add(time.Duration(dur) * time.Minute)

		dayEnd, err := combineDateClockUTC(date, entry.EndLocal, req.ContractorZone)
		if err != nil {
			return nil, err
		}
		if end.After(dayEnd) {
			return nil, nil
		}
		daily = append(daily, domain.TimeWindow{StartUTC: start, EndUTC: end})
	}

	overall := domain.TimeWindow{StartUTC: daily[0].StartUTC, EndUTC: daily[len(daily)-1].EndUTC}

	result, err := fatigue.EvaluateSpan(daily, req.ExistingBookings, req.ContractorZone, req.IsRush)
	if err != nil {
		return nil, err
	}
	if !result.IsFeasible {
		return nil, nil
	}

	return &domain.GeneratedSlot{
		OverallWindow: overall,
		DailyWindows:  daily,
		Type:          domain.SlotEarliest,
		Confidence:    confidenceFor(overall, time.Duration(req.JobDurationMinutes)*time.Minute, req.Rating, nil),
	}, nil
}

func consecutiveWorkingDates(req Request, count int) ([]time.Time, error) {
	loc, err := zoneOf(req.ContractorZone)
	if err != nil {
		return nil, err
	}
	localStart := req.ServiceWindow.StartUTC.In(loc)
	localEnd := req.ServiceWindow.EndUTC.In(loc)

	var out []time.Time
	cursor := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, loc)
	for !cursor.After(localEnd) && len(out) < count {
		if _, ok := workingHoursForDate(req.WorkingHours, cursor); ok {
			if isHoliday(req.Calendar, cursor, loc) {
				cursor = cursor.AddDate(0, 0, 1)
				continue
			}
			out = append(out, cursor)
		} else if len(out) > 0 {
			break
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return out, nil
}

func isHoliday(cal *domain.ContractorCalendar, date time.Time, loc *time.Location) bool {
	if cal == nil {
		return false
	}
	key := date.Format("2006-01-02")
	for _, h := range cal.Holidays {
		if h.Format("2006-01-02") == key {
			return true
		}
	}
	return false
}

func workingHoursForDate(wh []domain.WorkingHours, date time.Time) (domain.WorkingHours, bool) {
	weekday := domain.WeekDay(date.Weekday())
	for _, entry := range wh {
		if entry.DayOfWeek == weekday {
			return entry, true
		}
	}
	return domain.WorkingHours{}, false
}

func zoneOf(iana string) (*time.Location, error) {
	return time.LoadLocation(iana)
}

func combineDateClockUTC(date time.Time, clock string, iana string) (time.Time, error) {
	loc, err := zoneOf(iana)
	if err != nil {
		return time.Time{}, domain.InvalidArgument("unknown IANA timezone: " + iana).Wrap(err)
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, domain.InvalidArgument("malformed working-hours clock value: " + clock).Wrap(err)
	}
	local := time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	return local.UTC(), nil
}
