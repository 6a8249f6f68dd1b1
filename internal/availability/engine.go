// Package availability implements the availability engine: expanding weekly
// working hours across a service window in contractor-local time, applying
// calendar exceptions, and subtracting existing bookings. Follows
// checkUserAvailability in scheduling_service.go, generalized from a flat
// business-hours subtraction into a full windowing algorithm.
package availability

import (
	"sort"
	"time"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/geo"
)

// Available enumerates usable UTC time windows, each at least minMinutes
// long, given weekly working hours, the outer service window, blocking
// windows already booked, and the contractor's calendar exceptions.
func Available(
	workingHours []domain.WorkingHours,
	serviceWindow domain.TimeWindow,
	blockingWindows []domain.TimeWindow,
	minMinutes int,
	contractorZone string,
	calendar *domain.ContractorCalendar,
) ([]domain.TimeWindow, error) {
	loc, err := geo.LoadZone(contractorZone)
	if err != nil {
		return nil, err
	}

	localStart := serviceWindow.StartUTC.In(loc)
	localEnd := serviceWindow.EndUTC.In(loc)

	holidaySet := map[string]bool{}
	overrides := map[string]domain.WorkingHours{}
	if calendar != nil {
		for _, h := range calendar.Holidays {
			holidaySet[h.Format("2006-01-02")] = true
		}
		for _, ex := range calendar.Exceptions {
			key := ex.Date.Format("2006-01-02")
			switch ex.Type {
			case domain.ExceptionHoliday:
				holidaySet[key] = true
			case domain.ExceptionOverride:
				if ex.OverrideHours != nil {
					overrides[key] = *ex.OverrideHours
				}
			}
		}
	}

	var pieces []domain.TimeWindow

	cursor := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, loc)
	for !cursor.After(localEnd) {
		dateKey := cursor.Format("2006-01-02")
		if holidaySet[dateKey] {
			cursor = cursor.AddDate(0, 0, 1)
			continue
		}

		var dayEntries []domain.WorkingHours
		if override, ok := overrides[dateKey]; ok {
			dayEntries = []domain.WorkingHours{override}
		} else {
			weekday := domain.WeekDay(cursor.Weekday())
			for _, wh := range workingHours {
				if wh.DayOfWeek == weekday {
					dayEntries = append(dayEntries, wh)
				}
			}
		}

		for _, entry := range dayEntries {
			startLocal, err := combineDateAndClock(cursor, entry.StartLocal, loc)
			if err != nil {
				return nil, err
			}
			endLocal, err := combineDateAndClock(cursor, entry.EndLocal, loc)
			if err != nil {
				return nil, err
			}
			if endLocal.Before(startLocal) || endLocal.Equal(startLocal) {
				endLocal = endLocal.AddDate(0, 0, 1)
			}

			if startLocal.Before(localStart) {
				startLocal = localStart
			}
			if endLocal.After(localEnd) {
				endLocal = localEnd
			}
			if !startLocal.Before(endLocal) {
				continue
			}

			pieces = append(pieces, domain.TimeWindow{
				StartUTC: startLocal.UTC(),
				EndUTC:   endLocal.UTC(),
			})
		}

		cursor = cursor.AddDate(0, 0, 1)
	}

	sort.Slice(pieces, func(i, j int) bool {
		return pieces[i].StartUTC.Before(pieces[j].StartUTC)
	})
	pieces = mergeAdjacent(pieces)

	free := subtractAll(pieces, blockingWindows)

	minDur := time.Duration(minMinutes) * time.Minute
	out := make([]domain.TimeWindow, 0, len(free))
	for _, w := range free {
		if w.Duration() >= minDur {
			out = append(out, w)
		}
	}
	return out, nil
}

func combineDateAndClock(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	h, m, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, loc), nil
}

func parseClock(clock string) (hour, minute int, err error) {
	t, parseErr := time.Parse("15:04", clock)
	if parseErr != nil {
		return 0, 0, domain.InvalidArgument("malformed working-hours clock value: " + clock).Wrap(parseErr)
	}
	return t.Hour(), t.Minute(), nil
}

// mergeAdjacent coalesces touching or overlapping windows so subtraction
// below doesn't need to reason about pieces split across the day boundary.
func mergeAdjacent(windows []domain.TimeWindow) []domain.TimeWindow {
	if len(windows) == 0 {
		return windows
	}
	out := []domain.TimeWindow{windows[0]}
	for _, w := range windows[1:] {
		last := &out[len(out)-1]
		if !w.StartUTC.After(last.EndUTC) {
			if w.EndUTC.After(last.EndUTC) {
				last.EndUTC = w.EndUTC
			}
			continue
		}
		out = append(out, w)
	}
	return out
}

// subtractAll removes every blocking window from every available piece.
// Adjacent touches do not split: [a,b) minus [b,c) leaves [a,b) intact.
func subtractAll(available, blocking []domain.TimeWindow) []domain.TimeWindow {
	result := available
	for _, b := range blocking {
		var next []domain.TimeWindow
		for _, w := range result {
			next = append(next, subtractOne(w, b)...)
		}
		result = next
	}
	return result
}

func subtractOne(w, block domain.TimeWindow) []domain.TimeWindow {
	if !w.Overlaps(block) {
		return []domain.TimeWindow{w}
	}
	var out []domain.TimeWindow
	if block.StartUTC.After(w.StartUTC) {
		out = append(out, domain.TimeWindow{StartUTC: w.StartUTC, EndUTC: block.StartUTC})
	}
	if block.EndUTC.Before(w.EndUTC) {
		out = append(out, domain.TimeWindow{StartUTC: block.EndUTC, EndUTC: w.EndUTC})
	}
	return out
}
