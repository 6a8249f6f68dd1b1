package slots

import (
	"testing"
	"time"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/fatigue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWin(t *testing.T, start, end time.Time) domain.TimeWindow {
	t.Helper()
	w, err := domain.NewTimeWindow(start, end)
	require.NoError(t, err)
	return w
}

func TestGenerateSingleDayProducesAtMostThreeDistinctSlots(t *testing.T) {
	wh := []domain.WorkingHours{
		{DayOfWeek: domain.Monday, StartLocal: "09:00", EndLocal: "17:00", IanaZone: "America/New_York"},
	}
	window := mustWin(t, time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC), time.Date(2025, 1, 13, 22, 0, 0, 0, time.UTC))

	req := Request{
		WorkingHours:       wh,
		ServiceWindow:      window,
		JobDurationMinutes: 60,
		ContractorZone:     "America/New_York",
		Rating:             80,
		EtaForWindow: func(w domain.TimeWindow) (float64, bool) {
			return 20, true
		},
	}

	result, err := Generate(req)
	require.NoError(t, err)
	require.NotEmpty(t, result)
	assert.LessOrEqual(t, len(result), 3)

	for _, s := range result {
		assert.NotEmpty(t, s.DailyWindows)
	}
}

func TestGenerateMultiDaySplitWhenJobTooLong(t *testing.T) {
	wh := []domain.WorkingHours{
		{DayOfWeek: domain.Monday, StartLocal: "09:00", EndLocal: "17:00", IanaZone: "UTC"},
		{DayOfWeek: domain.Tuesday, StartLocal: "09:00", EndLocal: "17:00", IanaZone: "UTC"},
		{DayOfWeek: domain.Wednesday, StartLocal: "09:00", EndLocal: "17:00", IanaZone: "UTC"},
	}
	// Monday 2025-01-13 through Friday.
	window := mustWin(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC))

	req := Request{
		WorkingHours:       wh,
		ServiceWindow:      window,
		JobDurationMinutes: 960,
		ContractorZone:     "UTC",
	}

	result, err := Generate(req)
	require.NoError(t, err)
	require.Len(t, result, 1)

	slot := result[0]
	assert.Contains(t, []int{2, 3}, len(slot.DailyWindows))

	var total time.Duration
	for i, dw := range slot.DailyWindows {
		total += dw.Duration()
		if i > 0 {
			prevDate := slot.DailyWindows[i-1].StartUTC
			curDate := dw.StartUTC
			assert.Equal(t, prevDate.AddDate(0, 0, 1).Day(), curDate.Day())
		}
	}
	assert.InDelta(t, 960, total.Minutes(), 1)
}

func TestGenerateDropsInfeasibleCandidates(t *testing.T) {
	wh := []domain.WorkingHours{
		{DayOfWeek: domain.Monday, StartLocal: "00:00", EndLocal: "23:59", IanaZone: "UTC"},
	}
	window := mustWin(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 13, 23, 59, 0, 0, time.UTC))

	existing := []fatigue.Booking{
		{Window: mustWin(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC))},
	}

	req := Request{
		WorkingHours:       wh,
		ServiceWindow:      window,
		ExistingBookings:   existing,
		JobDurationMinutes: 60,
		ContractorZone:     "UTC",
	}

	result, err := Generate(req)
	require.NoError(t, err)
	for _, s := range result {
		assert.GreaterOrEqual(t, s.OverallWindow.StartUTC, time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC))
	}
	// Every candidate adds 1 h to the existing 12 h booking on the same day,
	// past the 12 h hard stop, so all of them are dropped.
	assert.Empty(t, result)
}
