package availability

import (
	"testing"
	"time"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWindow(t *testing.T, start, end time.Time) domain.TimeWindow {
	t.Helper()
	w, err := domain.NewTimeWindow(start, end)
	require.NoError(t, err)
	return w
}

func TestAvailableBasicScenario(t *testing.T) {
	// Mon 09:00-17:00 America/New_York, no blocking windows.
	wh := []domain.WorkingHours{{DayOfWeek: domain.Monday, StartLocal: "09:00", EndLocal: "17:00", IanaZone: "America/New_York"}}
	window := mustWindow(t,
		time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 22, 0, 0, 0, time.UTC),
	)

	result, err := Available(wh, window, nil, 60, "America/New_York", nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.True(t, result[0].StartUTC.Equal(time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC)))
	assert.True(t, result[0].EndUTC.Equal(time.Date(2025, 1, 13, 22, 0, 0, 0, time.UTC)))
}

func TestAvailableOutputIsDisjointAscendingAndMeetsMinMinutes(t *testing.T) {
	wh := []domain.WorkingHours{
		{DayOfWeek: domain.Monday, StartLocal: "09:00", EndLocal: "17:00", IanaZone: "America/New_York"},
		{DayOfWeek: domain.Tuesday, StartLocal: "09:00", EndLocal: "17:00", IanaZone: "America/New_York"},
	}
	window := mustWindow(t,
		time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	)
	blocking := []domain.TimeWindow{
		mustWindow(t, time.Date(2025, 1, 13, 16, 0, 0, 0, time.UTC), time.Date(2025, 1, 13, 17, 0, 0, 0, time.UTC)),
	}

	result, err := Available(wh, window, blocking, 30, "America/New_York", nil)
	require.NoError(t, err)

	for i := 1; i < len(result); i++ {
		assert.True(t, !result[i].StartUTC.Before(result[i-1].EndUTC))
	}
	for _, w := range result {
		assert.GreaterOrEqual(t, w.Duration(), 30*time.Minute)
	}
}

func TestAvailableSkipsHoliday(t *testing.T) {
	wh := []domain.WorkingHours{{DayOfWeek: domain.Monday, StartLocal: "09:00", EndLocal: "17:00", IanaZone: "America/New_York"}}
	window := mustWindow(t,
		time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC),
	)
	cal := domain.ContractorCalendar{
		Holidays: []time.Time{time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)},
	}

	result, err := Available(wh, window, nil, 30, "America/New_York", &cal)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestAvailableAdjacentBlockDoesNotSplit(t *testing.T) {
	wh := []domain.WorkingHours{{DayOfWeek: domain.Monday, StartLocal: "09:00", EndLocal: "17:00", IanaZone: "America/New_York"}}
	window := mustWindow(t,
		time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 22, 0, 0, 0, time.UTC),
	)
	// Blocking window touches exactly at the end boundary: should not shrink the piece.
	blocking := []domain.TimeWindow{
		mustWindow(t, time.Date(2025, 1, 13, 22, 0, 0, 0, time.UTC), time.Date(2025, 1, 13, 23, 0, 0, 0, time.UTC)),
	}

	result, err := Available(wh, window, blocking, 60, "America/New_York", nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.True(t, result[0].EndUTC.Equal(time.Date(2025, 1, 13, 22, 0, 0, 0, time.UTC)))
}
