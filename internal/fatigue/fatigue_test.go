package fatigue

import (
	"testing"
	"time"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func win(t *testing.T, start, end time.Time) domain.TimeWindow {
	t.Helper()
	w, err := domain.NewTimeWindow(start, end)
	require.NoError(t, err)
	return w
}

func TestSoftCapNonRushInfeasible(t *testing.T) {
	existing := []Booking{
		{Window: win(t, time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC), time.Date(2025, 1, 13, 23, 0, 0, 0, time.UTC))},
	}
	proposed := win(t, time.Date(2025, 1, 13, 23, 0, 0, 0, time.UTC), time.Date(2025, 1, 14, 1, 0, 0, 0, time.UTC))

	result, err := Evaluate(proposed, existing, "UTC", false)
	require.NoError(t, err)
	assert.False(t, result.IsFeasible)
	assert.Contains(t, result.Reason, "soft cap")
}

func TestSoftCapRushFeasible(t *testing.T) {
	existing := []Booking{
		{Window: win(t, time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC), time.Date(2025, 1, 13, 23, 0, 0, 0, time.UTC))},
	}
	proposed := win(t, time.Date(2025, 1, 13, 23, 0, 0, 0, time.UTC), time.Date(2025, 1, 14, 1, 0, 0, 0, time.UTC))

	result, err := Evaluate(proposed, existing, "UTC", true)
	require.NoError(t, err)
	assert.True(t, result.IsFeasible)
}

func TestHardStopInfeasibleRegardlessOfRush(t *testing.T) {
	existing := []Booking{
		{Window: win(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 13, 12, 0, 1, 0, time.UTC))},
	}
	proposed := win(t, time.Date(2025, 1, 13, 12, 0, 1, 0, time.UTC), time.Date(2025, 1, 13, 12, 0, 2, 0, time.UTC))

	result, err := Evaluate(proposed, existing, "UTC", true)
	require.NoError(t, err)
	assert.False(t, result.IsFeasible)
	assert.Contains(t, result.Reason, "hard stop")
}

func TestConsecutiveJobsRule(t *testing.T) {
	base := time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC)
	var existing []Booking
	for i := 0; i < 4; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		existing = append(existing, Booking{Window: win(t, start, start.Add(time.Hour))})
	}

	infeasible := win(t, time.Date(2025, 1, 13, 18, 0, 0, 0, time.UTC), time.Date(2025, 1, 13, 19, 0, 0, 0, time.UTC))
	result, err := Evaluate(infeasible, existing, "UTC", false)
	require.NoError(t, err)
	assert.False(t, result.IsFeasible)
	assert.Contains(t, result.Reason, "consecutive")
	assert.Equal(t, 15, result.RequiredBreakMinutes)

	feasible := win(t, time.Date(2025, 1, 13, 18, 20, 0, 0, time.UTC), time.Date(2025, 1, 13, 19, 20, 0, 0, time.UTC))
	result, err = Evaluate(feasible, existing, "UTC", false)
	require.NoError(t, err)
	assert.True(t, result.IsFeasible)
}

func TestDailyHoursBoundary(t *testing.T) {
	base := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)

	over := win(t, base, base.Add(time.Duration(12*3600+1)*time.Second))
	result, err := Evaluate(over, nil, "UTC", true)
	require.NoError(t, err)
	assert.False(t, result.IsFeasible)

	under := win(t, base, base.Add(time.Duration(11*3600+59*60+24)*time.Second))
	result, err = Evaluate(under, nil, "UTC", true)
	require.NoError(t, err)
	assert.True(t, result.IsFeasible)
}
