package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMetersCoincidentIsZero(t *testing.T) {
	assert.Equal(t, 0.0, HaversineMeters(40.7128, -74.0060, 40.7128, -74.0060))
}

func TestHaversineMetersSymmetric(t *testing.T) {
	d1 := HaversineMeters(40.7128, -74.0060, 34.0522, -118.2437)
	d2 := HaversineMeters(34.0522, -118.2437, 40.7128, -74.0060)
	assert.InDelta(t, d1, d2, 0.001)
}

func TestHaversineMetersKnownDistance(t *testing.T) {
	// NYC to LA is approximately 3935 km great-circle.
	d := HaversineMeters(40.7128, -74.0060, 34.0522, -118.2437)
	assert.InEpsilon(t, 3935000.0, d, 0.05)
}

func TestHaversineMetersNonNegative(t *testing.T) {
	d := HaversineMeters(10, 10, -10, -10)
	assert.GreaterOrEqual(t, d, 0.0)
}

func TestLoadZoneUnknownFails(t *testing.T) {
	_, err := LoadZone("Not/AZone")
	require.Error(t, err)
}

func TestToLocalAndBackRoundTrips(t *testing.T) {
	base := time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC)
	local, err := ToLocal(base, "America/New_York")
	require.NoError(t, err)

	back, err := ToUTC(local, "America/New_York")
	require.NoError(t, err)
	assert.True(t, base.Equal(back))
}
