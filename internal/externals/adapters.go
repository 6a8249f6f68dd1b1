package externals

import (
	"context"

	"github.com/pageza/smartscheduler/internal/domain"
)

// StubHTTPCaller is a placeholder HTTPCaller wired at startup when no real
// OpenRouteService/Google Distance Matrix credentials are configured.
// Production deployments supply a real HTTPCaller; this one always misses
// so the resilience wrapper's Haversine fallback engages. Follows the
// minimal-stub pattern in backend/internal/integrations/minimal_stubs.go.
type StubHTTPCaller struct{}

func (StubHTTPCaller) DistanceMeters(ctx context.Context, from, to domain.GeoLocation) (float64, error) {
	return 0, domain.UpstreamUnavailable("no distance provider configured", nil)
}

func (StubHTTPCaller) ETAMinutes(ctx context.Context, from, to domain.GeoLocation) (float64, error) {
	return 0, domain.UpstreamUnavailable("no ETA provider configured", nil)
}

// StubTimezoneLookup returns "UTC" for every coordinate, a placeholder for a
// real timezone-lookup HTTP service.
type StubTimezoneLookup struct{}

func (StubTimezoneLookup) Lookup(ctx context.Context, lat, lng float64) (string, error) {
	return "UTC", nil
}

// StubAddressValidator echoes the partial address back with no geocoding.
type StubAddressValidator struct{}

func (StubAddressValidator) Validate(ctx context.Context, partial string, placeID *string) (domain.GeoLocation, error) {
	return domain.GeoLocation{Address: partial, IanaZone: "UTC"}, nil
}

// StubMatrixBatcher implements MatrixBatcher by reporting every cell as a
// miss, so ETAMatrix.ETAs always falls through to the caller's per-pair
// fallback. Wired the same way as the other Stub* adapters until a real
// batched routing provider is configured.
type StubMatrixBatcher struct{}

func (StubMatrixBatcher) ETABatch(ctx context.Context, origins, dests []domain.GeoLocation) (map[PairKey]float64, error) {
	return map[PairKey]float64{}, nil
}
