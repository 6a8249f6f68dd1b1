// Package externals wraps the HTTP collaborators treated as external: the
// OpenRouteService/Google-Places-equivalent distance/ETA client, the
// batched ETA matrix client, the timezone lookup service, and address
// validation. The distance/ETA wrapper applies retry, circuit breaker, and
// timeout, using sony/gobreaker and cenkalti/backoff/v4 for the retry/backoff
// style; the timezone and address wrappers apply circuit breaker and timeout
// without retry; the ETA matrix client applies none of the three.
// Primary-failure fallbacks are Haversine distance and a fixed-speed ETA
// estimate, flagged degraded=true.
package externals

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/pageza/smartscheduler/internal/config"
	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/geo"
)

// DistanceResult mirrors the DistanceCalc.Distance contract.
type DistanceResult struct {
	Meters   *float64
	Degraded bool
	Source   string
}

// ETAResult mirrors the DistanceCalc.ETA contract.
type ETAResult struct {
	Minutes  *float64
	Degraded bool
	Source   string
}

const (
	sourcePrimary   = "primary"
	sourceHaversine = "haversine"
)

// HTTPCaller is the minimal collaborator contract a DistanceCalc
// implementation depends on. Production wiring fills this with an HTTP
// client against OpenRouteService/Google Distance Matrix; tests substitute
// a stub.
type HTTPCaller interface {
	// DistanceMeters returns the primary provider's road distance, or an
	// error if the upstream call fails.
	DistanceMeters(ctx context.Context, from, to domain.GeoLocation) (float64, error)
	// ETAMinutes returns the primary provider's travel-time estimate.
	ETAMinutes(ctx context.Context, from, to domain.GeoLocation) (float64, error)
}

// resilientCaller wraps an HTTPCaller with retry+breaker+timeout: a
// 2-retries-exponential-jitter / 5-failures-per-30s / 3.5s-timeout policy.
type resilientCaller struct {
	inner   HTTPCaller
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	retries int
}

func newResilientCaller(inner HTTPCaller, cfg *config.Config) *resilientCaller {
	settings := gobreaker.Settings{
		Name:        "externals-distance-calc",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     cfg.CircuitBreakerResetAfter,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.CircuitBreakerThreshold
		},
	}
	return &resilientCaller{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
		timeout: cfg.ExternalTimeout,
		retries: cfg.ExternalRetryAttempts,
	}
}

func (r *resilientCaller) call(ctx context.Context, fn func(ctx context.Context) (float64, error)) (float64, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		tctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(r.retries)), tctx)
		var value float64
		operation := func() error {
			v, err := fn(tctx)
			if err != nil {
				return err
			}
			value = v
			return nil
		}
		if err := backoff.Retry(operation, bo); err != nil {
			return nil, err
		}
		return value, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(float64), nil
}

// DistanceClient is the DistanceCalc implementation, falling back to
// Haversine on primary failure and ceil(km/50*60) for ETA.
type DistanceClient struct {
	caller           *resilientCaller
	fallbackSpeedKmh float64
}

// NewDistanceClient wires an HTTPCaller behind the resilience policy.
func NewDistanceClient(inner HTTPCaller, cfg *config.Config) *DistanceClient {
	return &DistanceClient{
		caller:           newResilientCaller(inner, cfg),
		fallbackSpeedKmh: cfg.FallbackSpeedKmh,
	}
}

// Distance returns the primary provider's road distance, degrading to
// Haversine great-circle distance when the circuit is open or retries are
// exhausted.
func (c *DistanceClient) Distance(ctx context.Context, from, to domain.GeoLocation) (DistanceResult, error) {
	meters, err := c.caller.call(ctx, func(ctx context.Context) (float64, error) {
		return c.caller.inner.DistanceMeters(ctx, from, to)
	})
	if err != nil {
		fallback := geo.Distance(from, to)
		return DistanceResult{Meters: &fallback, Degraded: true, Source: sourceHaversine}, nil
	}
	return DistanceResult{Meters: &meters, Degraded: false, Source: sourcePrimary}, nil
}

// ETA returns the primary provider's travel-time estimate, degrading to a
// fixed-speed estimate (ceil(km/fallbackSpeedKmh*60)) derived from Haversine
// distance on failure.
func (c *DistanceClient) ETA(ctx context.Context, from, to domain.GeoLocation) (ETAResult, error) {
	minutes, err := c.caller.call(ctx, func(ctx context.Context) (float64, error) {
		return c.caller.inner.ETAMinutes(ctx, from, to)
	})
	if err != nil {
		km := geo.Distance(from, to) / 1000.0
		fallback := math.Ceil(km / c.fallbackSpeedKmh * 60)
		return ETAResult{Minutes: &fallback, Degraded: true, Source: sourceHaversine}, nil
	}
	return ETAResult{Minutes: &minutes, Degraded: false, Source: sourcePrimary}, nil
}

// TimezoneLookup is the TimezoneService.GetTimezone collaborator. Unknown
// coordinates fail with InvalidArgument; the adapter is responsible for
// translating any platform-native zone form before returning to the domain.
type TimezoneLookup interface {
	Lookup(ctx context.Context, lat, lng float64) (string, error)
}

// TimezoneClient wraps a TimezoneLookup with the same resilience policy.
type TimezoneClient struct {
	inner   TimezoneLookup
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

func NewTimezoneClient(inner TimezoneLookup, cfg *config.Config) *TimezoneClient {
	settings := gobreaker.Settings{
		Name:    "externals-timezone",
		Timeout: cfg.CircuitBreakerResetAfter,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.CircuitBreakerThreshold
		},
	}
	return &TimezoneClient{inner: inner, breaker: gobreaker.NewCircuitBreaker(settings), timeout: cfg.ExternalTimeout}
}

// GetTimezone resolves lat/lng to an IANA identifier.
func (c *TimezoneClient) GetTimezone(ctx context.Context, lat, lng float64) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		tctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.inner.Lookup(tctx, lat, lng)
	})
	if err != nil {
		return "", domain.UpstreamUnavailable("timezone lookup unavailable", err)
	}
	zone := result.(string)
	if _, zerr := geo.LoadZone(zone); zerr != nil {
		return "", zerr
	}
	return zone, nil
}

// AddressValidator is the AddressValidation.Validate collaborator.
type AddressValidator interface {
	Validate(ctx context.Context, partial string, placeID *string) (domain.GeoLocation, error)
}

// AddressValidationClient wraps an AddressValidator with the resilience
// policy; there is no fallback for address resolution, so failures surface
// as UpstreamUnavailable.
type AddressValidationClient struct {
	inner   AddressValidator
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

func NewAddressValidationClient(inner AddressValidator, cfg *config.Config) *AddressValidationClient {
	settings := gobreaker.Settings{
		Name:    "externals-address-validation",
		Timeout: cfg.CircuitBreakerResetAfter,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.CircuitBreakerThreshold
		},
	}
	return &AddressValidationClient{inner: inner, breaker: gobreaker.NewCircuitBreaker(settings), timeout: cfg.ExternalTimeout}
}

func (c *AddressValidationClient) Validate(ctx context.Context, partial string, placeID *string) (domain.GeoLocation, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		tctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.inner.Validate(tctx, partial, placeID)
	})
	if err != nil {
		return domain.GeoLocation{}, domain.UpstreamUnavailable("address validation unavailable", err)
	}
	return result.(domain.GeoLocation), nil
}

// DistanceCalcError wraps a degraded-path error with context, kept for
// callers that want to log which leg fell back.
type DistanceCalcError struct {
	Leg   string
	Cause error
}

func (e *DistanceCalcError) Error() string {
	return fmt.Sprintf("distance calc degraded for %s: %v", e.Leg, e.Cause)
}
