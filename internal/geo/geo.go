// Package geo provides time and geography primitives: Haversine distance
// and IANA timezone conversion. Follows the haversineDistance helper in
// scheduling_service.go.
package geo

import (
	"math"
	"time"

	"github.com/pageza/smartscheduler/internal/domain"
)

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance in meters between two
// points given in degrees. Symmetric, zero for coincident points.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Distance is a convenience wrapper over two domain.GeoLocation values.
func Distance(a, b domain.GeoLocation) float64 {
	return HaversineMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// LoadZone resolves an IANA identifier, failing with InvalidArgument on an
// unknown zone. The domain boundary never leaks anything but IANA
// identifiers; adapters are responsible for translating platform-native
// zone forms before calling into this package.
func LoadZone(iana string) (*time.Location, error) {
	if iana == "" {
		return nil, domain.InvalidArgument("timezone identifier is required")
	}
	loc, err := time.LoadLocation(iana)
	if err != nil {
		return nil, domain.InvalidArgument("unknown IANA timezone: " + iana).Wrap(err)
	}
	return loc, nil
}

// ToLocal converts a UTC instant into the given IANA zone.
func ToLocal(t time.Time, iana string) (time.Time, error) {
	loc, err := LoadZone(iana)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// ToUTC converts a local-zone instant back to UTC.
func ToUTC(t time.Time, iana string) (time.Time, error) {
	loc, err := LoadZone(iana)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc).UTC(), nil
}
