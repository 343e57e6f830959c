package model

import (
	"fmt"
	"math"
)

const earthRadiusKM = 6371.0

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that both coordinates are finite and in range.
func (l Location) Validate() error {
	if math.IsNaN(l.Lat) || math.IsInf(l.Lat, 0) || l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", l.Lat)
	}
	if math.IsNaN(l.Lon) || math.IsInf(l.Lon, 0) || l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("longitude %v out of range", l.Lon)
	}
	return nil
}

// IsZero reports whether the location is the zero value. A zero location is
// treated as "unknown" rather than a point in the Gulf of Guinea.
func (l Location) IsZero() bool {
	return l.Lat == 0 && l.Lon == 0
}

// DistanceKM returns the great-circle distance to other in kilometres.
func (l Location) DistanceKM(other Location) float64 {
	lat1 := l.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - l.Lat) * math.Pi / 180
	dLon := (other.Lon - l.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
