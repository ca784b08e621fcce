package geo

import (
	"math"

	"github.com/calinga/care-booking-system/internal/domain/models"
)

// EarthRadiusMiles is the mean Earth radius used for all distance math.
const EarthRadiusMiles = 3959.0

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// DistanceMiles calculates the haversine great-circle distance between two
// geographic points, in miles. Pure function: accepts any finite
// coordinates and performs no range validation.
func DistanceMiles(a, b models.GeoPoint) float64 {
	lat1Rad := degreesToRadians(a.Latitude)
	lon1Rad := degreesToRadians(a.Longitude)
	lat2Rad := degreesToRadians(b.Latitude)
	lon2Rad := degreesToRadians(b.Longitude)

	deltaLat := lat2Rad - lat1Rad
	deltaLon := lon2Rad - lon1Rad

	h := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Pow(math.Sin(deltaLon/2), 2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}
