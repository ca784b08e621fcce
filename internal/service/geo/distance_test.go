package geo

import (
	"math"
	"testing"

	"github.com/calinga/care-booking-system/internal/domain/models"
)

func TestDistanceMiles_ZeroForSamePoint(t *testing.T) {
	points := []models.GeoPoint{
		{Latitude: 0, Longitude: 0},
		{Latitude: 14.5995, Longitude: 120.9842},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 90, Longitude: 0},
	}
	for _, p := range points {
		if d := DistanceMiles(p, p); d != 0 {
			t.Fatalf("DistanceMiles(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	a := models.GeoPoint{Latitude: 37.7749, Longitude: -122.4194}
	b := models.GeoPoint{Latitude: 34.0522, Longitude: -118.2437}

	ab := DistanceMiles(a, b)
	ba := DistanceMiles(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestDistanceMiles_ManilaToQuezonCity(t *testing.T) {
	manila := models.GeoPoint{Latitude: 14.5995, Longitude: 120.9842}
	quezon := models.GeoPoint{Latitude: 14.6760, Longitude: 121.0437}

	got := DistanceMiles(manila, quezon)
	if math.Abs(got-5.6) > 0.3 {
		t.Fatalf("Manila-Quezon distance = %v miles, want 5.6 +/- 0.3", got)
	}
}

func BenchmarkDistanceMiles(b *testing.B) {
	p1 := models.GeoPoint{Latitude: 14.5995, Longitude: 120.9842}
	p2 := models.GeoPoint{Latitude: 14.6760, Longitude: 121.0437}

	for b.Loop() {
		_ = DistanceMiles(p1, p2)
	}
}
