package redis

import (
	"testing"

	"github.com/calinga/care-booking-system/internal/domain/models"
)

func TestSearchQuery_PadsRadiusForBoundaryCandidates(t *testing.T) {
	origin := models.GeoPoint{Latitude: 34.1478, Longitude: -118.1445}

	q := searchQuery(origin, 10)

	if q.Radius <= 10 {
		t.Fatalf("query radius = %v, must exceed the requested 10 miles", q.Radius)
	}
	if q.Radius > 10*1.05 {
		t.Fatalf("query radius = %v, padding should stay a small margin", q.Radius)
	}
	if q.RadiusUnit != "mi" {
		t.Fatalf("radius unit = %q, want miles", q.RadiusUnit)
	}
	if q.Sort != "ASC" {
		t.Fatalf("sort = %q, want nearest first", q.Sort)
	}
	if q.Latitude != origin.Latitude || q.Longitude != origin.Longitude {
		t.Fatal("query origin does not match the seeker position")
	}
}
