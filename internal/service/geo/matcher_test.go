package geo

import (
	"testing"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("parse uuid %q: %v", s, err)
	}
	return id
}

type matchFixture struct {
	candidates []models.CaregiverLocation
	profiles   map[uuid.UUID]models.CaregiverProfile
}

func newMatchFixture() matchFixture {
	return matchFixture{
		profiles: make(map[uuid.UUID]models.CaregiverProfile),
	}
}

func (f *matchFixture) add(id uuid.UUID, pos models.GeoPoint, active, approved bool) {
	f.candidates = append(f.candidates, models.CaregiverLocation{
		OwnerID:  id,
		Role:     types.RoleCaregiver,
		IsActive: active,
		Position: pos,
	})
	f.profiles[id] = models.CaregiverProfile{
		OwnerID:    id,
		Name:       "caregiver " + id.String()[:8],
		Tier:       types.TierCNA,
		IsApproved: approved,
	}
}

func TestFindNearby_FiltersInactiveAndUnapproved(t *testing.T) {
	origin := models.GeoPoint{Latitude: 14.5995, Longitude: 120.9842}
	near := models.GeoPoint{Latitude: 14.6000, Longitude: 120.9850}

	active := mustUUID(t, "11111111-1111-4111-8111-111111111111")
	inactive := mustUUID(t, "22222222-2222-4222-8222-222222222222")
	unapproved := mustUUID(t, "33333333-3333-4333-8333-333333333333")
	orphan := mustUUID(t, "44444444-4444-4444-8444-444444444444")

	f := newMatchFixture()
	f.add(active, near, true, true)
	f.add(inactive, near, false, true)
	f.add(unapproved, near, true, false)
	f.candidates = append(f.candidates, models.CaregiverLocation{
		OwnerID:  orphan,
		Role:     types.RoleCaregiver,
		IsActive: true,
		Position: near,
	}) // no profile at all

	got := FindNearby(origin, f.candidates, 10, f.profiles)
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	if got[0].Profile.OwnerID != active {
		t.Fatalf("matched %s, want %s", got[0].Profile.OwnerID, active)
	}
	if !got[0].DistanceKnown {
		t.Fatal("expected a known distance for a located candidate")
	}
}

func TestFindNearby_RadiusBoundaryIsInclusive(t *testing.T) {
	origin := models.GeoPoint{Latitude: 40.0, Longitude: -74.0}

	// One degree of latitude is about 69.1 miles, so walk north until one
	// candidate lands just inside the boundary and one just outside.
	atBoundary := models.GeoPoint{Latitude: 40.0 + 10.0/69.1, Longitude: -74.0}
	beyond := models.GeoPoint{Latitude: 40.0 + 10.2/69.1, Longitude: -74.0}

	dIn := DistanceMiles(origin, atBoundary)
	dOut := DistanceMiles(origin, beyond)
	if dIn > 10.0 || dOut <= 10.0 {
		t.Fatalf("fixture drifted: in=%v out=%v", dIn, dOut)
	}

	inside := mustUUID(t, "11111111-1111-4111-8111-111111111111")
	outside := mustUUID(t, "22222222-2222-4222-8222-222222222222")
	exact := mustUUID(t, "33333333-3333-4333-8333-333333333333")

	f := newMatchFixture()
	f.add(inside, atBoundary, true, true)
	f.add(outside, beyond, true, true)
	// exactly on the boundary: place it at the precise distance of a
	// candidate we already measured, then check with that radius
	f.add(exact, atBoundary, true, true)

	got := FindNearby(origin, f.candidates, dIn, f.profiles)
	if len(got) != 2 {
		t.Fatalf("got %d matches with radius %v, want 2 (boundary inclusive)", len(got), dIn)
	}
	for _, m := range got {
		if m.Profile.OwnerID == outside {
			t.Fatalf("candidate %v miles out matched inside radius %v", dOut, dIn)
		}
	}
}

func TestFindNearby_SortedByDistanceUnknownLast(t *testing.T) {
	origin := models.GeoPoint{Latitude: 40.0, Longitude: -74.0}

	far := mustUUID(t, "11111111-1111-4111-8111-111111111111")
	nearest := mustUUID(t, "22222222-2222-4222-8222-222222222222")
	unlocatedB := mustUUID(t, "bbbbbbbb-0000-4000-8000-000000000000")
	unlocatedA := mustUUID(t, "aaaaaaaa-0000-4000-8000-000000000000")

	f := newMatchFixture()
	f.add(far, models.GeoPoint{Latitude: 40.08, Longitude: -74.0}, true, true)
	f.add(nearest, models.GeoPoint{Latitude: 40.01, Longitude: -74.0}, true, true)
	f.add(unlocatedB, models.GeoPoint{}, true, true)
	f.add(unlocatedA, models.GeoPoint{}, true, true)

	got := FindNearby(origin, f.candidates, 10, f.profiles)
	if len(got) != 4 {
		t.Fatalf("got %d matches, want 4", len(got))
	}

	wantOrder := []uuid.UUID{nearest, far, unlocatedA, unlocatedB}
	for i, want := range wantOrder {
		if got[i].Profile.OwnerID != want {
			t.Fatalf("position %d: got %s, want %s", i, got[i].Profile.OwnerID, want)
		}
	}
	if got[0].DistanceMiles >= got[1].DistanceMiles {
		t.Fatalf("distances not ascending: %v then %v", got[0].DistanceMiles, got[1].DistanceMiles)
	}
	if got[2].DistanceKnown || got[3].DistanceKnown {
		t.Fatal("unlocated candidates must report DistanceKnown=false")
	}
}

func TestFindNearby_UnknownOriginReturnsAllUnranked(t *testing.T) {
	b := mustUUID(t, "bbbbbbbb-0000-4000-8000-000000000000")
	a := mustUUID(t, "aaaaaaaa-0000-4000-8000-000000000000")
	inactive := mustUUID(t, "cccccccc-0000-4000-8000-000000000000")

	f := newMatchFixture()
	f.add(b, models.GeoPoint{Latitude: 40.0, Longitude: -74.0}, true, true)
	f.add(a, models.GeoPoint{Latitude: 50.0, Longitude: 10.0}, true, true)
	f.add(inactive, models.GeoPoint{Latitude: 40.0, Longitude: -74.0}, false, true)

	got := FindNearby(models.GeoPoint{}, f.candidates, 10, f.profiles)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Profile.OwnerID != a || got[1].Profile.OwnerID != b {
		t.Fatalf("want owner-id order [%s %s], got [%s %s]",
			a, b, got[0].Profile.OwnerID, got[1].Profile.OwnerID)
	}
	for _, m := range got {
		if m.DistanceKnown {
			t.Fatal("unknown origin must not produce ranked distances")
		}
	}
}
