package geo

import (
	"sort"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

// FindNearby filters caregiver location records down to active caregivers
// with an approved profile and ranks them by distance from origin.
//
// Callers pre-filter candidates to the caregiver role; this function
// enforces the remaining qualification rules. It is a pure transformation
// over the provided snapshots: staleness of a few seconds is acceptable in
// this domain, so no transactional guarantee is offered or required.
//
// When origin itself is unknown, distances would be meaningless, so every
// qualifying candidate is returned unranked (DistanceKnown=false) in
// owner-id order. When a candidate's own position is unknown it is still
// included optimistically, sorted after all candidates with a real
// distance. The radius check is inclusive.
func FindNearby(
	origin models.GeoPoint,
	candidates []models.CaregiverLocation,
	radiusMiles float64,
	profiles map[uuid.UUID]models.CaregiverProfile,
) []models.Match {
	matches := make([]models.Match, 0, len(candidates))

	for _, cand := range candidates {
		if !cand.IsActive {
			continue
		}
		profile, ok := profiles[cand.OwnerID]
		if !ok || !profile.IsApproved {
			continue
		}

		if !origin.Known() {
			matches = append(matches, models.Match{Profile: profile})
			continue
		}

		if !cand.Position.Known() {
			matches = append(matches, models.Match{Profile: profile})
			continue
		}

		d := DistanceMiles(origin, cand.Position)
		if d > radiusMiles {
			continue
		}
		matches = append(matches, models.Match{
			Profile:       profile,
			DistanceMiles: d,
			DistanceKnown: true,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		switch {
		case a.DistanceKnown && b.DistanceKnown:
			return a.DistanceMiles < b.DistanceMiles
		case a.DistanceKnown != b.DistanceKnown:
			// unknown distances go last
			return a.DistanceKnown
		default:
			return a.Profile.OwnerID.String() < b.Profile.OwnerID.String()
		}
	})

	return matches
}
