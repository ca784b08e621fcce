package models

import (
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

// CaregiverProfile is the marketplace-facing profile of a caregiver.
// IsApproved is flipped by an external admin vetting process; matching
// must only ever surface approved, active caregivers.
type CaregiverProfile struct {
	OwnerID    uuid.UUID           `json:"owner_id"`
	Name       string              `json:"name"`
	Tier       types.CaregiverTier `json:"tier"`
	HourlyRate float64             `json:"hourly_rate"`
	IsApproved bool                `json:"is_approved"`
	Address    string              `json:"address"`
	Bio        string              `json:"bio"`
}

// Match is one ranked result of a proximity search: a caregiver profile
// together with its distance from the seeker. DistanceKnown is false when
// either side has no usable coordinate; such entries sort after all
// entries with a computed distance.
type Match struct {
	Profile       CaregiverProfile `json:"profile"`
	DistanceMiles float64          `json:"distance_miles"`
	DistanceKnown bool             `json:"distance_known"`
}
