package models

import (
	"time"

	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

// GeoPoint is an immutable coordinate pair.
//
// The zero value (0,0) doubles as the "location unknown" marker, kept for
// compatibility with the data the mobile clients already write. Call sites
// must go through Known() instead of comparing raw zeros.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Known reports whether the point carries a real coordinate.
// A caregiver anchored at exactly (0,0) is indistinguishable from one
// with no fix; nobody offers in-home care in the Gulf of Guinea.
func (p GeoPoint) Known() bool {
	return p.Latitude != 0 || p.Longitude != 0
}

// CaregiverLocation is the latest reported position of an account.
// Written on every location fix, availability toggle and sign-in/out;
// read-only from the matcher's point of view.
type CaregiverLocation struct {
	OwnerID       uuid.UUID      `json:"owner_id"`
	Role          types.UserRole `json:"role"`
	IsActive      bool           `json:"is_active"`
	LastUpdatedAt time.Time      `json:"last_updated_at"`
	Position      GeoPoint       `json:"position"`
}
