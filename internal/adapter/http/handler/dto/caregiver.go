package dto

import (
	"time"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/pkg/uuid"
	"github.com/calinga/care-booking-system/pkg/validator"
)

// LocationUpdateRequest carries a location fix. Coordinates are
// pointers so "field missing" and "legitimately zero" stay apart.
type LocationUpdateRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *LocationUpdateRequest) Validate(v *validator.Validator) {
	v.Check(r.Latitude != nil, "latitude", "must be provided")
	if r.Latitude != nil {
		v.Check(*r.Latitude >= -90 && *r.Latitude <= 90, "latitude", "must be between -90 and 90")
	}
	v.Check(r.Longitude != nil, "longitude", "must be provided")
	if r.Longitude != nil {
		v.Check(*r.Longitude >= -180 && *r.Longitude <= 180, "longitude", "must be between -180 and 180")
	}
}

func (r *LocationUpdateRequest) ToPoint() models.GeoPoint {
	return models.GeoPoint{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

// MatchResponse is one ranked nearby caregiver. DistanceMiles is nil
// when no distance could be computed for this pair.
type MatchResponse struct {
	CaregiverID   uuid.UUID `json:"caregiver_id"`
	Name          string    `json:"name"`
	Tier          string    `json:"tier"`
	HourlyRate    float64   `json:"hourly_rate"`
	Address       string    `json:"address,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	DistanceMiles *float64  `json:"distance_miles,omitempty"`
}

func FromMatches(matches []models.Match) []MatchResponse {
	out := make([]MatchResponse, 0, len(matches))
	for _, m := range matches {
		resp := MatchResponse{
			CaregiverID: m.Profile.OwnerID,
			Name:        m.Profile.Name,
			Tier:        m.Profile.Tier.String(),
			HourlyRate:  m.Profile.HourlyRate,
			Address:     m.Profile.Address,
			Bio:         m.Profile.Bio,
		}
		if m.DistanceKnown {
			d := m.DistanceMiles
			resp.DistanceMiles = &d
		}
		out = append(out, resp)
	}
	return out
}

type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Seen      bool      `json:"seen"`
	CreatedAt string    `json:"created_at"`
}

func FromNotifications(notifications []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Seen:      n.Seen,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
