package models

import "github.com/calinga/care-booking-system/internal/domain/types"

// AdminOverview is the monitoring snapshot served to operators.
type AdminOverview struct {
	ActiveCaregivers int                           `json:"active_caregivers"`
	TotalBookings    int                           `json:"total_bookings"`
	BookingsByStatus map[types.BookingStatus]int   `json:"bookings_by_status"`
	BookingsByTier   map[types.CaregiverTier]int   `json:"bookings_by_tier"`
}
