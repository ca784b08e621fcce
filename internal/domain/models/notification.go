package models

import (
	"time"

	"github.com/calinga/care-booking-system/pkg/uuid"
)

// Notification is an advisory record created as a side effect of a
// booking status change. Not authoritative data: losing one never
// corrupts a booking.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Seen        bool      `json:"seen"`
	CreatedAt   time.Time `json:"created_at"`
}
