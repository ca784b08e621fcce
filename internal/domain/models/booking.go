package models

import (
	"math"
	"time"

	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

// Booking is a careseeker's reservation of a caregiver for a time window.
// Created once at booking time; afterwards only status-transition
// operations mutate it. Never deleted: cancellation is a status value.
type Booking struct {
	ID            uuid.UUID           `json:"id"`
	CareseekerID  uuid.UUID           `json:"careseeker_id"`
	CaregiverID   uuid.UUID           `json:"caregiver_id"`
	CaregiverTier types.CaregiverTier `json:"caregiver_tier"`

	TimeFrom time.Time `json:"time_from"`
	TimeTo   time.Time `json:"time_to"`
	Address  string    `json:"address"`
	Notes    string    `json:"notes"`

	// Billing fields, derived once at creation. TotalAmount keeps full
	// precision; rendering rounds through DisplayAmount.
	HourlyRate    float64             `json:"hourly_rate"`
	TotalHours    float64             `json:"total_hours"`
	TotalAmount   float64             `json:"total_amount"`
	PaymentMethod types.PaymentMethod `json:"payment_method"`

	Status          types.BookingStatus `json:"status"`
	CompletionNotes string              `json:"completion_notes,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// DisplayAmount is TotalAmount rounded to cents for user-facing output.
func (b *Booking) DisplayAmount() float64 {
	return RoundCurrency(b.TotalAmount)
}

// RoundCurrency rounds to two decimal places.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

/* ======================= rabbitmq ======================= */

// BookingStatusMessage is published whenever a booking changes status,
// so downstream delivery collaborators (push, SMS) can fan it out.
type BookingStatusMessage struct {
	BookingID    uuid.UUID           `json:"booking_id"`
	OldStatus    types.BookingStatus `json:"old_status"`
	NewStatus    types.BookingStatus `json:"new_status"`
	CareseekerID uuid.UUID           `json:"careseeker_id"`
	CaregiverID  uuid.UUID           `json:"caregiver_id"`
	Timestamp    time.Time           `json:"timestamp"`
}
