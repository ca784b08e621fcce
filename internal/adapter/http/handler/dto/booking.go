package dto

import (
	"time"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/internal/service/booking"
	"github.com/calinga/care-booking-system/pkg/uuid"
	"github.com/calinga/care-booking-system/pkg/validator"
)

type CreateBookingRequest struct {
	CaregiverID   string    `json:"caregiver_id"`
	TimeFrom      time.Time `json:"time_from"`
	TimeTo        time.Time `json:"time_to"`
	Address       string    `json:"address"`
	Notes         string    `json:"notes"`
	PaymentMethod string    `json:"payment_method"`
}

func (r *CreateBookingRequest) Validate(v *validator.Validator) {
	// CaregiverID
	v.Check(r.CaregiverID != "", "caregiver_id", "must be provided")
	if r.CaregiverID != "" {
		_, err := uuid.Parse(r.CaregiverID)
		v.Check(err == nil, "caregiver_id", "must be a valid UUID")
	}

	// Time window
	v.Check(!r.TimeFrom.IsZero(), "time_from", "must be provided")
	v.Check(!r.TimeTo.IsZero(), "time_to", "must be provided")

	// Address
	v.Check(r.Address != "", "address", "must be provided")
	v.Check(len(r.Address) <= 255, "address", "must not be more than 255 characters long")

	// Notes
	v.Check(len(r.Notes) <= 1000, "notes", "must not be more than 1000 characters long")

	// PaymentMethod
	v.Check(r.PaymentMethod != "", "payment_method", "must be provided")
	if r.PaymentMethod != "" {
		_, ok := types.ParsePaymentMethod(r.PaymentMethod)
		v.Check(ok, "payment_method", "is not an accepted payment method")
	}
}

func (r *CreateBookingRequest) ToRequest(careseekerID uuid.UUID) (booking.CreateRequest, error) {
	caregiverID, err := uuid.Parse(r.CaregiverID)
	if err != nil {
		return booking.CreateRequest{}, err
	}
	method, _ := types.ParsePaymentMethod(r.PaymentMethod)

	return booking.CreateRequest{
		CareseekerID:  careseekerID,
		CaregiverID:   caregiverID,
		TimeFrom:      r.TimeFrom,
		TimeTo:        r.TimeTo,
		Address:       r.Address,
		Notes:         r.Notes,
		PaymentMethod: method,
	}, nil
}

type CompleteBookingRequest struct {
	CompletionNotes string `json:"completion_notes"`
}

func (r *CompleteBookingRequest) Validate(v *validator.Validator) {
	v.Check(r.CompletionNotes != "", "completion_notes", "must be provided")
	v.Check(len(r.CompletionNotes) <= 2000, "completion_notes", "must not be more than 2000 characters long")
}

type BookingResponse struct {
	ID              uuid.UUID  `json:"id"`
	CareseekerID    uuid.UUID  `json:"careseeker_id"`
	CaregiverID     uuid.UUID  `json:"caregiver_id"`
	CaregiverTier   string     `json:"caregiver_tier"`
	TimeFrom        time.Time  `json:"time_from"`
	TimeTo          time.Time  `json:"time_to"`
	Address         string     `json:"address"`
	Notes           string     `json:"notes,omitempty"`
	HourlyRate      float64    `json:"hourly_rate"`
	TotalHours      float64    `json:"total_hours"`
	TotalAmount     float64    `json:"total_amount"`
	PaymentMethod   string     `json:"payment_method"`
	Status          string     `json:"status"`
	CompletionNotes string     `json:"completion_notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

func FromBooking(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		CareseekerID:    b.CareseekerID,
		CaregiverID:     b.CaregiverID,
		CaregiverTier:   b.CaregiverTier.String(),
		TimeFrom:        b.TimeFrom,
		TimeTo:          b.TimeTo,
		Address:         b.Address,
		Notes:           b.Notes,
		HourlyRate:      b.HourlyRate,
		TotalHours:      b.TotalHours,
		TotalAmount:     b.DisplayAmount(),
		PaymentMethod:   string(b.PaymentMethod),
		Status:          b.Status.String(),
		CompletionNotes: b.CompletionNotes,
		CreatedAt:       b.CreatedAt,
		CompletedAt:     b.CompletedAt,
	}
}

func FromBookings(bookings []models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, FromBooking(&bookings[i]))
	}
	return out
}
