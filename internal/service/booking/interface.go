package booking

import (
	"context"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

type BookingRepo interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	ListByCareseeker(ctx context.Context, careseekerID uuid.UUID) ([]models.Booking, error)
	ListByCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]models.Booking, error)
}

type ProfileRepo interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.CaregiverProfile, error)
}

type NotificationRepo interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// StatusPublisher fans booking status changes out to the message broker.
// Publishing is best effort: a broker outage must never roll back a
// committed booking change.
type StatusPublisher interface {
	PublishStatusChange(ctx context.Context, msg models.BookingStatusMessage) error
}
