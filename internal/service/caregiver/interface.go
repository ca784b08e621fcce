package caregiver

import (
	"context"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

type LocationRepo interface {
	Upsert(ctx context.Context, location *models.CaregiverLocation) error
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.CaregiverLocation, error)
	// SetActive flips availability and reports whether the stored value
	// actually changed. A caregiver without a location record yet gets
	// one, positioned at the unknown sentinel.
	SetActive(ctx context.Context, ownerID uuid.UUID, active bool) (bool, error)
	// SnapshotCaregivers returns every caregiver-role location record.
	SnapshotCaregivers(ctx context.Context) ([]models.CaregiverLocation, error)
	// ListUnlocatedCaregivers returns active caregivers whose position is
	// the unknown sentinel. They never enter the geo index, so radius
	// queries must union them back in.
	ListUnlocatedCaregivers(ctx context.Context) ([]models.CaregiverLocation, error)
	FindByOwners(ctx context.Context, ownerIDs []uuid.UUID) ([]models.CaregiverLocation, error)
}

type ProfileRepo interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.CaregiverProfile, error)
	FindByOwners(ctx context.Context, ownerIDs []uuid.UUID) (map[uuid.UUID]models.CaregiverProfile, error)
}

type NotificationRepo interface {
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]models.Notification, error)
	// MarkSeen flags the notification, scoped to its recipient so one
	// user cannot touch another's inbox.
	MarkSeen(ctx context.Context, id, recipientID uuid.UUID) error
}

// GeoIndex is the fast radius pre-filter over active caregiver
// positions. It is an accelerator, not the source of truth: every
// query result is re-checked by the pure matcher.
type GeoIndex interface {
	Upsert(ctx context.Context, ownerID uuid.UUID, pos models.GeoPoint) error
	Remove(ctx context.Context, ownerID uuid.UUID) error
	Nearby(ctx context.Context, origin models.GeoPoint, radiusMiles float64) ([]uuid.UUID, error)
}
