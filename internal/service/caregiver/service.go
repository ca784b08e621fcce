package caregiver

import (
	"context"
	"fmt"
	"time"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/internal/service/geo"
	"github.com/calinga/care-booking-system/pkg/logger"
	wrap "github.com/calinga/care-booking-system/pkg/logger/wrapper"
	"github.com/calinga/care-booking-system/pkg/metrics"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

const DefaultRadiusMiles = 10.0

// Config carries the matching policy.
type Config struct {
	RadiusMiles float64
}

func (c Config) withDefaults() Config {
	if c.RadiusMiles <= 0 {
		c.RadiusMiles = DefaultRadiusMiles
	}
	return c
}

type CaregiverService struct {
	locations     LocationRepo
	profiles      ProfileRepo
	notifications NotificationRepo
	index         GeoIndex
	logger        logger.Logger
	cfg           Config

	now func() time.Time
}

func NewCaregiverService(
	locations LocationRepo,
	profiles ProfileRepo,
	notifications NotificationRepo,
	index GeoIndex,
	logger logger.Logger,
	cfg Config,
) *CaregiverService {
	return &CaregiverService{
		locations:     locations,
		profiles:      profiles,
		notifications: notifications,
		index:         index,
		logger:        logger,
		cfg:           cfg.withDefaults(),
		now:           time.Now,
	}
}

// ReportLocation stores a caregiver's location fix and mirrors it into
// the geo index. The index write is best effort; the stored record is
// what matching would fall back to anyway.
func (s *CaregiverService) ReportLocation(ctx context.Context, ownerID uuid.UUID, pos models.GeoPoint) error {
	ctx = wrap.WithAction(ctx, "report_location")
	ctx = wrap.WithUserID(ctx, ownerID.String())

	location := &models.CaregiverLocation{
		OwnerID:       ownerID,
		Role:          types.RoleCaregiver,
		LastUpdatedAt: s.now(),
		Position:      pos,
	}
	if err := s.locations.Upsert(ctx, location); err != nil {
		return wrap.Error(ctx, fmt.Errorf("could not store location fix: %w", err))
	}

	if s.index != nil && pos.Known() {
		if err := s.index.Upsert(ctx, ownerID, pos); err != nil {
			s.logger.Warn(ctx, "could not update geo index", "error", err.Error())
		}
	}
	return nil
}

// SetActive toggles a caregiver's availability. Deactivating also
// drops the caregiver out of the geo index so radius queries stop
// returning them immediately.
func (s *CaregiverService) SetActive(ctx context.Context, ownerID uuid.UUID, active bool) error {
	ctx = wrap.WithAction(ctx, "set_active")
	ctx = wrap.WithUserID(ctx, ownerID.String())

	changed, err := s.locations.SetActive(ctx, ownerID, active)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("could not toggle availability: %w", err))
	}
	if !changed {
		return nil
	}

	service := string(types.CaregiverAndLocationService)
	if active {
		metrics.ActiveCaregiversGauge.WithLabelValues(service).Inc()
	} else {
		metrics.ActiveCaregiversGauge.WithLabelValues(service).Dec()
	}

	if s.index != nil {
		if active {
			if location, err := s.locations.FindByOwner(ctx, ownerID); err == nil && location.Position.Known() {
				if err := s.index.Upsert(ctx, ownerID, location.Position); err != nil {
					s.logger.Warn(ctx, "could not re-add caregiver to geo index", "error", err.Error())
				}
			}
		} else {
			if err := s.index.Remove(ctx, ownerID); err != nil {
				s.logger.Warn(ctx, "could not remove caregiver from geo index", "error", err.Error())
			}
		}
	}

	s.logger.Info(ctx, "caregiver availability changed", "active", active)
	return nil
}

// Nearby resolves the ranked list of approved, active caregivers around
// origin. The geo index narrows the candidate set when the seeker has a
// usable coordinate; the pure matcher always has the final say, so an
// index outage degrades to a full snapshot instead of an error.
func (s *CaregiverService) Nearby(ctx context.Context, origin models.GeoPoint, radiusMiles float64) ([]models.Match, error) {
	ctx = wrap.WithAction(ctx, "find_nearby_caregivers")

	if radiusMiles <= 0 {
		radiusMiles = s.cfg.RadiusMiles
	}

	candidates, err := s.candidateLocations(ctx, origin, radiusMiles)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.OwnerID)
	}
	profiles, err := s.profiles.FindByOwners(ctx, ids)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not load caregiver profiles: %w", err))
	}

	matches := geo.FindNearby(origin, candidates, radiusMiles, profiles)
	metrics.RecordMatchesServed(string(types.CaregiverAndLocationService), origin.Known())

	s.logger.Debug(ctx, "nearby search served",
		"candidates", len(candidates),
		"matches", len(matches),
		"located", origin.Known(),
	)
	return matches, nil
}

// candidateLocations picks the cheapest candidate set that still honors
// the matcher's contract. Caregivers without a coordinate never enter
// the index, so the indexed path unions them back in.
func (s *CaregiverService) candidateLocations(ctx context.Context, origin models.GeoPoint, radiusMiles float64) ([]models.CaregiverLocation, error) {
	if s.index == nil || !origin.Known() {
		return s.snapshot(ctx)
	}

	ids, err := s.index.Nearby(ctx, origin, radiusMiles)
	if err != nil {
		s.logger.Warn(ctx, "geo index query failed, falling back to full snapshot", "error", err.Error())
		return s.snapshot(ctx)
	}

	located, err := s.locations.FindByOwners(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("could not load candidate locations: %w", err)
	}
	unlocated, err := s.locations.ListUnlocatedCaregivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load unlocated caregivers: %w", err)
	}
	return append(located, unlocated...), nil
}

func (s *CaregiverService) snapshot(ctx context.Context) ([]models.CaregiverLocation, error) {
	candidates, err := s.locations.SnapshotCaregivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not snapshot caregiver locations: %w", err)
	}
	return candidates, nil
}

// Notifications returns the recipient's inbox, newest first.
func (s *CaregiverService) Notifications(ctx context.Context, recipientID uuid.UUID) ([]models.Notification, error) {
	ctx = wrap.WithAction(ctx, "list_notifications")
	ctx = wrap.WithUserID(ctx, recipientID.String())

	list, err := s.notifications.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return list, nil
}

// MarkNotificationSeen flags one of the recipient's notifications.
func (s *CaregiverService) MarkNotificationSeen(ctx context.Context, id, recipientID uuid.UUID) error {
	ctx = wrap.WithAction(ctx, "mark_notification_seen")
	ctx = wrap.WithUserID(ctx, recipientID.String())

	if err := s.notifications.MarkSeen(ctx, id, recipientID); err != nil {
		return wrap.Error(ctx, err)
	}
	return nil
}
