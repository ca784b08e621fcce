package admin

import (
	"context"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/logger"
	wrap "github.com/calinga/care-booking-system/pkg/logger/wrapper"
)

type AdminService struct {
	adminRepo AdminRepository
	l         logger.Logger
}

func NewAdminService(adminRepo AdminRepository, l logger.Logger) *AdminService {
	return &AdminService{
		adminRepo: adminRepo,
		l:         l,
	}
}

// GetOverview returns the operational snapshot. Status and tier maps are
// always fully populated so dashboards never branch on missing keys.
func (s *AdminService) GetOverview(ctx context.Context) (*models.AdminOverview, error) {
	ctx = wrap.WithAction(ctx, "admin_overview")

	overview, err := s.adminRepo.GetOverview(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	if overview.BookingsByStatus == nil {
		overview.BookingsByStatus = make(map[types.BookingStatus]int)
	}
	for _, st := range []types.BookingStatus{types.StatusPending, types.StatusAccepted, types.StatusCompleted, types.StatusCancelled} {
		if _, ok := overview.BookingsByStatus[st]; !ok {
			overview.BookingsByStatus[st] = 0
		}
	}

	if overview.BookingsByTier == nil {
		overview.BookingsByTier = make(map[types.CaregiverTier]int)
	}
	for _, tier := range types.Tiers() {
		if _, ok := overview.BookingsByTier[tier]; !ok {
			overview.BookingsByTier[tier] = 0
		}
	}

	return overview, nil
}
