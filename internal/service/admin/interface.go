package admin

import (
	"context"

	"github.com/calinga/care-booking-system/internal/domain/models"
)

type AdminRepository interface {
	GetOverview(ctx context.Context) (*models.AdminOverview, error)
}
