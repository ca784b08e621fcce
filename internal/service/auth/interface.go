package auth

import (
	"context"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

type UserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
