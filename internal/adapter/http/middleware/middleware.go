package middleware

import (
	"context"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/pkg/logger"
)

type (
	// AuthService resolves a bearer token into a known user.
	AuthService interface {
		Resolve(ctx context.Context, token string) (*models.User, error)
	}

	Middleware struct {
		auth AuthService
		log  logger.Logger
	}
)

func NewMiddleware(auth AuthService, log logger.Logger) *Middleware {
	return &Middleware{
		auth: auth,
		log:  log,
	}
}
