package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/logger"
	wrap "github.com/calinga/care-booking-system/pkg/logger/wrapper"
	"github.com/calinga/care-booking-system/pkg/uuid"
	"github.com/golang-jwt/jwt/v5"
)

// TokenService verifies access tokens issued by the external identity
// provider and resolves them into known users. This system never issues
// tokens of its own.
type TokenService struct {
	users  UserRepo
	secret string
	log    logger.Logger
}

func NewTokenService(secret string, users UserRepo, log logger.Logger) *TokenService {
	return &TokenService{
		users:  users,
		secret: secret,
		log:    log,
	}
}

// Claims is the verified content of an access token.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	Role      types.UserRole
	ExpiresAt time.Time
}

// Validate checks the token's signature and shape, returning its claims.
func (s *TokenService) Validate(ctx context.Context, token string) (*Claims, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	parsedToken, err := jwt.ParseWithClaims(token, jwt.MapClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(s.secret), nil
	})
	if err != nil || !parsedToken.Valid {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	mc, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	userIDStr, _ := mc["user_id"].(string)
	if userIDStr == "" {
		return nil, wrap.Error(ctx, fmt.Errorf("invalid or missing 'user_id' in token claims"))
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("invalid 'user_id' in token claims"))
	}

	expFloat, ok := mc["exp"].(float64)
	if !ok {
		return nil, wrap.Error(ctx, fmt.Errorf("invalid or missing 'exp' in token claims"))
	}
	expTime := time.Unix(int64(expFloat), 0)
	if time.Now().UTC().After(expTime) {
		return nil, wrap.Error(ctx, ErrExpToken)
	}

	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)

	return &Claims{
		UserID:    userID,
		Email:     email,
		Role:      types.UserRole(role),
		ExpiresAt: expTime,
	}, nil
}

// Resolve turns a bearer token into the acting user. Any failure along
// the way collapses into ErrUnauthenticated so handlers need exactly
// one error branch.
func (s *TokenService) Resolve(ctx context.Context, token string) (*models.User, error) {
	ctx = wrap.WithAction(ctx, "resolve_actor")

	claims, err := s.Validate(ctx, token)
	if err != nil {
		return nil, wrap.Error(ctx, types.ErrUnauthenticated)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		s.log.Debug(ctx, "token user not found", "user_id", claims.UserID.String())
		return nil, wrap.Error(ctx, types.ErrUnauthenticated)
	}
	return user, nil
}
