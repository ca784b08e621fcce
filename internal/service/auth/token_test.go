package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/logger"
	"github.com/calinga/care-booking-system/pkg/uuid"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

type fakeUserRepo struct {
	users map[uuid.UUID]models.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return &u, nil
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newService(users map[uuid.UUID]models.User) *TokenService {
	return NewTokenService(testSecret, &fakeUserRepo{users: users}, logger.NewDiscard())
}

func TestValidate_AcceptsWellFormedToken(t *testing.T) {
	svc := newService(nil)
	userID := uuid.New()

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": userID.String(),
		"email":   "maria@example.com",
		"role":    "caregiver",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	claims, err := svc.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Role != types.RoleCaregiver {
		t.Fatalf("role = %s, want caregiver", claims.Role)
	}
}

func TestValidate_RejectsWrongSecret(t *testing.T) {
	svc := newService(nil)

	token := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": uuid.New().String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	if _, err := svc.Validate(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestValidate_RejectsExpiredToken(t *testing.T) {
	svc := newService(nil)

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := svc.Validate(context.Background(), token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestValidate_RejectsMissingUserID(t *testing.T) {
	svc := newService(nil)

	token := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, err := svc.Validate(context.Background(), token); err == nil {
		t.Fatal("token without user_id accepted")
	}
}

func TestResolve_ReturnsKnownUser(t *testing.T) {
	userID := uuid.New()
	svc := newService(map[uuid.UUID]models.User{
		userID: {ID: userID, Name: "Maria Santos", Role: types.RoleCaregiver},
	})

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	user, err := svc.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.ID != userID {
		t.Fatalf("resolved %s, want %s", user.ID, userID)
	}
}

func TestResolve_UnknownUserIsUnauthenticated(t *testing.T) {
	svc := newService(nil)

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	if _, err := svc.Resolve(context.Background(), token); !errors.Is(err, types.ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}
