package models

import (
	"context"
	"time"

	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

// User is an account as the external auth provider knows it. This system
// never creates users; it only resolves them from verified tokens.
type User struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      types.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

// IsAnonymous reports whether the user is the unauthenticated placeholder.
func (u *User) IsAnonymous() bool {
	return u == nil || u.ID.IsZero()
}

// AnonymousUser is the placeholder for requests without credentials.
func AnonymousUser() *User {
	return &User{}
}

type userCtxKey struct{}

var userKey = userCtxKey{}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userKey).(*User)
	return u
}
