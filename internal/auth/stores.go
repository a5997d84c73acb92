package auth

import (
	"context"
	"time"

	"github.com/peoplehub/hr-backend/internal/model"
)

// UserStore is the credential lookup surface the auth core needs. Missing
// rows are signaled with ErrNotFound; returned users carry their role set.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id uint64) (model.User, error)
}

// RefreshTokenStore persists opaque refresh tokens by their SHA-256 hash.
//
// Consume is the rotation primitive: it must atomically revoke a live
// (unrevoked, unexpired at `now`, strictly) token and return its owner, or
// ErrNotFound when no live row matches. Two concurrent Consume calls for
// the same hash must never both succeed.
type RefreshTokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error
	Consume(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}
