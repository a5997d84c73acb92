package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/peoplehub/hr-backend/internal/auth"
	"github.com/peoplehub/hr-backend/internal/model"
)

// TokenRepo persists refresh tokens by hash. It implements
// auth.RefreshTokenStore. Rows are only ever flipped to revoked, never
// deleted; expiry is evaluated at read time.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a live refresh token row.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, expiresAt)
	return err
}

// Consume atomically revokes a live token and returns its owner. The
// single UPDATE is the compare-and-set: of two concurrent calls for the
// same hash, exactly one sees a row affected. A token whose expiry equals
// `now` is already expired (strict comparison).
func (r *TokenRepo) Consume(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE token_hash=? AND revoked_at IS NULL AND expires_at > ?",
		now, tokenHash, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, auth.ErrNotFound
	}
	var rt model.RefreshToken
	if err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&rt.ID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.RevokedAt, &rt.CreatedAt); err != nil {
		return 0, err
	}
	return rt.UserID, nil
}

// Revoke marks a token revoked. Revoking an unknown or already-revoked
// token is a no-op.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser revokes every live token owned by the user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()",
		userID)
	return err
}
