package model

import "time"

// RefreshToken models an entry in the 'refresh_tokens' table. Only the
// SHA-256 hash of the opaque token is stored. A token is live while
// RevokedAt is null and ExpiresAt lies in the future; revoked rows are
// kept for the audit trail and never deleted.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
