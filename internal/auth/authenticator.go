package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Authenticator verifies email+password pairs against the user store.
type Authenticator struct {
	Users UserStore
}

func NewAuthenticator(users UserStore) *Authenticator {
	return &Authenticator{Users: users}
}

// Authenticate looks the user up by email, checks the active flag and the
// bcrypt hash, and returns a Principal carrying ROLE_-prefixed authorities.
// Unknown email, inactive account and wrong password all surface as the
// same ErrInvalidCredentials; only store failures propagate as-is.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := a.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, fmt.Errorf("lookup user: %w", err)
	}
	if !u.IsActive {
		return Principal{}, ErrInvalidCredentials
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{
		UserID:      u.ID,
		Email:       u.Email,
		Authorities: Authorities(u.Roles),
	}, nil
}
