package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Session is the result of a successful login or refresh.
type Session struct {
	Principal      Principal
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string // raw opaque token, returned to the client once
	RefreshExpires time.Time
}

// SessionManager orchestrates the full session lifecycle: login, refresh
// rotation and logout. Refresh tokens are random 48-byte strings; only
// their SHA-256 hash reaches the store.
type SessionManager struct {
	Auth       *Authenticator
	Users      UserStore
	Tokens     RefreshTokenStore
	Signer     *Signer
	RefreshTTL time.Duration

	now func() time.Time
}

func NewSessionManager(a *Authenticator, users UserStore, tokens RefreshTokenStore, signer *Signer, refreshTTL time.Duration) *SessionManager {
	return &SessionManager{
		Auth:       a,
		Users:      users,
		Tokens:     tokens,
		Signer:     signer,
		RefreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Login authenticates the credentials and issues a fresh token pair.
func (m *SessionManager) Login(ctx context.Context, email, password string) (Session, error) {
	p, err := m.Auth.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return m.issue(ctx, p)
}

// Refresh exchanges a live refresh token for a new token pair. The
// presented token is consumed atomically before anything is issued, so a
// replayed or concurrently-raced token fails with ErrRefreshTokenInvalid
// and a consumed token is never reactivated.
func (m *SessionManager) Refresh(ctx context.Context, rawToken string) (Session, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return Session{}, ErrRefreshTokenInvalid
	}
	userID, err := m.Tokens.Consume(ctx, HashRefreshToken(rawToken), m.now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrRefreshTokenInvalid
		}
		return Session{}, fmt.Errorf("consume refresh token: %w", err)
	}
	u, err := m.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrRefreshTokenInvalid
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return Session{}, ErrRefreshTokenInvalid
	}
	p := Principal{UserID: u.ID, Email: u.Email, Authorities: Authorities(u.Roles)}
	return m.issue(ctx, p)
}

// Logout revokes a single refresh token. Unknown tokens are a silent
// no-op so the operation is idempotent.
func (m *SessionManager) Logout(ctx context.Context, rawToken string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil
	}
	return m.Tokens.Revoke(ctx, HashRefreshToken(rawToken))
}

// LogoutAll revokes every live refresh token of the principal's user.
// An anonymous principal is a no-op; logging out while unauthenticated
// is harmless.
func (m *SessionManager) LogoutAll(ctx context.Context, p Principal) error {
	if p.Anonymous() || p.UserID == 0 {
		return nil
	}
	return m.Tokens.RevokeAllForUser(ctx, p.UserID)
}

func (m *SessionManager) issue(ctx context.Context, p Principal) (Session, error) {
	access, accessExp, err := m.Signer.Issue(p)
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	raw, err := newRefreshToken()
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh token: %w", err)
	}
	refreshExp := m.now().Add(m.RefreshTTL)
	if err := m.Tokens.Store(ctx, p.UserID, HashRefreshToken(raw), refreshExp); err != nil {
		return Session{}, fmt.Errorf("store refresh token: %w", err)
	}
	return Session{
		Principal:      p,
		AccessToken:    access,
		AccessExpires:  accessExp,
		RefreshToken:   raw,
		RefreshExpires: refreshExp,
	}, nil
}

// HashRefreshToken returns the hex SHA-256 digest of a raw refresh token.
// Storing only the digest keeps a leaked token table from being usable.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// newRefreshToken returns 48 bytes of secure randomness as 96 hex chars.
func newRefreshToken() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
