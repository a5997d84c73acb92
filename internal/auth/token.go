package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLen is the minimum accepted signing key length in bytes.
// HS256 keys shorter than the hash output are rejected at startup rather
// than silently weakening every issued token.
const MinSecretLen = 32

// Claims is the verified payload of an access token.
type Claims struct {
	Subject     string // user email
	UserID      uint64
	Authorities []string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Signer issues and verifies HS256 access tokens. The key material is set
// once at construction and never mutated, so a single Signer is safe for
// concurrent use across all requests.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSigner validates the key material and returns a ready Signer.
func NewSigner(secret []byte, ttl time.Duration) (*Signer, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("jwt secret too short: %d bytes, need at least %d", len(secret), MinSecretLen)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive, got %s", ttl)
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Signer{key: key, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}, nil
}

// TTL returns the configured access token lifetime.
func (s *Signer) TTL() time.Duration { return s.ttl }

// Issue signs an access token for the principal. The roles claim is always
// written as a list, regardless of how leniently it is read back.
func (s *Signer) Issue(p Principal) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":     p.Email,
		"roles":   p.Authorities,
		"user_id": p.UserID,
		"iat":     now.Unix(),
		"exp":     exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseAndVerify checks signature and expiry and returns the claims.
// Every failure mode (malformed input, wrong algorithm, bad signature,
// expired token, unusable claims) collapses into ErrTokenInvalid; callers
// treat that as "unauthenticated", never as a server fault.
func (s *Signer) ParseAndVerify(token string) (Claims, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}

	sub, _ := mc["sub"].(string)
	if sub == "" {
		return Claims{}, ErrTokenInvalid
	}
	c := Claims{
		Subject:     sub,
		Authorities: rolesClaim(mc["roles"]),
	}
	switch v := mc["user_id"].(type) {
	case float64:
		c.UserID = uint64(v)
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

// rolesClaim tolerates the three encodings seen in tokens from older
// builds: a native list, a single comma-joined string, or no claim at all.
func rolesClaim(v interface{}) []string {
	switch roles := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(roles))
		for _, r := range roles {
			if s, ok := r.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(roles) == "" {
			return nil
		}
		parts := strings.Split(roles, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}
