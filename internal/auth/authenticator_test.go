package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/peoplehub/hr-backend/internal/model"
)

func testUser(t *testing.T, id uint64, email, password string, roles ...string) model.User {
	t.Helper()
	hash, err := HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return model.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		Roles:        roles,
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	users := newFakeUserStore(testUser(t, 5, "lena@example.com", "s3cret", model.RoleEmployee, model.RoleManager))
	a := NewAuthenticator(users)

	p, err := a.Authenticate(context.Background(), "lena@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), p.UserID)
	assert.Equal(t, "lena@example.com", p.Email)
	assert.Equal(t, []string{"ROLE_EMPLOYEE", "ROLE_MANAGER"}, p.Authorities)
	assert.False(t, p.Anonymous())
}

func TestAuthenticateNormalizesEmail(t *testing.T) {
	users := newFakeUserStore(testUser(t, 5, "lena@example.com", "s3cret", model.RoleEmployee))
	a := NewAuthenticator(users)

	_, err := a.Authenticate(context.Background(), "  LENA@Example.COM ", "s3cret")
	require.NoError(t, err)
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	u := testUser(t, 5, "lena@example.com", "s3cret", model.RoleEmployee)
	inactive := testUser(t, 6, "gone@example.com", "s3cret")
	inactive.IsActive = false
	users := newFakeUserStore(u, inactive)
	a := NewAuthenticator(users)

	cases := []struct {
		name            string
		email, password string
	}{
		{"unknown email", "nobody@example.com", "s3cret"},
		{"wrong password", "lena@example.com", "wrong"},
		{"inactive account", "gone@example.com", "s3cret"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Authenticate(context.Background(), tc.email, tc.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}
