package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peoplehub/hr-backend/internal/model"
)

func newTestSessionManager(t *testing.T, users *fakeUserStore, tokens *fakeTokenStore) *SessionManager {
	t.Helper()
	signer := newTestSigner(t, time.Hour)
	return NewSessionManager(NewAuthenticator(users), users, tokens, signer, 7*24*time.Hour)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	users := newFakeUserStore(testUser(t, 1, "ana@example.com", "pw", model.RoleEmployee))
	tokens := newFakeTokenStore()
	m := newTestSessionManager(t, users, tokens)

	s, err := m.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, s.AccessToken)
	assert.Len(t, s.RefreshToken, 96)
	assert.True(t, s.RefreshExpires.After(time.Now()))

	// The store holds the hash, not the raw token.
	assert.False(t, tokens.live(s.RefreshToken))
	assert.True(t, tokens.live(HashRefreshToken(s.RefreshToken)))

	claims, err := m.Signer.ParseAndVerify(s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), claims.UserID)
	assert.Equal(t, []string{"ROLE_EMPLOYEE"}, claims.Authorities)
}

func TestRefreshRotatesToken(t *testing.T) {
	users := newFakeUserStore(testUser(t, 1, "ana@example.com", "pw", model.RoleEmployee))
	tokens := newFakeTokenStore()
	m := newTestSessionManager(t, users, tokens)

	first, err := m.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)

	second, err := m.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The consumed token is dead; presenting it again is a replay.
	_, err = m.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)

	// The replacement still works.
	_, err = m.Refresh(context.Background(), second.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsUnknownAndEmpty(t *testing.T) {
	m := newTestSessionManager(t, newFakeUserStore(), newFakeTokenStore())

	_, err := m.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
	_, err = m.Refresh(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestRefreshExpiryBoundary(t *testing.T) {
	users := newFakeUserStore(testUser(t, 1, "ana@example.com", "pw", model.RoleEmployee))
	tokens := newFakeTokenStore()
	m := newTestSessionManager(t, users, tokens)

	s, err := m.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)

	// A token whose expiry equals the clock is already dead.
	m.now = func() time.Time { return s.RefreshExpires }
	_, err = m.Refresh(context.Background(), s.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	u := testUser(t, 1, "ana@example.com", "pw", model.RoleEmployee)
	users := newFakeUserStore(u)
	tokens := newFakeTokenStore()
	m := newTestSessionManager(t, users, tokens)

	s, err := m.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)

	u.IsActive = false
	users.put(u)

	_, err = m.Refresh(context.Background(), s.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestConcurrentRefreshSingleWinner(t *testing.T) {
	users := newFakeUserStore(testUser(t, 1, "ana@example.com", "pw", model.RoleEmployee))
	tokens := newFakeTokenStore()
	m := newTestSessionManager(t, users, tokens)

	s, err := m.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)

	const racers = 16
	var (
		wg   sync.WaitGroup
		wins int64
		mu   sync.Mutex
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Refresh(context.Background(), s.RefreshToken); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), wins)
}

func TestLogoutIsIdempotent(t *testing.T) {
	users := newFakeUserStore(testUser(t, 1, "ana@example.com", "pw", model.RoleEmployee))
	tokens := newFakeTokenStore()
	m := newTestSessionManager(t, users, tokens)

	s, err := m.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background(), s.RefreshToken))
	assert.False(t, tokens.live(HashRefreshToken(s.RefreshToken)))

	// Again, and with tokens that never existed.
	require.NoError(t, m.Logout(context.Background(), s.RefreshToken))
	require.NoError(t, m.Logout(context.Background(), "never-issued"))
	require.NoError(t, m.Logout(context.Background(), ""))
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	users := newFakeUserStore(testUser(t, 1, "ana@example.com", "pw", model.RoleEmployee))
	tokens := newFakeTokenStore()
	m := newTestSessionManager(t, users, tokens)

	s1, err := m.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)
	s2, err := m.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, m.LogoutAll(context.Background(), s1.Principal))
	_, err = m.Refresh(context.Background(), s1.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
	_, err = m.Refresh(context.Background(), s2.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestLogoutAllAnonymousIsNoop(t *testing.T) {
	m := newTestSessionManager(t, newFakeUserStore(), newFakeTokenStore())
	require.NoError(t, m.LogoutAll(context.Background(), Principal{}))
}
