package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/peoplehub/hr-backend/internal/model"
)

// In-memory store fakes shared by the tests in this package.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uint64]model.User
}

func newFakeUserStore(users ...model.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uint64]model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) put(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

type tokenRow struct {
	userID    uint64
	expiresAt time.Time
	revoked   bool
}

// fakeTokenStore mirrors the production consume semantics: check and
// revoke under one lock so concurrent consumers cannot both win.
type fakeTokenStore struct {
	mu   sync.Mutex
	rows map[string]*tokenRow
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: make(map[string]*tokenRow)}
}

func (s *fakeTokenStore) Store(_ context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[tokenHash] = &tokenRow{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *fakeTokenStore) Consume(_ context.Context, tokenHash string, now time.Time) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[tokenHash]
	if !ok || row.revoked || !row.expiresAt.After(now) {
		return 0, ErrNotFound
	}
	row.revoked = true
	return row.userID, nil
}

func (s *fakeTokenStore) Revoke(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[tokenHash]; ok {
		row.revoked = true
	}
	return nil
}

func (s *fakeTokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.userID == userID {
			row.revoked = true
		}
	}
	return nil
}

func (s *fakeTokenStore) live(tokenHash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[tokenHash]
	return ok && !row.revoked
}
