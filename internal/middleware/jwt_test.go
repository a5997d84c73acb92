package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peoplehub/hr-backend/internal/auth"
)

func testSigner(t *testing.T) *auth.Signer {
	t.Helper()
	s, err := auth.NewSigner([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)
	return s
}

// protectedApp wires BearerAuth + RequireAuth in front of a handler that
// echoes the resolved principal's email.
func protectedApp(signer *auth.Signer) *echo.Echo {
	e := echo.New()
	g := e.Group("/v1")
	g.Use(BearerAuth(signer))
	g.Use(RequireAuth())
	g.GET("/whoami", func(c echo.Context) error {
		p, _ := CurrentPrincipal(c)
		return c.String(http.StatusOK, p.Email)
	})
	g.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireRole("ADMIN"))
	return e
}

func doGet(e *echo.Echo, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBearerAuthValidToken(t *testing.T) {
	signer := testSigner(t)
	e := protectedApp(signer)

	token, _, err := signer.Issue(auth.Principal{
		UserID:      3,
		Email:       "kim@example.com",
		Authorities: []string{"ROLE_EMPLOYEE"},
	})
	require.NoError(t, err)

	rec := doGet(e, "/v1/whoami", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kim@example.com", rec.Body.String())
}

func TestBearerAuthMissingOrBadTokenIsAnonymous(t *testing.T) {
	e := protectedApp(testSigner(t))

	// No header, non-bearer scheme, garbage token: all land as anonymous
	// and get rejected by RequireAuth, not by the decoder.
	rec := doGet(e, "/v1/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doGet(e, "/v1/whoami", "definitely-not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuthExpiredToken(t *testing.T) {
	signer := testSigner(t)
	e := protectedApp(signer)

	// A token signed with the right key but already past its exp claim.
	past := time.Now().Add(-time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "kim@example.com",
		"roles":   []string{"ROLE_EMPLOYEE"},
		"user_id": 3,
		"iat":     past.Add(-time.Hour).Unix(),
		"exp":     past.Unix(),
	}).SignedString([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	rec := doGet(e, "/v1/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	signer := testSigner(t)
	e := protectedApp(signer)

	employee, _, err := signer.Issue(auth.Principal{
		UserID: 3, Email: "kim@example.com", Authorities: []string{"ROLE_EMPLOYEE"},
	})
	require.NoError(t, err)
	admin, _, err := signer.Issue(auth.Principal{
		UserID: 4, Email: "root@example.com", Authorities: []string{"ROLE_EMPLOYEE", "ROLE_ADMIN"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doGet(e, "/v1/admin", employee).Code)
	assert.Equal(t, http.StatusOK, doGet(e, "/v1/admin", admin).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(e, "/v1/admin", "").Code)
}
