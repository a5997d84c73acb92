package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peoplehub/hr-backend/internal/auth"
	"github.com/peoplehub/hr-backend/internal/middleware"
	"github.com/peoplehub/hr-backend/internal/redact"
)

// AuthHandler exposes the session lifecycle endpoints.
type AuthHandler struct {
	Sessions *auth.SessionManager
}

func NewAuthHandler(sessions *auth.SessionManager) *AuthHandler {
	return &AuthHandler{Sessions: sessions}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Redacted implements redact.Redactor; login attempts are logged without
// the password.
func (r loginReq) Redacted() map[string]interface{} {
	return map[string]interface{}{"email": r.Email, "password": redact.Mask}
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func (r refreshReq) Redacted() map[string]interface{} {
	return map[string]interface{}{"refresh_token": redact.Token(r.RefreshToken)}
}

type sessionResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until the access token expires
}

func toSessionResp(s auth.Session) sessionResp {
	return sessionResp{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    int64(time.Until(s.AccessExpires).Seconds()),
	}
}

// Login verifies credentials and returns a fresh token pair. Every
// credential failure is the same 401; the response never says which
// factor was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Printf("auth: login rejected %v", req.Redacted())
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return storeError(c, err, "login failed")
	}
	return c.JSON(http.StatusOK, toSessionResp(s))
}

// Refresh rotates a refresh token. The presented token is consumed even
// when racing another call: one caller wins, the rest see 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshTokenInvalid) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return storeError(c, err, "refresh failed")
	}
	return c.JSON(http.StatusOK, toSessionResp(s))
}

// Logout ends sessions. With a refresh_token in the body it revokes that
// single token; with only a bearer principal it revokes every live token
// of the user. Both variants are idempotent, and an anonymous logout with
// no token is a harmless no-op.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req) // empty body is fine

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if token := strings.TrimSpace(req.RefreshToken); token != "" {
		if err := h.Sessions.Logout(ctx, token); err != nil {
			return storeError(c, err, "logout failed")
		}
		return c.NoContent(http.StatusOK)
	}
	if p, ok := middleware.CurrentPrincipal(c); ok {
		if err := h.Sessions.LogoutAll(ctx, p); err != nil {
			return storeError(c, err, "logout failed")
		}
	}
	return c.NoContent(http.StatusOK)
}
