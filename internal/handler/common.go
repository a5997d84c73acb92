// Package handler contains the Echo HTTP handlers. Handlers resolve the
// current principal's backing user row once per request and hand it to
// the auth predicates; they never reach into ambient state.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peoplehub/hr-backend/internal/auth"
	"github.com/peoplehub/hr-backend/internal/middleware"
	"github.com/peoplehub/hr-backend/internal/model"
	"github.com/peoplehub/hr-backend/internal/redact"
	"github.com/peoplehub/hr-backend/internal/repository"
)

// dbTimeout bounds every database round trip made from a handler.
const dbTimeout = 5 * time.Second

// currentUser resolves the authenticated principal's user record. It is
// called exactly once per request; the returned row is passed to every
// predicate so authorization never re-queries the store.
func currentUser(ctx context.Context, c echo.Context, users *repository.UserRepo) (model.User, error) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return model.User{}, auth.ErrNotFound
	}
	return users.FindByEmail(ctx, p.Email)
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// storeError maps repository failures onto HTTP responses. fallback is
// the generic 500 message; internals never reach the client.
func storeError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, auth.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	default:
		log.Printf("handler: %s: %v", fallback, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
	}
}

func forbidden(c echo.Context, reason string) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": reason})
}

// recordAudit appends an audit entry. Details must already be passed
// through redact.Fields where they carry anything sensitive. Audit
// failures are logged, never surfaced to the client.
func recordAudit(ctx context.Context, audit *repository.AuditRepo, actorID uint64, action, table, targetID string, details map[string]interface{}) {
	payload := ""
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			log.Printf("audit: marshal details for %s: %v", action, err)
			b = []byte(`{"error":"` + redact.Mask + `"}`)
		}
		payload = string(b)
	}
	if err := audit.Record(ctx, actorID, action, table, targetID, payload); err != nil {
		log.Printf("audit: record %s on %s/%s: %v", action, table, targetID, err)
	}
}
