package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/peoplehub/hr-backend/internal/auth"
	"github.com/peoplehub/hr-backend/internal/config"
	"github.com/peoplehub/hr-backend/internal/handler"
	"github.com/peoplehub/hr-backend/internal/middleware"
	"github.com/peoplehub/hr-backend/internal/model"
)

// Handlers collects every handler the router wires up.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Absences *handler.AbsenceHandler
	Feedback *handler.FeedbackHandler
	Admin    *handler.AdminHandler
}

// Register wires all routes onto the Echo instance.
//
// Route gating happens in two layers: coarse role checks here via
// middleware, and per-object checks inside the handlers. The bearer
// middleware itself never rejects; a request with a bad or missing
// token simply proceeds anonymously until a gate requires more.
func Register(e *echo.Echo, h Handlers, signer *auth.Signer, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	// Health check for load balancers; no auth, no rate limit.
	e.GET("/healthz", handler.Health)

	// Session endpoints. Login is rate limited per client IP so that
	// credential stuffing burns the bucket, not the user table.
	sessions := e.Group("/v1/auth")
	sessions.POST("/login", h.Auth.Login, middleware.RateLimit(rlCfg, rdb))
	sessions.POST("/refresh", h.Auth.Refresh)
	// Logout accepts either a refresh token in the body or a bearer
	// token; the middleware only decodes, it never rejects.
	sessions.POST("/logout", h.Auth.Logout, middleware.BearerAuth(signer))

	// Everything below requires a valid access token.
	api := e.Group("/v1")
	api.Use(middleware.BearerAuth(signer))
	api.Use(middleware.RequireAuth())
	api.Use(middleware.RequestLog())

	api.GET("/me", h.Users.Me)

	users := api.Group("/users")
	users.POST("/register", h.Users.Register, middleware.RequireRole(model.RoleManager, model.RoleAdmin))
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Profile)
	users.PATCH("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete)

	absences := api.Group("/absences")
	absences.POST("", h.Absences.Submit)
	absences.GET("", h.Absences.ListMine)
	absences.GET("/team", h.Absences.ListTeam, middleware.RequireRole(model.RoleManager, model.RoleAdmin))
	absences.POST("/:id/approve", h.Absences.Approve, middleware.RequireRole(model.RoleManager, model.RoleAdmin))
	absences.POST("/:id/reject", h.Absences.Reject, middleware.RequireRole(model.RoleManager, model.RoleAdmin))

	feedback := api.Group("/feedback")
	feedback.POST("", h.Feedback.Create)
	feedback.GET("", h.Feedback.List)
	feedback.GET("/:id", h.Feedback.Get)
	feedback.PATCH("/:id", h.Feedback.Update)

	admin := api.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/audits", h.Admin.ListAudit)
	admin.GET("/audits/export", h.Admin.ExportAudit)
}
