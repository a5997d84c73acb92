package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peoplehub/hr-backend/internal/auth"
	"github.com/peoplehub/hr-backend/internal/config"
	"github.com/peoplehub/hr-backend/internal/model"
	"github.com/peoplehub/hr-backend/internal/redact"
	"github.com/peoplehub/hr-backend/internal/repository"
)

// UserHandler bundles dependencies for user management endpoints.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Audit *repository.AuditRepo
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo, audit *repository.AuditRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Audit: audit}
}

// ----- DTOs -----

type registerReq struct {
	Email      string               `json:"email"`
	Password   string               `json:"password"`
	FirstName  string               `json:"first_name"`
	LastName   string               `json:"last_name"`
	JobTitle   string               `json:"job_title"`
	Department string               `json:"department"`
	ManagerID  *uint64              `json:"manager_id"`
	Roles      []string             `json:"roles"`
	HireDate   string               `json:"hire_date"` // YYYY-MM-DD
	Sensitive  *model.SensitiveData `json:"sensitive"`
}

func (r registerReq) Redacted() map[string]interface{} {
	return map[string]interface{}{
		"email":      r.Email,
		"password":   redact.Mask,
		"department": r.Department,
		"roles":      r.Roles,
	}
}

type updateReq struct {
	FirstName  *string              `json:"first_name"`
	LastName   *string              `json:"last_name"`
	JobTitle   *string              `json:"job_title"`
	Department *string              `json:"department"`
	ManagerID  *uint64              `json:"manager_id"`
	Roles      []string             `json:"roles"`
	IsActive   *bool                `json:"is_active"`
	Sensitive  *model.SensitiveData `json:"sensitive"`
}

type userResp struct {
	ID         uint64               `json:"id"`
	Email      string               `json:"email"`
	FirstName  string               `json:"first_name,omitempty"`
	LastName   string               `json:"last_name,omitempty"`
	JobTitle   string               `json:"job_title,omitempty"`
	Department string               `json:"department,omitempty"`
	ManagerID  *uint64              `json:"manager_id,omitempty"`
	IsActive   bool                 `json:"is_active"`
	HireDate   string               `json:"hire_date,omitempty"`
	Roles      []string             `json:"roles"`
	Sensitive  *model.SensitiveData `json:"sensitive,omitempty"`
}

// toUserResp maps a user row; the sensitive block is attached only when
// the viewer is entitled to it.
func toUserResp(u *model.User, includeSensitive bool) userResp {
	resp := userResp{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		JobTitle:   u.JobTitle,
		Department: u.Department,
		ManagerID:  u.ManagerID,
		IsActive:   u.IsActive,
		Roles:      u.Roles,
	}
	if u.HireDate != nil {
		resp.HireDate = u.HireDate.Format("2006-01-02")
	}
	if includeSensitive {
		resp.Sensitive = u.Sensitive
	}
	return resp
}

// Register creates a user. The route is gated to MANAGER/ADMIN.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	roles, err := normalizeRoles(req.Roles)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	u := model.User{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		JobTitle:   req.JobTitle,
		Department: req.Department,
		ManagerID:  req.ManagerID,
		IsActive:   true,
		Sensitive:  req.Sensitive,
		Roles:      roles,
	}
	if req.HireDate != "" {
		d, err := time.Parse("2006-01-02", req.HireDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "hire_date must be YYYY-MM-DD"})
		}
		u.HireDate = &d
	}
	u.PasswordHash, err = auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return storeError(c, err, "hash password failed")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "resolve current user failed")
	}
	id, err := h.Users.Create(ctx, &u)
	if err != nil {
		return storeError(c, err, "create user failed")
	}
	u.ID = id
	recordAudit(ctx, h.Audit, actor.ID, "user.register", "users", strconv.FormatUint(id, 10), req.Redacted())

	return c.JSON(http.StatusCreated, toUserResp(&u, false))
}

// Me returns the caller's own profile, sensitive block included.
func (h *UserHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "load profile failed")
	}
	return c.JSON(http.StatusOK, toUserResp(&u, true))
}

// Profile returns one user. The sensitive block is included for self,
// direct manager or admin; everyone else sees the public fields.
func (h *UserHandler) Profile(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	viewer, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "resolve current user failed")
	}
	target, err := h.Users.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "load user failed")
	}
	return c.JSON(http.StatusOK, toUserResp(&target, auth.CanViewSensitive(&viewer, &target)))
}

// List returns users, optionally filtered by department and manager.
func (h *UserHandler) List(c echo.Context) error {
	var managerID *uint64
	if s := c.QueryParam("manager_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid manager_id"})
		}
		managerID = &id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx, c.QueryParam("department"), managerID)
	if err != nil {
		return storeError(c, err, "list users failed")
	}
	out := make([]userResp, 0, len(users))
	for i := range users {
		out = append(out, toUserResp(&users[i], false))
	}
	return c.JSON(http.StatusOK, out)
}

// Update edits a profile: self, direct manager or admin. Role and
// manager reassignment inside the update additionally requires manager
// or admin.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req updateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "resolve current user failed")
	}
	target, err := h.Users.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "load user failed")
	}
	if !auth.CanUpdateProfile(&actor, &target) {
		return forbidden(c, "you do not have permission to update this profile")
	}

	if req.FirstName != nil {
		target.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		target.LastName = *req.LastName
	}
	if req.JobTitle != nil {
		target.JobTitle = *req.JobTitle
	}
	if req.Department != nil {
		target.Department = *req.Department
	}
	if req.Sensitive != nil {
		target.Sensitive = req.Sensitive
	}
	if req.ManagerID != nil || req.Roles != nil || req.IsActive != nil {
		// Escalation-capable fields are held to the stricter rule.
		if !auth.CanAssign(&actor) {
			return forbidden(c, "role or manager changes require manager or admin")
		}
		if req.ManagerID != nil {
			if *req.ManagerID == target.ID {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "a user cannot manage themselves"})
			}
			target.ManagerID = req.ManagerID
		}
		if req.Roles != nil {
			roles, err := normalizeRoles(req.Roles)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
			target.Roles = roles
		}
		if req.IsActive != nil {
			target.IsActive = *req.IsActive
		}
	}

	if err := h.Users.Update(ctx, &target); err != nil {
		return storeError(c, err, "update user failed")
	}
	recordAudit(ctx, h.Audit, actor.ID, "user.update", "users", strconv.FormatUint(id, 10),
		redact.Fields(map[string]interface{}{
			"roles":      target.Roles,
			"manager_id": target.ManagerID,
			"is_active":  target.IsActive,
			"sensitive":  req.Sensitive,
		}, "sensitive"))
	return c.JSON(http.StatusOK, toUserResp(&target, true))
}

// Delete removes a user: never self, otherwise direct manager or admin.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "resolve current user failed")
	}
	target, err := h.Users.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "load user failed")
	}
	if auth.IsSelf(&actor, &target) {
		return forbidden(c, "no user can delete themselves")
	}
	if !auth.CanDeleteUser(&actor, &target) {
		return forbidden(c, "you do not have permission to delete this user")
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		return storeError(c, err, "delete user failed")
	}
	recordAudit(ctx, h.Audit, actor.ID, "user.delete", "users", strconv.FormatUint(id, 10), nil)
	return c.NoContent(http.StatusNoContent)
}

// normalizeRoles validates a requested role set. Input is lenient: case
// is ignored and the granted-authority form ("ROLE_ADMIN") is accepted
// alongside the bare name.
func normalizeRoles(roles []string) ([]string, error) {
	if len(roles) == 0 {
		return []string{model.RoleEmployee}, nil
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		switch name := auth.RoleName(strings.ToUpper(strings.TrimSpace(r))); name {
		case model.RoleEmployee, model.RoleManager, model.RoleAdmin:
			out = append(out, name)
		default:
			return nil, fmt.Errorf("unknown role %q", r)
		}
	}
	return out, nil
}
