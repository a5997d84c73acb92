package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peoplehub/hr-backend/internal/auth"
	"github.com/peoplehub/hr-backend/internal/model"
	"github.com/peoplehub/hr-backend/internal/repository"
)

type AbsenceHandler struct {
	Users    *repository.UserRepo
	Absences *repository.AbsenceRepo
	Audit    *repository.AuditRepo
}

func NewAbsenceHandler(users *repository.UserRepo, absences *repository.AbsenceRepo, audit *repository.AuditRepo) *AbsenceHandler {
	return &AbsenceHandler{Users: users, Absences: absences, Audit: audit}
}

type absenceReq struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

type absenceResp struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Type      string    `json:"type"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Reason    string    `json:"reason,omitempty"`
	Status    string    `json:"status"`
	DecidedBy *uint64   `json:"decided_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toAbsenceResp(a *model.AbsenceRequest) absenceResp {
	return absenceResp{
		ID:        a.ID,
		UserID:    a.UserID,
		Type:      a.Type,
		StartDate: a.StartDate.Format("2006-01-02"),
		EndDate:   a.EndDate.Format("2006-01-02"),
		Reason:    a.Reason,
		Status:    a.Status,
		DecidedBy: a.DecidedBy,
		CreatedAt: a.CreatedAt,
	}
}

// Submit files a new absence request for the caller. Requests always
// start out PENDING.
func (h *AbsenceHandler) Submit(c echo.Context) error {
	var req absenceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	absType, err := model.ParseAbsenceType(req.Type)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date before start_date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "resolve current user failed")
	}
	a := model.AbsenceRequest{
		UserID:    actor.ID,
		Type:      absType,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		Status:    model.AbsencePending,
	}
	id, err := h.Absences.Create(ctx, &a)
	if err != nil {
		return storeError(c, err, "create absence failed")
	}
	a.ID = id
	a.CreatedAt = time.Now().UTC()
	recordAudit(ctx, h.Audit, actor.ID, "absence.submit", "absence_requests", strconv.FormatUint(id, 10),
		map[string]interface{}{"type": absType, "start_date": req.StartDate, "end_date": req.EndDate})
	return c.JSON(http.StatusCreated, toAbsenceResp(&a))
}

// ListMine returns the caller's own requests, newest first.
func (h *AbsenceHandler) ListMine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "resolve current user failed")
	}
	list, err := h.Absences.ListByUser(ctx, actor.ID)
	if err != nil {
		return storeError(c, err, "list absences failed")
	}
	return c.JSON(http.StatusOK, toAbsenceList(list))
}

// ListTeam returns requests from the caller's direct reports, optionally
// filtered by status. Route gated to MANAGER/ADMIN.
func (h *AbsenceHandler) ListTeam(c echo.Context) error {
	var status string
	if s := c.QueryParam("status"); s != "" {
		parsed, err := model.ParseAbsenceStatus(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		status = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "resolve current user failed")
	}
	list, err := h.Absences.ListByManagerAndStatus(ctx, actor.ID, status)
	if err != nil {
		return storeError(c, err, "list team absences failed")
	}
	return c.JSON(http.StatusOK, toAbsenceList(list))
}

// Approve moves a PENDING request to APPROVED.
func (h *AbsenceHandler) Approve(c echo.Context) error {
	return h.decide(c, model.AbsenceApproved)
}

// Reject moves a PENDING request to REJECTED.
func (h *AbsenceHandler) Reject(c echo.Context) error {
	return h.decide(c, model.AbsenceRejected)
}

// decide performs the object-level check: the decider must be the
// owner's direct manager or an admin, and the request must still be
// pending. A request already decided comes back 409.
func (h *AbsenceHandler) decide(c echo.Context, status string) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid absence id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "resolve current user failed")
	}
	a, err := h.Absences.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "load absence failed")
	}
	owner, err := h.Users.FindByID(ctx, a.UserID)
	if err != nil {
		return storeError(c, err, "load absence owner failed")
	}
	if !auth.CanDecideAbsence(&actor, &owner) {
		return forbidden(c, "only the owner's manager or an admin can decide this request")
	}
	if err := h.Absences.Decide(ctx, id, status, actor.ID); err != nil {
		return storeError(c, err, "decide absence failed")
	}
	a.Status = status
	a.DecidedBy = &actor.ID
	recordAudit(ctx, h.Audit, actor.ID, "absence.decide", "absence_requests", strconv.FormatUint(id, 10),
		map[string]interface{}{"status": status, "owner_id": a.UserID})
	return c.JSON(http.StatusOK, toAbsenceResp(&a))
}

func toAbsenceList(list []model.AbsenceRequest) []absenceResp {
	out := make([]absenceResp, 0, len(list))
	for i := range list {
		out = append(out, toAbsenceResp(&list[i]))
	}
	return out
}
