package handler

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peoplehub/hr-backend/internal/repository"
)

// AdminHandler exposes the audit trail. All routes are admin-only at the
// router level.
type AdminHandler struct {
	Audit *repository.AuditRepo
}

func NewAdminHandler(audit *repository.AuditRepo) *AdminHandler {
	return &AdminHandler{Audit: audit}
}

type auditResp struct {
	ID          string    `json:"id"`
	ActorID     uint64    `json:"actor_id"`
	Action      string    `json:"action"`
	TargetTable string    `json:"target_table"`
	TargetID    string    `json:"target_id"`
	Details     string    `json:"details,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListAudit returns audit entries matching the query filters.
func (h *AdminHandler) ListAudit(c echo.Context) error {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	entries, err := h.Audit.Find(ctx, filter)
	if err != nil {
		return storeError(c, err, "query audit log failed")
	}
	out := make([]auditResp, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditResp{
			ID:          e.ID,
			ActorID:     e.ActorID,
			Action:      e.Action,
			TargetTable: e.TargetTable,
			TargetID:    e.TargetID,
			Details:     e.Details,
			CreatedAt:   e.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ExportAudit streams the filtered audit entries as a CSV attachment.
func (h *AdminHandler) ExportAudit(c echo.Context) error {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	entries, err := h.Audit.Find(ctx, filter)
	if err != nil {
		return storeError(c, err, "query audit log failed")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="audits.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{"id", "actor_id", "action", "target_table", "target_id", "details", "created_at"}); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.ID,
			strconv.FormatUint(e.ActorID, 10),
			e.Action,
			e.TargetTable,
			e.TargetID,
			e.Details,
			e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func auditFilterFromQuery(c echo.Context) (repository.AuditFilter, error) {
	var f repository.AuditFilter
	f.Action = c.QueryParam("action")
	f.TargetTable = c.QueryParam("target_table")

	if s := c.QueryParam("actor_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return f, errors.New("invalid actor_id")
		}
		f.ActorID = &id
	}
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return f, errors.New("from must be RFC3339")
		}
		f.From = &t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return f, errors.New("to must be RFC3339")
		}
		f.To = &t
	}
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return f, errors.New("invalid limit")
		}
		f.Limit = n
	}
	if s := c.QueryParam("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return f, errors.New("invalid offset")
		}
		f.Offset = n
	}
	return f, nil
}
