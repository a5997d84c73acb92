package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/peoplehub/hr-backend/internal/auth"
	"github.com/peoplehub/hr-backend/internal/model"
	"github.com/peoplehub/hr-backend/internal/queue"
	"github.com/peoplehub/hr-backend/internal/repository"
)

type FeedbackHandler struct {
	Users    *repository.UserRepo
	Feedback *repository.FeedbackRepo
	Audit    *repository.AuditRepo
	// Publish enqueues a polish job. Swappable so tests can capture
	// events instead of dialing a broker.
	Publish func(ctx context.Context, event queue.PolishRequestedEvent) error
	// PolishModel is the default model name when a request names none.
	PolishModel string
}

func NewFeedbackHandler(users *repository.UserRepo, feedback *repository.FeedbackRepo, audit *repository.AuditRepo, polishModel string) *FeedbackHandler {
	return &FeedbackHandler{
		Users:       users,
		Feedback:    feedback,
		Audit:       audit,
		Publish:     queue.PublishPolishRequested,
		PolishModel: polishModel,
	}
}

type feedbackReq struct {
	TargetUserID uint64 `json:"target_user_id"`
	Content      string `json:"content"`
	Visibility   string `json:"visibility"`
	PolishModel  string `json:"polish_model"`
}

type feedbackUpdateReq struct {
	Content     string `json:"content"`
	PolishModel string `json:"polish_model"`
}

type feedbackResp struct {
	ID              uint64    `json:"id"`
	AuthorID        uint64    `json:"author_id"`
	TargetUserID    uint64    `json:"target_user_id"`
	Content         string    `json:"content"`
	PolishedContent *string   `json:"polished_content,omitempty"`
	PolishStatus    *string   `json:"polish_status,omitempty"`
	PolishError     *string   `json:"polish_error,omitempty"`
	Visibility      string    `json:"visibility"`
	CreatedAt       time.Time `json:"created_at"`
}

func toFeedbackResp(f *model.Feedback) feedbackResp {
	return feedbackResp{
		ID:              f.ID,
		AuthorID:        f.AuthorID,
		TargetUserID:    f.TargetUserID,
		Content:         f.Content,
		PolishedContent: f.PolishedContent,
		PolishStatus:    f.PolishStatus,
		PolishError:     f.PolishError,
		Visibility:      f.Visibility,
		CreatedAt:       f.CreatedAt,
	}
}

// Create records feedback and kicks off the background polish job. The
// row is written first so a broker outage degrades to a FAILED polish
// instead of losing the feedback.
func (h *FeedbackHandler) Create(c echo.Context) error {
	var req feedbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TargetUserID == 0 || strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "target_user_id and content required"})
	}
	visibility := model.VisibilityPublic
	if req.Visibility != "" {
		switch v := strings.ToUpper(strings.TrimSpace(req.Visibility)); v {
		case model.VisibilityPublic, model.VisibilityPrivate:
			visibility = v
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "visibility must be PUBLIC or PRIVATE"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "resolve current user failed")
	}
	if _, err := h.Users.FindByID(ctx, req.TargetUserID); err != nil {
		return storeError(c, err, "load feedback target failed")
	}

	// The job id is written with the row so only this job's result can
	// complete it.
	polishing := model.PolishPolishing
	jobID := uuid.NewString()
	f := model.Feedback{
		AuthorID:     actor.ID,
		TargetUserID: req.TargetUserID,
		Content:      req.Content,
		PolishStatus: &polishing,
		PolishJobID:  &jobID,
		Visibility:   visibility,
	}
	id, err := h.Feedback.Create(ctx, &f)
	if err != nil {
		return storeError(c, err, "create feedback failed")
	}
	f.ID = id
	f.CreatedAt = time.Now().UTC()

	h.requestPolish(c, &f, jobID, req.PolishModel)

	recordAudit(ctx, h.Audit, actor.ID, "feedback.create", "feedback", strconv.FormatUint(id, 10),
		map[string]interface{}{"target_user_id": req.TargetUserID, "visibility": visibility})
	return c.JSON(http.StatusCreated, toFeedbackResp(&f))
}

// List returns feedback involving one user. Defaults to the caller;
// private rows are filtered out for viewers who are neither author,
// target, nor admin.
func (h *FeedbackHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "resolve current user failed")
	}
	userID := actor.ID
	if s := c.QueryParam("user_id"); s != "" {
		userID, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
	}

	list, err := h.Feedback.ListByUser(ctx, userID)
	if err != nil {
		return storeError(c, err, "list feedback failed")
	}
	out := make([]feedbackResp, 0, len(list))
	for i := range list {
		if !canViewFeedback(&actor, &list[i]) {
			continue
		}
		out = append(out, toFeedbackResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one feedback entry, honouring its visibility.
func (h *FeedbackHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid feedback id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "resolve current user failed")
	}
	f, err := h.Feedback.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "load feedback failed")
	}
	if !canViewFeedback(&actor, &f) {
		return forbidden(c, "this feedback is private")
	}
	return c.JSON(http.StatusOK, toFeedbackResp(&f))
}

// Update replaces the content and re-runs the polish pipeline. Allowed
// for the author, the target's direct manager, or an admin.
func (h *FeedbackHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid feedback id"})
	}
	var req feedbackUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return storeError(c, err, "resolve current user failed")
	}
	f, err := h.Feedback.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "load feedback failed")
	}
	target, err := h.Users.FindByID(ctx, f.TargetUserID)
	if err != nil {
		return storeError(c, err, "load feedback target failed")
	}
	if !auth.CanEditFeedback(&actor, &f, &target) {
		return forbidden(c, "you do not have permission to edit this feedback")
	}

	// A fresh job id supersedes any polish still in flight for the old
	// content; the old job's result is discarded by the store guard.
	polishing := model.PolishPolishing
	jobID := uuid.NewString()
	if err := h.Feedback.UpdateContent(ctx, id, req.Content, &polishing, &jobID); err != nil {
		return storeError(c, err, "update feedback failed")
	}
	f.Content = req.Content
	f.PolishStatus = &polishing
	f.PolishJobID = &jobID
	f.PolishedContent = nil
	f.PolishError = nil

	h.requestPolish(c, &f, jobID, req.PolishModel)

	recordAudit(ctx, h.Audit, actor.ID, "feedback.update", "feedback", strconv.FormatUint(id, 10), nil)
	return c.JSON(http.StatusOK, toFeedbackResp(&f))
}

// requestPolish publishes the polish job and, when the broker is down,
// marks the row FAILED so it never sits in POLISHING forever. jobID must
// be the id already persisted on the row. Mutates f to reflect the
// recorded state.
func (h *FeedbackHandler) requestPolish(c echo.Context, f *model.Feedback, jobID, modelName string) {
	if modelName == "" {
		modelName = h.PolishModel
	}
	event := queue.PolishRequestedEvent{
		JobID:       jobID,
		FeedbackID:  f.ID,
		Content:     f.Content,
		Model:       modelName,
		RequestedAt: time.Now().UTC(),
	}
	if err := h.Publish(c.Request().Context(), event); err != nil {
		failed := model.PolishFailed
		msg := "polish enqueue failed"
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		if dbErr := h.Feedback.SetPolishResult(ctx, f.ID, jobID, failed, nil, &msg); dbErr != nil {
			log.Printf("feedback %d: mark polish failed: %v", f.ID, dbErr)
		}
		f.PolishStatus = &failed
		f.PolishError = &msg
	}
}

// canViewFeedback: public rows are open to any authenticated user;
// private rows only to the author, the target, or an admin.
func canViewFeedback(viewer *model.User, f *model.Feedback) bool {
	if f.Visibility == model.VisibilityPublic {
		return true
	}
	return viewer.ID == f.AuthorID || viewer.ID == f.TargetUserID || auth.IsAdmin(viewer)
}
