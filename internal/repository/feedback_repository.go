package repository

import (
	"context"
	"database/sql"

	"github.com/peoplehub/hr-backend/internal/auth"
	"github.com/peoplehub/hr-backend/internal/model"
)

const feedbackColumns = "id,author_id,target_user_id,content,polished_content,polish_status,polish_error,polish_job_id,visibility,created_at,updated_at"

// FeedbackRepo provides CRUD for peer feedback, including the polish
// status updates written by the background consumer.
type FeedbackRepo struct{ DB *sql.DB }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{DB: db} }

// Create inserts a feedback row and returns its ID.
func (r *FeedbackRepo) Create(ctx context.Context, f *model.Feedback) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO feedback (author_id, target_user_id, content, polish_status, polish_job_id, visibility) VALUES (?,?,?,?,?,?)",
		f.AuthorID, f.TargetUserID, f.Content, f.PolishStatus, f.PolishJobID, f.Visibility)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByID fetches one feedback row.
func (r *FeedbackRepo) FindByID(ctx context.Context, id uint64) (model.Feedback, error) {
	f, err := scanFeedback(r.DB.QueryRowContext(ctx,
		"SELECT "+feedbackColumns+" FROM feedback WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Feedback{}, auth.ErrNotFound
	}
	return f, err
}

// ListByUser returns feedback authored by or targeting the user.
func (r *FeedbackRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Feedback, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+feedbackColumns+" FROM feedback WHERE author_id=? OR target_user_id=? ORDER BY created_at DESC",
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// UpdateContent replaces the content and resets the polish state for a
// re-edit. The new job id supersedes any job still in flight for the old
// content; the old job's result will no longer match and is discarded.
func (r *FeedbackRepo) UpdateContent(ctx context.Context, id uint64, content string, polishStatus, polishJobID *string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE feedback SET content=?, polish_status=?, polish_job_id=?, polished_content=NULL, polish_error=NULL WHERE id=?",
		content, polishStatus, polishJobID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrNotFound
	}
	return nil
}

// SetPolishResult records the outcome of one polish job. The row is only
// touched while it is still waiting on exactly that job, so a stale job
// finishing after a re-edit matches zero rows instead of clobbering the
// newer content's state.
func (r *FeedbackRepo) SetPolishResult(ctx context.Context, id uint64, jobID, status string, polished, polishErr *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE feedback SET polish_status=?, polished_content=?, polish_error=? WHERE id=? AND polish_job_id=? AND polish_status=?",
		status, polished, polishErr, id, jobID, model.PolishPolishing)
	return err
}

func scanFeedback(row rowScanner) (model.Feedback, error) {
	var f model.Feedback
	err := row.Scan(&f.ID, &f.AuthorID, &f.TargetUserID, &f.Content, &f.PolishedContent,
		&f.PolishStatus, &f.PolishError, &f.PolishJobID, &f.Visibility, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}
