package repository

import (
	"context"
	"database/sql"

	"github.com/peoplehub/hr-backend/internal/auth"
	"github.com/peoplehub/hr-backend/internal/model"
)

const absenceColumns = "id,user_id,start_date,end_date,type,status,reason,decided_by,created_at,updated_at"

// AbsenceRepo provides CRUD for absence requests.
type AbsenceRepo struct{ DB *sql.DB }

func NewAbsenceRepo(db *sql.DB) *AbsenceRepo { return &AbsenceRepo{DB: db} }

// Create inserts a pending absence request and returns its ID.
func (r *AbsenceRepo) Create(ctx context.Context, a *model.AbsenceRequest) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO absence_requests (user_id, start_date, end_date, type, status, reason) VALUES (?,?,?,?,?,?)",
		a.UserID, a.StartDate, a.EndDate, a.Type, a.Status, a.Reason)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByID fetches one absence request.
func (r *AbsenceRepo) FindByID(ctx context.Context, id uint64) (model.AbsenceRequest, error) {
	a, err := scanAbsence(r.DB.QueryRowContext(ctx,
		"SELECT "+absenceColumns+" FROM absence_requests WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.AbsenceRequest{}, auth.ErrNotFound
	}
	return a, err
}

// ListByUser returns all requests submitted by one user, newest first.
func (r *AbsenceRepo) ListByUser(ctx context.Context, userID uint64) ([]model.AbsenceRequest, error) {
	return r.list(ctx,
		"SELECT "+absenceColumns+" FROM absence_requests WHERE user_id=? ORDER BY created_at DESC", userID)
}

// ListByManagerAndStatus returns requests from the manager's direct
// reports, optionally filtered by state when status is non-empty.
func (r *AbsenceRepo) ListByManagerAndStatus(ctx context.Context, managerID uint64, status string) ([]model.AbsenceRequest, error) {
	query := "SELECT a.id,a.user_id,a.start_date,a.end_date,a.type,a.status,a.reason,a.decided_by,a.created_at,a.updated_at " +
		"FROM absence_requests a JOIN users u ON u.id=a.user_id WHERE u.manager_id=?"
	args := []interface{}{managerID}
	if status != "" {
		query += " AND a.status=?"
		args = append(args, status)
	}
	query += " ORDER BY a.created_at DESC"
	return r.list(ctx, query, args...)
}

// Decide moves a pending request to APPROVED or REJECTED, recording the
// decider. A request that is no longer pending returns ErrConflict;
// decisions are not rewritable.
func (r *AbsenceRepo) Decide(ctx context.Context, id uint64, status string, deciderID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE absence_requests SET status=?, decided_by=? WHERE id=? AND status=?",
		status, deciderID, id, model.AbsencePending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing row from an already-decided one.
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM absence_requests WHERE id=?", id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return auth.ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

func (r *AbsenceRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.AbsenceRequest, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.AbsenceRequest
	for rows.Next() {
		a, err := scanAbsence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAbsence(row rowScanner) (model.AbsenceRequest, error) {
	var a model.AbsenceRequest
	err := row.Scan(&a.ID, &a.UserID, &a.StartDate, &a.EndDate, &a.Type, &a.Status, &a.Reason, &a.DecidedBy, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
