package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peoplehub/hr-backend/internal/model"
)

// AuditRepo writes and queries the append-only audit log. Rows are never
// updated or deleted.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// AuditFilter narrows a log query. Zero-valued fields are ignored.
// Limit defaults to 50 and is capped at 500.
type AuditFilter struct {
	ActorID     *uint64
	Action      string
	TargetTable string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// Record appends one audit entry, generating its id.
func (r *AuditRepo) Record(ctx context.Context, actorID uint64, action, targetTable, targetID, details string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_log (id, actor_id, action, target_table, target_id, details) VALUES (?,?,?,?,?,?)",
		uuid.NewString(), actorID, action, targetTable, targetID, details)
	return err
}

// Find returns entries matching the filter, newest first.
func (r *AuditRepo) Find(ctx context.Context, f AuditFilter) ([]model.AuditLog, error) {
	query := "SELECT id,actor_id,action,target_table,target_id,details,created_at FROM audit_log"
	var (
		conds []string
		args  []interface{}
	)
	if f.ActorID != nil {
		conds = append(conds, "actor_id=?")
		args = append(args, *f.ActorID)
	}
	if f.Action != "" {
		conds = append(conds, "action=?")
		args = append(args, f.Action)
	}
	if f.TargetTable != "" {
		conds = append(conds, "target_table=?")
		args = append(args, f.TargetTable)
	}
	if f.From != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, *f.To)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AuditLog
	for rows.Next() {
		var (
			e       model.AuditLog
			details sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetTable, &e.TargetID, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Details = details.String
		out = append(out, e)
	}
	return out, rows.Err()
}
