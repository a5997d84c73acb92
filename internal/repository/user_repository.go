package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/peoplehub/hr-backend/internal/auth"
	"github.com/peoplehub/hr-backend/internal/model"
)

const userColumns = "id,email,password_hash,first_name,last_name,job_title,department,manager_id,is_active,hire_date,sensitive_data,created_at,updated_at"

// UserRepo provides access to the users/roles tables. It implements
// auth.UserStore.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with its role memberships and returns the new ID.
// The password must already be hashed.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	sens, err := marshalSensitive(u.Sensitive)
	if err != nil {
		return 0, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name, job_title, department, manager_id, is_active, hire_date, sensitive_data) VALUES (?,?,?,?,?,?,?,?,?,?)",
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.JobTitle, u.Department, u.ManagerID, u.IsActive, u.HireDate, sens)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := replaceRolesTx(ctx, tx, uint64(id), u.Roles); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByEmail fetches a user by normalized email, roles included.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// FindByID fetches a user by id, roles included.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (model.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) findOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, auth.ErrNotFound
		}
		return model.User{}, err
	}
	u.Roles, err = r.loadRoles(ctx, u.ID)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// List returns users filtered by optional department and manager id.
func (r *UserRepo) List(ctx context.Context, department string, managerID *uint64) ([]model.User, error) {
	query := "SELECT " + userColumns + " FROM users"
	var (
		conds []string
		args  []interface{}
	)
	if department != "" {
		conds = append(conds, "department=?")
		args = append(args, department)
	}
	if managerID != nil {
		conds = append(conds, "manager_id=?")
		args = append(args, *managerID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Roles, err = r.loadRoles(ctx, users[i].ID); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// Update persists profile fields, the sensitive block, the manager link
// and the role set.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	sens, err := marshalSensitive(u.Sensitive)
	if err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET first_name=?, last_name=?, job_title=?, department=?, manager_id=?, is_active=?, hire_date=?, sensitive_data=? WHERE id=?",
		u.FirstName, u.LastName, u.JobTitle, u.Department, u.ManagerID, u.IsActive, u.HireDate, sens, u.ID)
	if err != nil {
		return err
	}
	if err := replaceRolesTx(ctx, tx, u.ID, u.Roles); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a user. A user who is still referenced as someone's
// manager cannot be deleted; that returns ErrConflict.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var reports int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE manager_id=?", id).Scan(&reports); err != nil {
		return err
	}
	if reports > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrNotFound
	}
	return tx.Commit()
}

func (r *UserRepo) loadRoles(ctx context.Context, userID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT r.name FROM roles r JOIN user_roles ur ON ur.role_id=r.id WHERE ur.user_id=? ORDER BY r.id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

func replaceRolesTx(ctx context.Context, tx *sql.Tx, userID uint64, roles []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id=?", userID); err != nil {
		return err
	}
	for _, role := range roles {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO user_roles (user_id, role_id) SELECT ?, id FROM roles WHERE name=?", userID, role)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("unknown role %q", role)
		}
	}
	return nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanUser(row rowScanner) (model.User, error) {
	var (
		u         model.User
		managerID sql.NullInt64
		hireDate  sql.NullTime
		sensitive sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.JobTitle,
		&u.Department, &managerID, &u.IsActive, &hireDate, &sensitive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if managerID.Valid {
		id := uint64(managerID.Int64)
		u.ManagerID = &id
	}
	if hireDate.Valid {
		t := hireDate.Time
		u.HireDate = &t
	}
	if sensitive.Valid && sensitive.String != "" {
		var s model.SensitiveData
		if err := json.Unmarshal([]byte(sensitive.String), &s); err != nil {
			return model.User{}, fmt.Errorf("decode sensitive_data for user %d: %w", u.ID, err)
		}
		u.Sensitive = &s
	}
	return u, nil
}

func marshalSensitive(s *model.SensitiveData) (interface{}, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
