package model

import "time"

// Role names seeded in the roles table.
const (
	RoleEmployee = "EMPLOYEE"
	RoleManager  = "MANAGER"
	RoleAdmin    = "ADMIN"
)

// User mirrors the 'users' table. Roles are loaded from the user_roles
// join table; ManagerID is nil for users without a direct manager.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	JobTitle     string
	Department   string
	ManagerID    *uint64
	IsActive     bool
	HireDate     *time.Time
	Sensitive    *SensitiveData
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user's role set contains name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// SensitiveData holds the personal fields stored as a JSON column on the
// users table. It is only serialized into responses the caller is
// authorized to see and must never appear in logs.
type SensitiveData struct {
	Phone   string  `json:"phone,omitempty"`
	Address string  `json:"address,omitempty"`
	Salary  float64 `json:"salary,omitempty"`
}
