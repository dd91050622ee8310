package entity

import "time"

// AdminRole orders admin permissions from weakest to strongest.
type AdminRole string

const (
	RoleViewer     AdminRole = "VIEWER"
	RoleAdmin      AdminRole = "ADMIN"
	RoleSuperAdmin AdminRole = "SUPER_ADMIN"
)

var roleRank = map[AdminRole]int{
	RoleViewer:     1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// AtLeast reports whether r grants at least the permissions of required.
func (r AdminRole) AtLeast(required AdminRole) bool {
	return roleRank[r] >= roleRank[required]
}

// Admin is a dashboard account. Passwords are stored as bcrypt hashes.
type Admin struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         AdminRole
	CreatedAt    time.Time
}
