package users

import "time"

// Role is the closed set of permission levels a user can hold. The string
// values are persisted and round-tripped through forms, so they are stable.
type Role string

const (
	RoleStudent           Role = "Student"
	RoleStaff             Role = "Staff"
	RoleNutritionist      Role = "Nutritionist"
	RoleCafeteriaEmployee Role = "Cafeteria Employee"
	RoleAdministrator     Role = "Administrator"
)

// AllRoles lists every valid role.
func AllRoles() []Role {
	return []Role{RoleStudent, RoleStaff, RoleNutritionist, RoleCafeteriaEmployee, RoleAdministrator}
}

// Valid reports whether the role is a member of the closed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleNutritionist, RoleCafeteriaEmployee, RoleAdministrator:
		return true
	}
	return false
}

// String returns the stable external representation.
func (r Role) String() string {
	return string(r)
}

// User represents a registered account. Passwords are only ever stored as a
// bcrypt hash; Credits carries the NUMERIC column as text to avoid float drift.
type User struct {
	ID                  int64
	FullName            string
	Email               string
	PasswordHash        string
	Role                Role
	IsScholarship       bool
	Credits             string
	DietaryRestrictions string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
