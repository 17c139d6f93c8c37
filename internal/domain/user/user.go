// Package user defines the acting-user identity consumed by the engines.
//
// Worklane does not manage accounts; identity and role arrive from the
// authenticating gateway and are carried through the request context.
package user

// Role represents the authorization level of a user.
type Role string

const (
	RoleUser       Role = "user"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ValidRoles is the set of all valid user roles.
var ValidRoles = map[Role]bool{
	RoleUser:       true,
	RoleManager:    true,
	RoleAdmin:      true,
	RoleSuperAdmin: true,
}

// User is the acting user for a single command.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the user holds an admin-level role.
func (u *User) IsAdmin() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleSuperAdmin)
}

// IsManager reports whether the user holds a manager-level role or above.
func (u *User) IsManager() bool {
	return u != nil && (u.Role == RoleManager || u.IsAdmin())
}
