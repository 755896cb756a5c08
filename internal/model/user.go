// internal/model/user.go
package model

type UserRole string

const (
	RoleCSOAdmin   UserRole = "cso_admin"
	RoleFieldAgent UserRole = "field_agent"
	RoleSupervisor UserRole = "supervisor"
	RoleUser       UserRole = "user"
)

// User is a directory user of an organization.
type User struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Role           UserRole `json:"role"`
	OrganizationID int64    `json:"organization_id"`
}

// Publishable reports whether surveys can be published to the user.
func (u User) Publishable() bool {
	return u.Role == RoleFieldAgent || u.Role == RoleSupervisor
}
