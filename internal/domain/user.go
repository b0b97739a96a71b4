package domain

import "time"

// User represents an organization member.
type User struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ID             string
	Email          string
	Name           string
	HashedPassword string
	Role           Role
	Active         bool
}

// Role represents a user's privilege level.
type Role string

const (
	// RoleAdmin is the privileged actor: records expenses, verifies
	// movements and self-verifies on creation.
	RoleAdmin Role = "admin"

	// RoleMember records income movements; entries start pending.
	RoleMember Role = "member"
)

var validRoles = map[Role]bool{
	RoleAdmin:  true,
	RoleMember: true,
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanVerify checks if the role may confirm pending movements.
func (r Role) CanVerify() bool {
	return r == RoleAdmin
}

// CanRecordExpense checks if the role may create expense movements.
func (r Role) CanRecordExpense() bool {
	return r == RoleAdmin
}

// CanManageUsers checks if the role may register and administer users.
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}
