// Package authz holds the static role to permission table and the checks
// built on it.
package authz

import (
	"fmt"
)

// Role is a member's standing within one company
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleWorker     Role = "worker"
	RoleAccountant Role = "accountant"
	RoleClient     Role = "client"
)

var allRoles = []Role{RoleOwner, RoleAdmin, RoleManager, RoleWorker, RoleAccountant, RoleClient}

// Roles returns every role in declaration order
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// ParseRole converts user input into a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
