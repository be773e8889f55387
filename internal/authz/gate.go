package authz

import (
	"fmt"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
)

// PermissionError is returned when a role lacks a capability
type PermissionError struct {
	Role       Role
	Permission Permission
	Reason     string
}

func (e *PermissionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("permission denied: %s", e.Reason)
	}
	return fmt.Sprintf("permission denied: role %s lacks %s", e.Role, e.Permission)
}

func (e *PermissionError) Unwrap() error {
	return apperr.ErrPermissionDenied
}

// Check reports whether role holds permission. Unknown roles hold nothing.
func Check(role Role, permission Permission) bool {
	_, ok := rolePermissions[role][permission]
	return ok
}

// Require returns a *PermissionError when role lacks permission
func Require(role Role, permission Permission) error {
	if Check(role, permission) {
		return nil
	}
	return &PermissionError{Role: role, Permission: permission}
}

// CanChangeRole guards membership role changes. An empty from means the
// member is being added; an empty to means the member is being removed.
// Granting or revoking the owner role is reserved to owners.
func CanChangeRole(actor, from, to Role) error {
	if err := Require(actor, MemberWrite); err != nil {
		return err
	}
	if actor == RoleOwner {
		return nil
	}
	if from == RoleOwner {
		return &PermissionError{Role: actor, Permission: MemberWrite, Reason: "only an owner may change or remove an owner"}
	}
	if to == RoleOwner {
		return &PermissionError{Role: actor, Permission: MemberWrite, Reason: "only an owner may grant the owner role"}
	}
	return nil
}
