package services

import "github.com/google/uuid"

// Role names carried in JWT claims.
const (
	RoleSuperAdmin   = "super_admin"
	RoleQualityAdmin = "quality_admin"
	RoleCoordinator  = "coordinator"
)

// RoleClaim is one role grant, optionally scoped to a department.
type RoleClaim struct {
	Role         string     `json:"role"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

// Capabilities answers the two questions the workflow gate asks. It is
// deliberately not tied to the token format; middleware builds it from
// claims and tests build it literally.
type Capabilities struct {
	UserID uuid.UUID
	Claims []RoleClaim
}

// QualityAdmin reports whether the caller may verify or reject submitted
// items. Super admins hold every quality-admin power.
func (c Capabilities) QualityAdmin() bool {
	for _, cl := range c.Claims {
		if cl.Role == RoleQualityAdmin || cl.Role == RoleSuperAdmin {
			return true
		}
	}
	return false
}

// CoordinatorFor reports whether the caller may drive the working-side
// transitions for items in the given department. A coordinator claim with no
// department scopes to all departments, matching how super admins behave.
func (c Capabilities) CoordinatorFor(departmentID uuid.UUID) bool {
	for _, cl := range c.Claims {
		switch cl.Role {
		case RoleSuperAdmin:
			return true
		case RoleCoordinator:
			if cl.DepartmentID == nil || *cl.DepartmentID == departmentID {
				return true
			}
		}
	}
	return false
}
