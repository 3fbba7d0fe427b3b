// model/admin_role.go
package model

import "time"

type AdminRole struct {
	Email string        `json:"email"`
	Role  AdminRoleType `json:"role"`
	// AssignedProjects is ignored for super-admins, who cover every project.
	AssignedProjects []string  `json:"assignedProjects"`
	CreatedBy        string    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
}

// CoversProject implements the project scope rule for a resolved role.
func (a *AdminRole) CoversProject(projectID string) bool {
	if a == nil {
		return false
	}
	switch a.Role {
	case RoleSuperAdmin:
		return true
	case RoleProjectAdmin:
		for _, p := range a.AssignedProjects {
			if p == projectID {
				return true
			}
		}
	}
	return false
}

type AssignAdminInput struct {
	Role             AdminRoleType `json:"role" validate:"required,oneof=project-admin super-admin"`
	AssignedProjects []string      `json:"assignedProjects" validate:"dive,required"`
}
