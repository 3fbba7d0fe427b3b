// service/admin_directory.go
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/grantflow/dao"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

// RoleCache is the optional read-through cache in front of the AdminStore.
type RoleCache interface {
	Get(ctx context.Context, email string) (*model.AdminRole, bool, error)
	Set(ctx context.Context, role *model.AdminRole) error
	Delete(ctx context.Context, email string) error
}

// AdminDirectory answers "who may act on what". Every lookup failure resolves
// to no role, never to an implicit allow.
type AdminDirectory struct {
	store dao.AdminStore
	cache RoleCache
}

// NewAdminDirectory builds a directory over store. cache may be nil.
func NewAdminDirectory(store dao.AdminStore, cache RoleCache) *AdminDirectory {
	return &AdminDirectory{store: store, cache: cache}
}

// ResolveRole returns the caller's role, or nil when they hold none.
func (d *AdminDirectory) ResolveRole(ctx context.Context, email string) *model.AdminRole {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	if d.cache != nil {
		role, hit, err := d.cache.Get(ctx, email)
		if err != nil {
			logger.Warn("Admin role cache lookup failed, using store", zap.Error(err), zap.String("email", email))
		} else if hit {
			return effectiveRole(role)
		}
	}

	role, err := d.store.GetAdminRole(ctx, email)
	if err != nil {
		if errors.Is(err, grant_errors.ErrAdminRoleNotFound) {
			// Definitive miss: remember it so non-admins don't hit the store each time.
			d.remember(ctx, &model.AdminRole{Email: email, Role: model.RoleNone})
			return nil
		}
		logger.Error("Admin role lookup failed, denying", zap.Error(err), zap.String("email", email))
		return nil
	}
	d.remember(ctx, role)
	return effectiveRole(role)
}

// CanAct applies the project scope rule to a request.
func (d *AdminDirectory) CanAct(ctx context.Context, email string, req *model.AccessRequest) bool {
	if req == nil {
		return false
	}
	return d.CanActOnProject(ctx, email, req.GCPProjectID)
}

func (d *AdminDirectory) CanActOnProject(ctx context.Context, email, projectID string) bool {
	return d.ResolveRole(ctx, email).CoversProject(projectID)
}

// IsSuperAdmin gates admin management.
func (d *AdminDirectory) IsSuperAdmin(ctx context.Context, email string) bool {
	role := d.ResolveRole(ctx, email)
	return role != nil && role.Role == model.RoleSuperAdmin
}

// Invalidate drops a cached entry after the role changed.
func (d *AdminDirectory) Invalidate(ctx context.Context, email string) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Delete(ctx, model.NormalizeEmail(email)); err != nil {
		logger.Warn("Failed to invalidate admin role cache", zap.Error(err), zap.String("email", email))
	}
}

func (d *AdminDirectory) remember(ctx context.Context, role *model.AdminRole) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Set(ctx, role); err != nil {
		logger.Warn("Failed to cache admin role", zap.Error(err), zap.String("email", role.Email))
	}
}

func effectiveRole(role *model.AdminRole) *model.AdminRole {
	if role == nil || role.Role == model.RoleNone || !role.Role.IsKnown() {
		return nil
	}
	return role
}
