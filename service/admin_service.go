// service/admin_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/grantflow/audit"
	"github.com/dev-mohitbeniwal/grantflow/dao"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
	"github.com/dev-mohitbeniwal/grantflow/util"
)

type IAdminService interface {
	AssignAdminRole(ctx context.Context, actorEmail, email string, in model.AssignAdminInput) (*model.AdminRole, error)
	RemoveAdminRole(ctx context.Context, actorEmail, email string) error
	ListAdmins(ctx context.Context) ([]*model.AdminRole, error)
	AdminsForProject(ctx context.Context, projectID string) ([]*model.AdminRole, error)
	BootstrapSuperAdmin(ctx context.Context, email, createdBy string) (*model.AdminRole, error)
}

type AdminService struct {
	store          dao.AdminStore
	directory      *AdminDirectory
	validationUtil *util.ValidationUtil
	auditService   audit.Service
	now            func() time.Time
}

var _ IAdminService = &AdminService{}

func NewAdminService(store dao.AdminStore, directory *AdminDirectory, validationUtil *util.ValidationUtil, auditService audit.Service) *AdminService {
	return &AdminService{
		store:          store,
		directory:      directory,
		validationUtil: validationUtil,
		auditService:   auditService,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *AdminService) AssignAdminRole(ctx context.Context, actorEmail, email string, in model.AssignAdminInput) (*model.AdminRole, error) {
	actor := model.NormalizeEmail(actorEmail)
	if !s.directory.IsSuperAdmin(ctx, actor) {
		return nil, grant_errors.ErrNotSuperAdmin
	}
	return s.upsert(ctx, actor, email, in)
}

// BootstrapSuperAdmin skips the actor check. Only the CLI calls it.
func (s *AdminService) BootstrapSuperAdmin(ctx context.Context, email, createdBy string) (*model.AdminRole, error) {
	return s.upsert(ctx, model.NormalizeEmail(createdBy), email, model.AssignAdminInput{Role: model.RoleSuperAdmin})
}

func (s *AdminService) upsert(ctx context.Context, actor, email string, in model.AssignAdminInput) (*model.AdminRole, error) {
	email = model.NormalizeEmail(email)
	if err := s.validationUtil.ValidateAdminAssignment(email, in); err != nil {
		return nil, err
	}

	projects := in.AssignedProjects
	if in.Role == model.RoleSuperAdmin {
		projects = []string{}
	}
	role, err := s.store.UpsertAdminRole(ctx, &model.AdminRole{
		Email:            email,
		Role:             in.Role,
		AssignedProjects: projects,
		CreatedBy:        actor,
		CreatedAt:        s.now(),
	})
	if err != nil {
		logger.Error("Failed to assign admin role", zap.Error(err), zap.String("email", email))
		return nil, err
	}
	s.directory.Invalidate(ctx, email)

	logger.Info("Admin role assigned",
		zap.String("email", email),
		zap.String("role", string(role.Role)),
		zap.Strings("projects", role.AssignedProjects),
		zap.String("actor", actor))
	s.audit(ctx, audit.AuditLog{Actor: actor, Action: audit.ActionAdminAssigned, ToStatus: string(role.Role), Success: true})
	return role, nil
}

func (s *AdminService) RemoveAdminRole(ctx context.Context, actorEmail, email string) error {
	actor := model.NormalizeEmail(actorEmail)
	if !s.directory.IsSuperAdmin(ctx, actor) {
		return grant_errors.ErrNotSuperAdmin
	}
	email = model.NormalizeEmail(email)
	if err := s.store.DeleteAdminRole(ctx, email); err != nil {
		return err
	}
	s.directory.Invalidate(ctx, email)

	logger.Info("Admin role removed", zap.String("email", email), zap.String("actor", actor))
	s.audit(ctx, audit.AuditLog{Actor: actor, Action: audit.ActionAdminRemoved, FromStatus: email, Success: true})
	return nil
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]*model.AdminRole, error) {
	return s.store.ListAdminRoles(ctx)
}

// AdminsForProject returns project-admins assigned to projectID plus every super-admin.
func (s *AdminService) AdminsForProject(ctx context.Context, projectID string) ([]*model.AdminRole, error) {
	roles, err := s.store.ListAdminRoles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.AdminRole, 0, len(roles))
	for _, r := range roles {
		if r.CoversProject(projectID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *AdminService) audit(ctx context.Context, entry audit.AuditLog) {
	if s.auditService == nil {
		return
	}
	if err := s.auditService.LogAction(ctx, entry); err != nil {
		logger.Warn("Failed to write audit record", zap.Error(err), zap.String("action", entry.Action))
	}
}
