// dao/admin_dao.go
package dao

import (
	"context"
	"errors"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
	grant_neo4j "github.com/dev-mohitbeniwal/grantflow/model/neo4j"
)

type AdminDAO struct {
	Driver neo4j.DriverWithContext
}

var _ AdminStore = &AdminDAO{}

func NewAdminDAO(driver neo4j.DriverWithContext) *AdminDAO {
	return &AdminDAO{Driver: driver}
}

func (dao *AdminDAO) EnsureUniqueConstraint(ctx context.Context) error {
	return ensureConstraint(ctx, dao.Driver, "unique_admin_role_email", `
        CREATE CONSTRAINT unique_admin_role_email IF NOT EXISTS
        FOR (a:`+grant_neo4j.LabelAdminRole+`) REQUIRE a.email IS UNIQUE
        `)
}

func (dao *AdminDAO) GetAdminRole(ctx context.Context, email string) (*model.AdminRole, error) {
	result, err := executeRead(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (a:` + grant_neo4j.LabelAdminRole + ` {email: $email})
        RETURN a
        `
		res, err := tx.Run(ctx, query, map[string]any{"email": email})
		if err != nil {
			return nil, err
		}
		nodes, err := collectNodes(ctx, res, "a")
		if err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			return nil, grant_errors.ErrAdminRoleNotFound
		}
		return mapNodeToAdminRole(nodes[0])
	})
	if err != nil {
		if errors.Is(err, grant_errors.ErrAdminRoleNotFound) {
			return nil, err
		}
		logger.Error("Failed to retrieve admin role", zap.Error(err), zap.String("email", email))
		return nil, grant_errors.Database("get admin role", err)
	}
	return result.(*model.AdminRole), nil
}

// UpsertAdminRole replaces role and projects but keeps the original createdAt.
func (dao *AdminDAO) UpsertAdminRole(ctx context.Context, role *model.AdminRole) (*model.AdminRole, error) {
	start := time.Now()
	logger.Info("Upserting admin role", zap.String("email", role.Email), zap.String("role", string(role.Role)))

	result, err := executeWrite(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MERGE (a:` + grant_neo4j.LabelAdminRole + ` {email: $email})
        ON CREATE SET a.createdAt = $createdAt, a.createdBy = $createdBy
        SET a.role = $role, a.assignedProjects = $projects
        RETURN a
        `
		res, err := tx.Run(ctx, query, map[string]any{
			"email":     role.Email,
			"createdAt": role.CreatedAt.UTC(),
			"createdBy": role.CreatedBy,
			"role":      string(role.Role),
			"projects":  nonNilStrings(role.AssignedProjects),
		})
		if err != nil {
			return nil, err
		}
		nodes, err := collectNodes(ctx, res, "a")
		if err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			return nil, errors.New("merge returned no admin role")
		}
		return mapNodeToAdminRole(nodes[0])
	})
	if err != nil {
		logger.Error("Failed to upsert admin role", zap.Error(err), zap.String("email", role.Email))
		return nil, grant_errors.Database("upsert admin role", err)
	}
	logger.Info("Admin role upserted", zap.String("email", role.Email), zap.Duration("duration", time.Since(start)))
	return result.(*model.AdminRole), nil
}

func (dao *AdminDAO) DeleteAdminRole(ctx context.Context, email string) error {
	_, err := executeWrite(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (a:` + grant_neo4j.LabelAdminRole + ` {email: $email})
        WITH a, a.email AS email
        DELETE a
        RETURN count(email) AS deleted
        `
		deleted, err := singleCount(ctx, tx, query, map[string]any{"email": email}, "deleted")
		if err != nil {
			return nil, err
		}
		if deleted == 0 {
			return nil, grant_errors.ErrAdminRoleNotFound
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, grant_errors.ErrAdminRoleNotFound) {
			return err
		}
		logger.Error("Failed to delete admin role", zap.Error(err), zap.String("email", email))
		return grant_errors.Database("delete admin role", err)
	}
	logger.Info("Admin role deleted", zap.String("email", email))
	return nil
}

func (dao *AdminDAO) ListAdminRoles(ctx context.Context) ([]*model.AdminRole, error) {
	result, err := executeRead(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (a:` + grant_neo4j.LabelAdminRole + `)
        RETURN a
        ORDER BY a.email
        `
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		nodes, err := collectNodes(ctx, res, "a")
		if err != nil {
			return nil, err
		}
		roles := make([]*model.AdminRole, 0, len(nodes))
		for _, node := range nodes {
			role, err := mapNodeToAdminRole(node)
			if err != nil {
				return nil, err
			}
			roles = append(roles, role)
		}
		return roles, nil
	})
	if err != nil {
		logger.Error("Failed to list admin roles", zap.Error(err))
		return nil, grant_errors.Database("list admin roles", err)
	}
	return result.([]*model.AdminRole), nil
}

func mapNodeToAdminRole(node neo4j.Node) (*model.AdminRole, error) {
	props := node.Props
	email, err := requireString(props, grant_neo4j.AttrEmail)
	if err != nil {
		return nil, err
	}
	return &model.AdminRole{
		Email:            email,
		Role:             model.AdminRoleType(propString(props, grant_neo4j.AttrRole)),
		AssignedProjects: propStrings(props, grant_neo4j.AttrAssignedProjects),
		CreatedBy:        propString(props, grant_neo4j.AttrCreatedBy),
		CreatedAt:        propTime(props, grant_neo4j.AttrCreatedAt),
	}, nil
}
