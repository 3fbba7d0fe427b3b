// dao/grant_dao.go
package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
	grant_neo4j "github.com/dev-mohitbeniwal/grantflow/model/neo4j"
)

type GrantDAO struct {
	Driver neo4j.DriverWithContext
}

var _ GrantStore = &GrantDAO{}

func NewGrantDAO(driver neo4j.DriverWithContext) *GrantDAO {
	return &GrantDAO{Driver: driver}
}

func (dao *GrantDAO) EnsureUniqueConstraint(ctx context.Context) error {
	if err := ensureConstraint(ctx, dao.Driver, "unique_granted_access_id", `
        CREATE CONSTRAINT unique_granted_access_id IF NOT EXISTS
        FOR (g:`+grant_neo4j.LabelGrantedAccess+`) REQUIRE g.id IS UNIQUE
        `); err != nil {
		return err
	}
	return ensureConstraint(ctx, dao.Driver, "unique_granted_access_active_key", `
        CREATE CONSTRAINT unique_granted_access_active_key IF NOT EXISTS
        FOR (g:`+grant_neo4j.LabelGrantedAccess+`) REQUIRE g.activeKey IS UNIQUE
        `)
}

// CreateGrant merges on the active tuple key, so a second issuance for the
// same (user, asset, role) returns the existing ACTIVE grant.
func (dao *GrantDAO) CreateGrant(ctx context.Context, in model.GrantRequest) (*model.GrantedAccess, bool, error) {
	start := time.Now()
	proposedID := uuid.New().String()
	activeKey := model.GrantKey(in.UserEmail, in.AssetName, in.Role)
	logger.Info("Issuing grant",
		zap.String("user", in.UserEmail),
		zap.String("asset", in.AssetName),
		zap.String("role", in.Role),
		zap.String("requestID", in.RequestID))

	props := map[string]any{
		grant_neo4j.AttrID:                proposedID,
		grant_neo4j.AttrUserEmail:         in.UserEmail,
		grant_neo4j.AttrAssetName:         in.AssetName,
		grant_neo4j.AttrProjectID:         in.ProjectID,
		grant_neo4j.AttrRole:              in.Role,
		grant_neo4j.AttrGrantedAt:         in.GrantedAt.UTC(),
		grant_neo4j.AttrGrantedBy:         in.GrantedBy,
		grant_neo4j.AttrOriginalRequestID: in.RequestID,
		grant_neo4j.AttrStatus:            string(model.GrantActive),
	}

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MERGE (g:` + grant_neo4j.LabelGrantedAccess + ` {activeKey: $activeKey})
        ON CREATE SET g += $props
        WITH g
        OPTIONAL MATCH (r:` + grant_neo4j.LabelAccessRequest + ` {id: $requestId})
        FOREACH (_ IN CASE WHEN r IS NOT NULL AND g.id = $proposedId THEN [1] ELSE [] END |
            MERGE (g)-[:` + grant_neo4j.RelIssuedFrom + `]->(r))
        RETURN g
        `
		res, err := tx.Run(ctx, query, map[string]any{
			"activeKey":  activeKey,
			"props":      props,
			"requestId":  in.RequestID,
			"proposedId": proposedID,
		})
		if err != nil {
			return nil, err
		}
		nodes, err := collectNodes(ctx, res, "g")
		if err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			return nil, errors.New("merge returned no grant")
		}
		return mapNodeToGrant(nodes[0])
	}

	result, err := executeWrite(ctx, dao.Driver, work)
	if err != nil && isConstraintViolation(err) {
		// A concurrent issuer created the tuple between our MERGE lock and commit.
		logger.Warn("Grant tuple claimed concurrently, reading winner", zap.String("activeKey", activeKey))
		existing, findErr := dao.FindActiveGrant(ctx, in.UserEmail, in.AssetName, in.Role)
		if findErr == nil {
			return existing, false, nil
		}
		err = findErr
	}
	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to issue grant",
			zap.Error(err),
			zap.String("activeKey", activeKey),
			zap.Duration("duration", duration))
		return nil, false, grant_errors.Database("create grant", err)
	}

	grant := result.(*model.GrantedAccess)
	created := grant.ID == proposedID
	logger.Info("Grant issued",
		zap.String("grantID", grant.ID),
		zap.Bool("created", created),
		zap.Duration("duration", duration))
	return grant, created, nil
}

func (dao *GrantDAO) GetGrant(ctx context.Context, grantID string) (*model.GrantedAccess, error) {
	start := time.Now()
	logger.Debug("Retrieving grant", zap.String("grantID", grantID))

	result, err := executeRead(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (g:` + grant_neo4j.LabelGrantedAccess + ` {id: $id})
        RETURN g
        `
		return singleGrant(ctx, tx, query, map[string]any{"id": grantID})
	})
	if err != nil {
		if errors.Is(err, grant_errors.ErrGrantNotFound) {
			return nil, err
		}
		logger.Error("Failed to retrieve grant", zap.Error(err), zap.String("grantID", grantID), zap.Duration("duration", time.Since(start)))
		return nil, grant_errors.Database("get grant", err)
	}
	return result.(*model.GrantedAccess), nil
}

func (dao *GrantDAO) FindActiveGrant(ctx context.Context, userEmail, assetName, role string) (*model.GrantedAccess, error) {
	result, err := executeRead(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (g:` + grant_neo4j.LabelGrantedAccess + ` {activeKey: $activeKey})
        RETURN g
        `
		return singleGrant(ctx, tx, query, map[string]any{"activeKey": model.GrantKey(userEmail, assetName, role)})
	})
	if err != nil {
		if errors.Is(err, grant_errors.ErrGrantNotFound) {
			return nil, err
		}
		logger.Error("Failed to look up active grant", zap.Error(err), zap.String("user", userEmail), zap.String("asset", assetName))
		return nil, grant_errors.Database("find active grant", err)
	}
	return result.(*model.GrantedAccess), nil
}

// RevokeGrant flips an ACTIVE grant to REVOKED and frees its tuple key.
func (dao *GrantDAO) RevokeGrant(ctx context.Context, grantID, revokedBy string, revokedAt time.Time) (*model.GrantedAccess, error) {
	start := time.Now()
	logger.Info("Revoking grant", zap.String("grantID", grantID), zap.String("revokedBy", revokedBy))

	result, err := executeWrite(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (g:` + grant_neo4j.LabelGrantedAccess + ` {id: $id})
        WHERE g.status = $active
        SET g.status = $revoked, g.revokedAt = $revokedAt, g.revokedBy = $revokedBy
        REMOVE g.activeKey
        RETURN g
        `
		grant, err := singleGrant(ctx, tx, query, map[string]any{
			"id":        grantID,
			"active":    string(model.GrantActive),
			"revoked":   string(model.GrantRevoked),
			"revokedAt": revokedAt.UTC(),
			"revokedBy": revokedBy,
		})
		if !errors.Is(err, grant_errors.ErrGrantNotFound) {
			return grant, err
		}
		// Distinguish a missing grant from one that is already revoked.
		existsQuery := `
        MATCH (g:` + grant_neo4j.LabelGrantedAccess + ` {id: $id})
        RETURN g
        `
		if _, err := singleGrant(ctx, tx, existsQuery, map[string]any{"id": grantID}); err != nil {
			return nil, err
		}
		return nil, grant_errors.ErrGrantNotActive
	})

	duration := time.Since(start)
	if err != nil {
		if errors.Is(err, grant_errors.ErrGrantNotFound) || errors.Is(err, grant_errors.ErrGrantNotActive) {
			logger.Warn("Grant revocation rejected", zap.Error(err), zap.String("grantID", grantID))
			return nil, err
		}
		logger.Error("Failed to revoke grant", zap.Error(err), zap.String("grantID", grantID), zap.Duration("duration", duration))
		return nil, grant_errors.Database("revoke grant", err)
	}

	logger.Info("Grant revoked successfully", zap.String("grantID", grantID), zap.Duration("duration", duration))
	return result.(*model.GrantedAccess), nil
}

func (dao *GrantDAO) ListGrants(ctx context.Context, filter model.GrantFilter) ([]*model.GrantedAccess, error) {
	start := time.Now()
	limit, offset := model.ClampPage(filter.Limit, filter.Offset)

	result, err := executeRead(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (g:` + grant_neo4j.LabelGrantedAccess + `)
        WHERE ($status = '' OR g.status = $status)
          AND ($projectId = '' OR g.gcpProjectId = $projectId)
          AND ($userEmail = '' OR g.userEmail = $userEmail)
        RETURN g
        ORDER BY g.grantedAt DESC
        SKIP $offset
        LIMIT $limit
        `
		res, err := tx.Run(ctx, query, map[string]any{
			"status":    string(filter.Status),
			"projectId": filter.ProjectID,
			"userEmail": filter.UserEmail,
			"offset":    offset,
			"limit":     limit,
		})
		if err != nil {
			return nil, err
		}
		nodes, err := collectNodes(ctx, res, "g")
		if err != nil {
			return nil, err
		}
		grants := make([]*model.GrantedAccess, 0, len(nodes))
		for _, node := range nodes {
			g, err := mapNodeToGrant(node)
			if err != nil {
				return nil, err
			}
			grants = append(grants, g)
		}
		return grants, nil
	})
	if err != nil {
		logger.Error("Failed to list grants", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, grant_errors.Database("list grants", err)
	}
	grants := result.([]*model.GrantedAccess)
	logger.Debug("Grants listed successfully", zap.Int("count", len(grants)), zap.Duration("duration", time.Since(start)))
	return grants, nil
}

func singleGrant(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) (*model.GrantedAccess, error) {
	res, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	nodes, err := collectNodes(ctx, res, "g")
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, grant_errors.ErrGrantNotFound
	}
	return mapNodeToGrant(nodes[0])
}

func mapNodeToGrant(node neo4j.Node) (*model.GrantedAccess, error) {
	props := node.Props
	id, err := requireString(props, grant_neo4j.AttrID)
	if err != nil {
		return nil, err
	}
	userEmail, err := requireString(props, grant_neo4j.AttrUserEmail)
	if err != nil {
		return nil, err
	}
	return &model.GrantedAccess{
		ID:                id,
		UserEmail:         userEmail,
		AssetName:         propString(props, grant_neo4j.AttrAssetName),
		GCPProjectID:      propString(props, grant_neo4j.AttrProjectID),
		Role:              propString(props, grant_neo4j.AttrRole),
		GrantedAt:         propTime(props, grant_neo4j.AttrGrantedAt),
		GrantedBy:         propString(props, grant_neo4j.AttrGrantedBy),
		OriginalRequestID: propString(props, grant_neo4j.AttrOriginalRequestID),
		Status:            model.GrantStatus(propString(props, grant_neo4j.AttrStatus)),
		RevokedAt:         propTimePtr(props, grant_neo4j.AttrRevokedAt),
		RevokedBy:         propString(props, grant_neo4j.AttrRevokedBy),
	}, nil
}
