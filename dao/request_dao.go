// dao/request_dao.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
	grant_neo4j "github.com/dev-mohitbeniwal/grantflow/model/neo4j"
)

type RequestDAO struct {
	Driver neo4j.DriverWithContext
}

var _ RequestStore = &RequestDAO{}

func NewRequestDAO(driver neo4j.DriverWithContext) *RequestDAO {
	return &RequestDAO{Driver: driver}
}

func (dao *RequestDAO) EnsureUniqueConstraint(ctx context.Context) error {
	return ensureConstraint(ctx, dao.Driver, "unique_access_request_id", `
        CREATE CONSTRAINT unique_access_request_id IF NOT EXISTS
        FOR (r:`+grant_neo4j.LabelAccessRequest+`) REQUIRE r.id IS UNIQUE
        `)
}

func (dao *RequestDAO) CreateRequest(ctx context.Context, req *model.AccessRequest) error {
	start := time.Now()
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	logger.Info("Creating access request", zap.String("requestID", req.ID), zap.String("requester", req.RequesterEmail))

	_, err := executeWrite(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        CREATE (r:` + grant_neo4j.LabelAccessRequest + `)
        SET r = $props
        RETURN r.id AS id
        `
		result, err := tx.Run(ctx, query, map[string]any{"props": requestProps(req)})
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})

	duration := time.Since(start)
	if err != nil {
		if isConstraintViolation(err) {
			logger.Warn("Access request id already exists", zap.String("requestID", req.ID))
			return grant_errors.ErrRequestExists
		}
		logger.Error("Failed to create access request",
			zap.Error(err),
			zap.String("requestID", req.ID),
			zap.Duration("duration", duration))
		return grant_errors.Database("create access request", err)
	}

	logger.Info("Access request created successfully",
		zap.String("requestID", req.ID),
		zap.Duration("duration", duration))
	return nil
}

func (dao *RequestDAO) GetRequest(ctx context.Context, requestID string) (*model.AccessRequest, error) {
	start := time.Now()
	logger.Debug("Retrieving access request", zap.String("requestID", requestID))

	result, err := executeRead(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		return fetchRequest(ctx, tx, requestID)
	})
	if err != nil {
		if errors.Is(err, grant_errors.ErrRequestNotFound) {
			return nil, err
		}
		logger.Error("Failed to retrieve access request",
			zap.Error(err),
			zap.String("requestID", requestID),
			zap.Duration("duration", time.Since(start)))
		return nil, grant_errors.Database("get access request", err)
	}

	logger.Debug("Access request retrieved successfully",
		zap.String("requestID", requestID),
		zap.Duration("duration", time.Since(start)))
	return result.(*model.AccessRequest), nil
}

// UpdateRequest writes req only if the stored version equals expectedVersion.
func (dao *RequestDAO) UpdateRequest(ctx context.Context, req *model.AccessRequest, expectedVersion int64) (*model.AccessRequest, error) {
	start := time.Now()
	logger.Info("Updating access request",
		zap.String("requestID", req.ID),
		zap.String("status", string(req.Status)),
		zap.Int64("expectedVersion", expectedVersion))

	result, err := executeWrite(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		props := requestProps(req)
		delete(props, grant_neo4j.AttrID)
		delete(props, grant_neo4j.AttrVersion)

		query := `
        MATCH (r:` + grant_neo4j.LabelAccessRequest + ` {id: $id})
        WHERE r.version = $expectedVersion
        SET r += $props, r.version = r.version + 1
        RETURN r
        `
		res, err := tx.Run(ctx, query, map[string]any{
			"id":              req.ID,
			"expectedVersion": expectedVersion,
			"props":           props,
		})
		if err != nil {
			return nil, err
		}
		nodes, err := collectNodes(ctx, res, "r")
		if err != nil {
			return nil, err
		}
		if len(nodes) == 1 {
			return mapNodeToRequest(nodes[0])
		}

		// Nothing matched: either the record is gone or someone else won the race.
		if _, err := fetchRequest(ctx, tx, req.ID); err != nil {
			return nil, err
		}
		return nil, grant_errors.ErrStaleWrite
	})

	duration := time.Since(start)
	if err != nil {
		if errors.Is(err, grant_errors.ErrStaleWrite) || errors.Is(err, grant_errors.ErrRequestNotFound) {
			logger.Warn("Access request update precondition failed",
				zap.Error(err),
				zap.String("requestID", req.ID),
				zap.Int64("expectedVersion", expectedVersion),
				zap.Duration("duration", duration))
			return nil, err
		}
		logger.Error("Failed to update access request",
			zap.Error(err),
			zap.String("requestID", req.ID),
			zap.Duration("duration", duration))
		return nil, grant_errors.Database("update access request", err)
	}

	updated := result.(*model.AccessRequest)
	logger.Info("Access request updated successfully",
		zap.String("requestID", updated.ID),
		zap.Int64("version", updated.Version),
		zap.Duration("duration", duration))
	return updated, nil
}

func (dao *RequestDAO) ListRequests(ctx context.Context, filter model.RequestFilter) ([]*model.AccessRequest, error) {
	start := time.Now()
	limit, offset := model.ClampPage(filter.Limit, filter.Offset)
	logger.Debug("Listing access requests",
		zap.String("status", string(filter.Status)),
		zap.String("projectID", filter.ProjectID),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	result, err := executeRead(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (r:` + grant_neo4j.LabelAccessRequest + `)
        WHERE ($status = '' OR r.status = $status)
          AND ($projectId = '' OR r.gcpProjectId = $projectId)
          AND ($requesterEmail = '' OR r.requesterEmail = $requesterEmail)
        RETURN r
        ORDER BY r.submittedAt DESC
        SKIP $offset
        LIMIT $limit
        `
		res, err := tx.Run(ctx, query, map[string]any{
			"status":         string(filter.Status),
			"projectId":      filter.ProjectID,
			"requesterEmail": filter.RequesterEmail,
			"offset":         offset,
			"limit":          limit,
		})
		if err != nil {
			return nil, err
		}
		nodes, err := collectNodes(ctx, res, "r")
		if err != nil {
			return nil, err
		}
		requests := make([]*model.AccessRequest, 0, len(nodes))
		for _, node := range nodes {
			req, err := mapNodeToRequest(node)
			if err != nil {
				return nil, err
			}
			requests = append(requests, req)
		}
		return requests, nil
	})
	if err != nil {
		logger.Error("Failed to list access requests", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, grant_errors.Database("list access requests", err)
	}

	requests := result.([]*model.AccessRequest)
	logger.Debug("Access requests listed successfully",
		zap.Int("count", len(requests)),
		zap.Duration("duration", time.Since(start)))
	return requests, nil
}

func fetchRequest(ctx context.Context, tx neo4j.ManagedTransaction, requestID string) (*model.AccessRequest, error) {
	query := `
    MATCH (r:` + grant_neo4j.LabelAccessRequest + ` {id: $id})
    RETURN r
    `
	res, err := tx.Run(ctx, query, map[string]any{"id": requestID})
	if err != nil {
		return nil, err
	}
	nodes, err := collectNodes(ctx, res, "r")
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, grant_errors.ErrRequestNotFound
	}
	return mapNodeToRequest(nodes[0])
}

func requestProps(req *model.AccessRequest) map[string]any {
	return map[string]any{
		grant_neo4j.AttrID:             req.ID,
		grant_neo4j.AttrRequesterEmail: req.RequesterEmail,
		grant_neo4j.AttrAssetName:      req.AssetName,
		grant_neo4j.AttrProjectID:      req.GCPProjectID,
		grant_neo4j.AttrRequestedRole:  req.RequestedRole,
		grant_neo4j.AttrJustification:  req.Justification,
		grant_neo4j.AttrStatus:         string(req.Status),
		grant_neo4j.AttrApprovals:      nonNilStrings(req.Approvals),
		grant_neo4j.AttrAdminNote:      req.AdminNote,
		grant_neo4j.AttrReviewedBy:     req.ReviewedBy,
		grant_neo4j.AttrReviewedAt:     nullableTime(req.ReviewedAt),
		grant_neo4j.AttrGrantID:        req.GrantID,
		grant_neo4j.AttrSubmittedAt:    req.SubmittedAt.UTC(),
		grant_neo4j.AttrUpdatedAt:      req.UpdatedAt.UTC(),
		grant_neo4j.AttrVersion:        req.Version,
	}
}

// Helper function to map Neo4j Node to AccessRequest struct
func mapNodeToRequest(node neo4j.Node) (*model.AccessRequest, error) {
	props := node.Props
	req := &model.AccessRequest{}

	var err error
	if req.ID, err = requireString(props, grant_neo4j.AttrID); err != nil {
		return nil, err
	}
	if req.RequesterEmail, err = requireString(props, grant_neo4j.AttrRequesterEmail); err != nil {
		return nil, err
	}
	status, err := requireString(props, grant_neo4j.AttrStatus)
	if err != nil {
		return nil, err
	}
	req.Status = model.RequestStatus(status)
	if !req.Status.IsKnown() {
		logger.Warn("Access request has unrecognised status", zap.String("requestID", req.ID), zap.String("status", status))
	}

	req.AssetName = propString(props, grant_neo4j.AttrAssetName)
	req.GCPProjectID = propString(props, grant_neo4j.AttrProjectID)
	req.RequestedRole = propString(props, grant_neo4j.AttrRequestedRole)
	req.Justification = propString(props, grant_neo4j.AttrJustification)
	req.Approvals = propStrings(props, grant_neo4j.AttrApprovals)
	req.AdminNote = propString(props, grant_neo4j.AttrAdminNote)
	req.ReviewedBy = propString(props, grant_neo4j.AttrReviewedBy)
	req.ReviewedAt = propTimePtr(props, grant_neo4j.AttrReviewedAt)
	req.GrantID = propString(props, grant_neo4j.AttrGrantID)
	req.SubmittedAt = propTime(props, grant_neo4j.AttrSubmittedAt)
	req.UpdatedAt = propTime(props, grant_neo4j.AttrUpdatedAt)
	req.Version = propInt64(props, grant_neo4j.AttrVersion)

	if req.AssetName == "" || req.GCPProjectID == "" {
		return nil, fmt.Errorf("access request %s is missing asset or project", req.ID)
	}
	return req, nil
}
