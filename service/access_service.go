// service/access_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/grantflow/dao"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
	"github.com/dev-mohitbeniwal/grantflow/util"
)

type IAccessService interface {
	SubmitRequest(ctx context.Context, in model.SubmitRequestInput) (*model.AccessRequest, error)
	GetRequest(ctx context.Context, requestID string) (*model.AccessRequest, error)
	ListRequests(ctx context.Context, filter model.RequestFilter) ([]*model.AccessRequest, error)
	ApproveRequest(ctx context.Context, requestID, approverEmail string) (*model.AccessRequest, error)
	RejectRequest(ctx context.Context, requestID, approverEmail, reason string) (*model.AccessRequest, error)
	BulkApprove(ctx context.Context, requestIDs []string, approverEmail string) (*model.BulkResult, error)
	BulkReject(ctx context.Context, requestIDs []string, approverEmail, reason string) (*model.BulkResult, error)
	RevokeGrant(ctx context.Context, grantID, actorEmail string) (*model.GrantedAccess, error)
	GetGrant(ctx context.Context, grantID string) (*model.GrantedAccess, error)
	ListGrants(ctx context.Context, filter model.GrantFilter) ([]*model.GrantedAccess, error)
}

// AccessService is the caller-facing surface of the lifecycle engine.
type AccessService struct {
	requests       dao.RequestStore
	grants         dao.GrantStore
	engine         *ConsensusEngine
	bulk           *BulkActionCoordinator
	admins         IAdminService
	validationUtil *util.ValidationUtil
	eventBus       *util.EventBus
	now            func() time.Time
}

var _ IAccessService = &AccessService{}

func NewAccessService(
	requests dao.RequestStore,
	grants dao.GrantStore,
	engine *ConsensusEngine,
	bulk *BulkActionCoordinator,
	admins IAdminService,
	validationUtil *util.ValidationUtil,
	eventBus *util.EventBus,
) *AccessService {
	return &AccessService{
		requests:       requests,
		grants:         grants,
		engine:         engine,
		bulk:           bulk,
		admins:         admins,
		validationUtil: validationUtil,
		eventBus:       eventBus,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *AccessService) SubmitRequest(ctx context.Context, in model.SubmitRequestInput) (*model.AccessRequest, error) {
	in.RequesterEmail = model.NormalizeEmail(in.RequesterEmail)
	if err := s.validationUtil.ValidateSubmission(in); err != nil {
		logger.Warn("Invalid access request submission", zap.Error(err))
		return nil, err
	}

	now := s.now()
	req := &model.AccessRequest{
		ID:             in.ID,
		RequesterEmail: in.RequesterEmail,
		AssetName:      in.AssetName,
		GCPProjectID:   in.GCPProjectID,
		RequestedRole:  in.RequestedRole,
		Justification:  in.Justification,
		Status:         model.StatusPending,
		Approvals:      []string{},
		SubmittedAt:    now,
		UpdatedAt:      now,
		Version:        1,
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	if err := s.requests.CreateRequest(ctx, req); err != nil {
		logger.Error("Failed to submit access request", zap.Error(err), zap.String("requestID", req.ID))
		return nil, err
	}

	logger.Info("Access request submitted",
		zap.String("requestID", req.ID),
		zap.String("requester", req.RequesterEmail),
		zap.String("projectID", req.GCPProjectID),
		zap.String("role", req.RequestedRole))

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, EventRequestSubmitted, RequestSubmitted{
			Request:    req.Clone(),
			Recipients: s.newRequestRecipients(ctx, req, in.ApproverList),
		})
	}
	return req, nil
}

// newRequestRecipients uses the caller's list, else every admin covering the project.
func (s *AccessService) newRequestRecipients(ctx context.Context, req *model.AccessRequest, approverList []string) []string {
	candidates := approverList
	if len(candidates) == 0 && s.admins != nil {
		admins, err := s.admins.AdminsForProject(ctx, req.GCPProjectID)
		if err != nil {
			logger.Warn("Failed to resolve approvers for notification", zap.Error(err), zap.String("projectID", req.GCPProjectID))
		}
		for _, a := range admins {
			candidates = append(candidates, a.Email)
		}
	}

	seen := map[string]bool{req.RequesterEmail: true}
	recipients := make([]string, 0, len(candidates))
	for _, c := range candidates {
		email := model.NormalizeEmail(c)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		recipients = append(recipients, email)
	}
	return recipients
}

func (s *AccessService) GetRequest(ctx context.Context, requestID string) (*model.AccessRequest, error) {
	return s.requests.GetRequest(ctx, requestID)
}

func (s *AccessService) ListRequests(ctx context.Context, filter model.RequestFilter) ([]*model.AccessRequest, error) {
	if filter.Status != "" && !filter.Status.IsKnown() {
		return nil, grant_errors.Validation(grant_errors.ErrInvalidRequestData, "unknown status "+string(filter.Status))
	}
	filter.RequesterEmail = model.NormalizeEmail(filter.RequesterEmail)
	filter.Limit, filter.Offset = model.ClampPage(filter.Limit, filter.Offset)
	return s.requests.ListRequests(ctx, filter)
}

func (s *AccessService) ApproveRequest(ctx context.Context, requestID, approverEmail string) (*model.AccessRequest, error) {
	return s.engine.Approve(ctx, requestID, approverEmail)
}

func (s *AccessService) RejectRequest(ctx context.Context, requestID, approverEmail, reason string) (*model.AccessRequest, error) {
	return s.engine.Reject(ctx, requestID, approverEmail, reason)
}

func (s *AccessService) BulkApprove(ctx context.Context, requestIDs []string, approverEmail string) (*model.BulkResult, error) {
	if err := s.validateBulk(requestIDs, approverEmail); err != nil {
		return nil, err
	}
	return s.bulk.BulkApprove(ctx, requestIDs, approverEmail), nil
}

func (s *AccessService) BulkReject(ctx context.Context, requestIDs []string, approverEmail, reason string) (*model.BulkResult, error) {
	if err := s.validateBulk(requestIDs, approverEmail); err != nil {
		return nil, err
	}
	return s.bulk.BulkReject(ctx, requestIDs, approverEmail, reason), nil
}

func (s *AccessService) validateBulk(requestIDs []string, approverEmail string) error {
	if model.NormalizeEmail(approverEmail) == "" {
		return grant_errors.ErrMissingIdentity
	}
	return s.validationUtil.Struct(grant_errors.ErrInvalidRequestData, model.BulkRequestInput{RequestIDs: requestIDs})
}

func (s *AccessService) RevokeGrant(ctx context.Context, grantID, actorEmail string) (*model.GrantedAccess, error) {
	return s.engine.Revoke(ctx, grantID, actorEmail)
}

func (s *AccessService) GetGrant(ctx context.Context, grantID string) (*model.GrantedAccess, error) {
	return s.grants.GetGrant(ctx, grantID)
}

func (s *AccessService) ListGrants(ctx context.Context, filter model.GrantFilter) ([]*model.GrantedAccess, error) {
	if filter.Status != "" && !filter.Status.IsKnown() {
		return nil, grant_errors.Validation(grant_errors.ErrInvalidRequestData, "unknown grant status "+string(filter.Status))
	}
	filter.UserEmail = model.NormalizeEmail(filter.UserEmail)
	filter.Limit, filter.Offset = model.ClampPage(filter.Limit, filter.Offset)
	return s.grants.ListGrants(ctx, filter)
}
