// service/consensus_engine.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/grantflow/dao"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
	"github.com/dev-mohitbeniwal/grantflow/util"
)

type EngineConfig struct {
	RequiredApprovals int
	MaxWriteRetries   int
	GrantIssueRetries int
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.RequiredApprovals < 1 {
		c.RequiredApprovals = 2
	}
	if c.MaxWriteRetries < 1 {
		c.MaxWriteRetries = 5
	}
	if c.GrantIssueRetries < 1 {
		c.GrantIssueRetries = 3
	}
	return c
}

// ConsensusEngine owns every mutation of requests and grants. Each request
// read-modify-write runs under a per-request lock and is persisted with a
// version compare-and-set, so concurrent voters are never lost or double counted.
type ConsensusEngine struct {
	requests  dao.RequestStore
	grants    dao.GrantStore
	directory *AdminDirectory
	locker    util.Locker
	eventBus  *util.EventBus
	cfg       EngineConfig
	now       func() time.Time
}

func NewConsensusEngine(
	requests dao.RequestStore,
	grants dao.GrantStore,
	directory *AdminDirectory,
	locker util.Locker,
	eventBus *util.EventBus,
	cfg EngineConfig,
) *ConsensusEngine {
	if locker == nil {
		locker = util.NewKeyedMutex()
	}
	return &ConsensusEngine{
		requests:  requests,
		grants:    grants,
		directory: directory,
		locker:    locker,
		eventBus:  eventBus,
		cfg:       cfg.withDefaults(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (e *ConsensusEngine) RequiredApprovals() int {
	return e.cfg.RequiredApprovals
}

// mutateRequest runs mutateLocked under the per-request lock.
func (e *ConsensusEngine) mutateRequest(
	ctx context.Context,
	requestID, actor string,
	transform func(*model.AccessRequest, time.Time) (*model.AccessRequest, error),
) (before, after *model.AccessRequest, err error) {
	unlock, err := e.locker.Lock(ctx, "request:"+requestID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()
	return e.mutateLocked(ctx, requestID, actor, transform)
}

// mutateLocked loads, authorizes, transforms and persists one request,
// re-reading on a stale write. The caller holds the request lock.
func (e *ConsensusEngine) mutateLocked(
	ctx context.Context,
	requestID, actor string,
	transform func(*model.AccessRequest, time.Time) (*model.AccessRequest, error),
) (before, after *model.AccessRequest, err error) {
	for attempt := 1; attempt <= e.cfg.MaxWriteRetries; attempt++ {
		current, err := e.requests.GetRequest(ctx, requestID)
		if err != nil {
			return nil, nil, err
		}
		if !e.directory.CanAct(ctx, actor, current) {
			return nil, nil, grant_errors.ErrNotProjectAdmin
		}
		next, err := transform(current, e.now())
		if err != nil {
			return nil, nil, err
		}
		updated, err := e.requests.UpdateRequest(ctx, next, current.Version)
		if err == nil {
			return current, updated, nil
		}
		if !errors.Is(err, grant_errors.ErrStaleWrite) {
			return nil, nil, err
		}
		logger.FromContext(ctx).Warn("Stale write on access request, retrying",
			zap.String("requestID", requestID),
			zap.Int("attempt", attempt))
	}
	return nil, nil, grant_errors.ErrStaleWrite
}

// Approve records approver's vote and issues the grant once quorum is reached.
// An APPROVED request whose grant was never issued is completed instead of
// being refused, so a caller can retry after an issuance failure.
func (e *ConsensusEngine) Approve(ctx context.Context, requestID, approverEmail string) (*model.AccessRequest, error) {
	approver := model.NormalizeEmail(approverEmail)
	if approver == "" {
		return nil, grant_errors.ErrMissingIdentity
	}

	unlock, err := e.locker.Lock(ctx, "request:"+requestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var seen *model.AccessRequest
	before, updated, err := e.mutateLocked(ctx, requestID, approver, func(req *model.AccessRequest, now time.Time) (*model.AccessRequest, error) {
		seen = req
		return applyApproval(req, approver, e.cfg.RequiredApprovals, now)
	})
	if errors.Is(err, grant_errors.ErrRequestFinalized) && seen != nil && seen.AwaitingGrant() {
		logger.FromContext(ctx).Info("Resuming grant issuance for approved request",
			zap.String("requestID", seen.ID),
			zap.String("approver", approver))
		return e.completeApproval(ctx, seen, approver)
	}
	if err != nil {
		logger.FromContext(ctx).Warn("Approval rejected",
			zap.Error(err),
			zap.String("requestID", requestID),
			zap.String("approver", approver))
		return nil, err
	}

	logger.FromContext(ctx).Info("Access request approval recorded",
		zap.String("requestID", updated.ID),
		zap.String("approver", approver),
		zap.String("from", string(before.Status)),
		zap.String("to", string(updated.Status)),
		zap.Int("approvals", len(updated.Approvals)),
		zap.Int("required", e.cfg.RequiredApprovals))

	if updated.Status != model.StatusApproved {
		e.publish(ctx, EventRequestPartiallyApproved, RequestPartiallyApproved{
			Request:  updated.Clone(),
			Approver: approver,
			Required: e.cfg.RequiredApprovals,
		})
		return updated, nil
	}
	return e.completeApproval(ctx, updated, approver)
}

// completeApproval issues the grant for an APPROVED request and records its
// id on the request. The caller holds the request lock.
func (e *ConsensusEngine) completeApproval(ctx context.Context, req *model.AccessRequest, approver string) (*model.AccessRequest, error) {
	// The APPROVED write is committed; finish issuance even if the caller gives up.
	ctx = context.WithoutCancel(ctx)

	grant, created, err := e.issueGrant(ctx, req, approver)
	if err != nil {
		return req, err
	}
	linked, err := e.linkGrant(ctx, req, grant.ID)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to record grant on approved request",
			zap.Error(err),
			zap.String("requestID", req.ID),
			zap.String("grantID", grant.ID))
		return req, err
	}

	e.publish(ctx, EventRequestApproved, RequestApproved{
		Request: linked.Clone(),
		Grant:   grant.Clone(),
		// A grant stored by an attempt that reported failure still belongs to this request.
		GrantCreated: created || grant.OriginalRequestID == req.ID,
	})
	return linked, nil
}

// linkGrant persists grantID on req. The caller holds the request lock.
func (e *ConsensusEngine) linkGrant(ctx context.Context, req *model.AccessRequest, grantID string) (*model.AccessRequest, error) {
	current := req
	for attempt := 1; attempt <= e.cfg.MaxWriteRetries; attempt++ {
		if current.GrantID == grantID {
			return current, nil
		}
		next := current.Clone()
		next.GrantID = grantID
		updated, err := e.requests.UpdateRequest(ctx, next, current.Version)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, grant_errors.ErrStaleWrite) {
			return nil, err
		}
		if current, err = e.requests.GetRequest(ctx, req.ID); err != nil {
			return nil, err
		}
	}
	return nil, grant_errors.ErrStaleWrite
}

// issueGrant creates (or finds) the ACTIVE grant for an approved request.
func (e *ConsensusEngine) issueGrant(ctx context.Context, req *model.AccessRequest, grantedBy string) (*model.GrantedAccess, bool, error) {
	unlock, err := e.locker.Lock(ctx, "grant:"+req.GrantKey())
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	in := model.GrantRequest{
		UserEmail: req.RequesterEmail,
		AssetName: req.AssetName,
		ProjectID: req.GCPProjectID,
		Role:      req.RequestedRole,
		RequestID: req.ID,
		GrantedBy: grantedBy,
		GrantedAt: e.now(),
	}

	var lastErr error
	for attempt := 1; attempt <= e.cfg.GrantIssueRetries; attempt++ {
		grant, created, err := e.grants.CreateGrant(ctx, in)
		if err == nil {
			logger.FromContext(ctx).Info("Grant issued for approved request",
				zap.String("requestID", req.ID),
				zap.String("grantID", grant.ID),
				zap.Bool("created", created))
			return grant, created, nil
		}
		lastErr = err
		if !errors.Is(err, grant_errors.ErrExternalService) {
			break
		}
		logger.FromContext(ctx).Warn("Grant issuance failed, retrying",
			zap.Error(err),
			zap.String("requestID", req.ID),
			zap.Int("attempt", attempt))
	}

	logger.FromContext(ctx).Error("Grant issuance failed; request stays APPROVED until an approver retries",
		zap.Error(lastErr),
		zap.String("requestID", req.ID))
	if errors.Is(lastErr, grant_errors.ErrExternalService) {
		return nil, false, lastErr
	}
	return nil, false, fmt.Errorf("%w: grant issuance: %v", grant_errors.ErrExternalService, lastErr)
}

// Reject finalizes a request as REJECTED, keeping any approvals as history.
func (e *ConsensusEngine) Reject(ctx context.Context, requestID, reviewerEmail, reason string) (*model.AccessRequest, error) {
	reviewer := model.NormalizeEmail(reviewerEmail)
	if reviewer == "" {
		return nil, grant_errors.ErrMissingIdentity
	}

	before, updated, err := e.mutateRequest(ctx, requestID, reviewer, func(req *model.AccessRequest, now time.Time) (*model.AccessRequest, error) {
		return applyRejection(req, reviewer, reason, now)
	})
	if err != nil {
		logger.FromContext(ctx).Warn("Rejection refused",
			zap.Error(err),
			zap.String("requestID", requestID),
			zap.String("reviewer", reviewer))
		return nil, err
	}

	logger.FromContext(ctx).Info("Access request rejected",
		zap.String("requestID", updated.ID),
		zap.String("reviewer", reviewer),
		zap.String("from", string(before.Status)))
	e.publish(ctx, EventRequestRejected, RequestRejected{Request: updated.Clone(), FromStatus: before.Status})
	return updated, nil
}

// Revoke ends an ACTIVE grant. The originating request is left untouched.
func (e *ConsensusEngine) Revoke(ctx context.Context, grantID, actorEmail string) (*model.GrantedAccess, error) {
	actor := model.NormalizeEmail(actorEmail)
	if actor == "" {
		return nil, grant_errors.ErrMissingIdentity
	}

	grant, err := e.grants.GetGrant(ctx, grantID)
	if err != nil {
		return nil, err
	}
	if !e.directory.CanActOnProject(ctx, actor, grant.GCPProjectID) {
		logger.FromContext(ctx).Warn("Revocation refused: caller does not administer project",
			zap.String("grantID", grantID),
			zap.String("actor", actor),
			zap.String("projectID", grant.GCPProjectID))
		return nil, grant_errors.ErrNotProjectAdmin
	}
	if grant.Status != model.GrantActive {
		return nil, grant_errors.ErrGrantNotActive
	}

	revoked, err := e.grants.RevokeGrant(ctx, grantID, actor, e.now())
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Grant revoked",
		zap.String("grantID", revoked.ID),
		zap.String("actor", actor),
		zap.String("originalRequestID", revoked.OriginalRequestID))
	e.publish(ctx, EventGrantRevoked, GrantRevoked{Grant: revoked.Clone()})
	return revoked, nil
}

func (e *ConsensusEngine) publish(ctx context.Context, eventType string, payload interface{}) {
	if e.eventBus == nil {
		return
	}
	e.eventBus.Publish(ctx, eventType, payload)
}
