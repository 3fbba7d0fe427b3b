// service/lifecycle_effects.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/grantflow/audit"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
	"github.com/dev-mohitbeniwal/grantflow/util"
)

// Notifier is the NotificationDispatcher surface the effects need.
type Notifier interface {
	NotifyApproved(ctx context.Context, req *model.AccessRequest, grant *model.GrantedAccess) error
	NotifyPartialProgress(ctx context.Context, req *model.AccessRequest, required int) error
	NotifyRejected(ctx context.Context, req *model.AccessRequest) error
	NotifyRevoked(ctx context.Context, grant *model.GrantedAccess) error
	NotifyNewRequest(ctx context.Context, req *model.AccessRequest, recipients []string) error
	NotifyBulkAction(ctx context.Context, count int, action model.BulkAction, actor string, recipients []string) error
}

// LifecycleEffects runs the advisory side effects of committed transitions:
// notifications, audit records and role bindings. Nothing here can fail the
// transition that triggered it.
type LifecycleEffects struct {
	notifier Notifier
	audit    audit.Service
	binder   RoleBinder
}

func NewLifecycleEffects(notifier Notifier, auditService audit.Service, binder RoleBinder) *LifecycleEffects {
	if binder == nil {
		binder = NewLoggingRoleBinder()
	}
	return &LifecycleEffects{notifier: notifier, audit: auditService, binder: binder}
}

// Register subscribes every handler on bus.
func (l *LifecycleEffects) Register(bus *util.EventBus) {
	bus.Subscribe(EventRequestSubmitted, l.handleRequestSubmitted)
	bus.Subscribe(EventRequestPartiallyApproved, l.handlePartiallyApproved)
	bus.Subscribe(EventRequestApproved, l.handleApproved)
	bus.Subscribe(EventRequestRejected, l.handleRejected)
	bus.Subscribe(EventGrantRevoked, l.handleGrantRevoked)
	bus.Subscribe(EventBulkCompleted, l.handleBulkCompleted)
}

func invalidPayload(event util.Event) error {
	logger.Error("Invalid event payload type", zap.String("eventType", event.Type), zap.Any("payload", event.Payload))
	return fmt.Errorf("invalid event payload type for %s: %T", event.Type, event.Payload)
}

func (l *LifecycleEffects) handleRequestSubmitted(ctx context.Context, event util.Event) error {
	payload, ok := event.Payload.(RequestSubmitted)
	if !ok {
		return invalidPayload(event)
	}
	req := payload.Request
	logger.FromContext(ctx).Info("Request submitted event received", zap.String("requestID", req.ID), zap.Int("recipients", len(payload.Recipients)))

	var errs []error
	if len(payload.Recipients) > 0 {
		if err := l.notifier.NotifyNewRequest(ctx, req, payload.Recipients); err != nil {
			logger.FromContext(ctx).Warn("Failed to send new-request notifications", zap.Error(err), zap.String("requestID", req.ID))
			errs = append(errs, err)
		}
	}
	errs = append(errs, l.record(ctx, audit.AuditLog{
		Actor:     req.RequesterEmail,
		Action:    audit.ActionSubmit,
		RequestID: req.ID,
		ProjectID: req.GCPProjectID,
		ToStatus:  string(req.Status),
		Success:   true,
	}, map[string]interface{}{"asset": req.AssetName, "role": req.RequestedRole}))
	return errors.Join(errs...)
}

func (l *LifecycleEffects) handlePartiallyApproved(ctx context.Context, event util.Event) error {
	payload, ok := event.Payload.(RequestPartiallyApproved)
	if !ok {
		return invalidPayload(event)
	}
	req := payload.Request

	var errs []error
	if err := l.notifier.NotifyPartialProgress(ctx, req, payload.Required); err != nil {
		logger.FromContext(ctx).Warn("Failed to send partial-approval notification", zap.Error(err), zap.String("requestID", req.ID))
		errs = append(errs, err)
	}
	errs = append(errs, l.record(ctx, audit.AuditLog{
		Actor:     payload.Approver,
		Action:    audit.ActionApprove,
		RequestID: req.ID,
		ProjectID: req.GCPProjectID,
		ToStatus:  string(req.Status),
		Success:   true,
	}, map[string]interface{}{"approvals": req.Approvals, "required": payload.Required}))
	return errors.Join(errs...)
}

func (l *LifecycleEffects) handleApproved(ctx context.Context, event util.Event) error {
	payload, ok := event.Payload.(RequestApproved)
	if !ok {
		return invalidPayload(event)
	}
	req, grant := payload.Request, payload.Grant
	logger.FromContext(ctx).Info("Request approved event received",
		zap.String("requestID", req.ID),
		zap.String("grantID", grant.ID),
		zap.Bool("grantCreated", payload.GrantCreated))

	var errs []error
	if payload.GrantCreated {
		bindErr := l.binder.Bind(ctx, grant)
		if bindErr != nil {
			logger.FromContext(ctx).Error("Failed to bind cloud role", zap.Error(bindErr), zap.String("grantID", grant.ID))
			errs = append(errs, bindErr)
		}
		errs = append(errs, l.record(ctx, audit.AuditLog{
			Actor:     grant.GrantedBy,
			Action:    audit.ActionRoleBind,
			RequestID: req.ID,
			GrantID:   grant.ID,
			ProjectID: grant.GCPProjectID,
			Success:   bindErr == nil,
		}, nil))
	}

	if err := l.notifier.NotifyApproved(ctx, req, grant); err != nil {
		logger.FromContext(ctx).Warn("Failed to send approval notification", zap.Error(err), zap.String("requestID", req.ID))
		errs = append(errs, err)
	}
	errs = append(errs, l.record(ctx, audit.AuditLog{
		Actor:     req.ReviewedBy,
		Action:    audit.ActionGrantIssued,
		RequestID: req.ID,
		GrantID:   grant.ID,
		ProjectID: req.GCPProjectID,
		ToStatus:  string(req.Status),
		Success:   true,
	}, map[string]interface{}{"approvals": req.Approvals, "grantCreated": payload.GrantCreated}))
	return errors.Join(errs...)
}

func (l *LifecycleEffects) handleRejected(ctx context.Context, event util.Event) error {
	payload, ok := event.Payload.(RequestRejected)
	if !ok {
		return invalidPayload(event)
	}
	req := payload.Request

	var errs []error
	if err := l.notifier.NotifyRejected(ctx, req); err != nil {
		logger.FromContext(ctx).Warn("Failed to send rejection notification", zap.Error(err), zap.String("requestID", req.ID))
		errs = append(errs, err)
	}
	errs = append(errs, l.record(ctx, audit.AuditLog{
		Actor:      req.ReviewedBy,
		Action:     audit.ActionReject,
		RequestID:  req.ID,
		ProjectID:  req.GCPProjectID,
		FromStatus: string(payload.FromStatus),
		ToStatus:   string(req.Status),
		Success:    true,
	}, map[string]interface{}{"reason": req.AdminNote}))
	return errors.Join(errs...)
}

func (l *LifecycleEffects) handleGrantRevoked(ctx context.Context, event util.Event) error {
	payload, ok := event.Payload.(GrantRevoked)
	if !ok {
		return invalidPayload(event)
	}
	grant := payload.Grant

	var errs []error
	unbindErr := l.binder.Unbind(ctx, grant)
	if unbindErr != nil {
		logger.FromContext(ctx).Error("Failed to unbind cloud role", zap.Error(unbindErr), zap.String("grantID", grant.ID))
		errs = append(errs, unbindErr)
	}
	if err := l.notifier.NotifyRevoked(ctx, grant); err != nil {
		logger.FromContext(ctx).Warn("Failed to send revocation notification", zap.Error(err), zap.String("grantID", grant.ID))
		errs = append(errs, err)
	}
	errs = append(errs, l.record(ctx, audit.AuditLog{
		Actor:      grant.RevokedBy,
		Action:     audit.ActionRevoke,
		RequestID:  grant.OriginalRequestID,
		GrantID:    grant.ID,
		ProjectID:  grant.GCPProjectID,
		FromStatus: string(model.GrantActive),
		ToStatus:   string(grant.Status),
		Success:    true,
	}, map[string]interface{}{"unbound": unbindErr == nil}))
	return errors.Join(errs...)
}

func (l *LifecycleEffects) handleBulkCompleted(ctx context.Context, event util.Event) error {
	payload, ok := event.Payload.(BulkCompleted)
	if !ok {
		return invalidPayload(event)
	}
	if payload.Actor == "" || payload.Result == nil {
		return nil
	}
	err := l.notifier.NotifyBulkAction(ctx, payload.Result.Succeeded, payload.Result.Action, payload.Actor, []string{payload.Actor})
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to send bulk-action notification", zap.Error(err), zap.String("actor", payload.Actor))
	}
	return err
}

// record writes an audit entry; failures are logged and returned for the bus.
func (l *LifecycleEffects) record(ctx context.Context, entry audit.AuditLog, details map[string]interface{}) error {
	if l.audit == nil {
		return nil
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = raw
		}
	}
	if err := l.audit.LogAction(ctx, entry); err != nil {
		logger.FromContext(ctx).Warn("Failed to write audit record",
			zap.Error(err),
			zap.String("action", entry.Action),
			zap.String("requestID", entry.RequestID))
		return err
	}
	return nil
}
