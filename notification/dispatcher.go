// notification/dispatcher.go
package notification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/grantflow/dao"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

// Dispatcher builds notification records, persists them and hands them to the
// transport. It holds no business rules; callers decide who hears what.
type Dispatcher struct {
	store     dao.NotificationStore
	publisher Publisher
	retention time.Duration
	now       func() time.Time
}

func NewDispatcher(store dao.NotificationStore, publisher Publisher, retention time.Duration) *Dispatcher {
	if publisher == nil {
		publisher = NewLogPublisher()
	}
	return &Dispatcher{
		store:     store,
		publisher: publisher,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the creation clock. Tests only.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

func requestMetadata(req *model.AccessRequest) map[string]string {
	return map[string]string{
		model.MetaRequestID: req.ID,
		model.MetaAssetName: req.AssetName,
		model.MetaProjectID: req.GCPProjectID,
		model.MetaRole:      req.RequestedRole,
	}
}

func (d *Dispatcher) NotifyApproved(ctx context.Context, req *model.AccessRequest, grant *model.GrantedAccess) error {
	meta := requestMetadata(req)
	meta[model.MetaActor] = req.ReviewedBy
	if grant != nil {
		meta[model.MetaGrantID] = grant.ID
	}
	return d.send(ctx, &model.Notification{
		RecipientEmail: req.RequesterEmail,
		Type:           model.NotificationRequestApproved,
		Title:          "Access request approved",
		Message:        fmt.Sprintf("Your request for %s on %s (%s) was approved.", req.RequestedRole, req.AssetName, req.GCPProjectID),
		Metadata:       meta,
	})
}

// NotifyPartialProgress tells the requester how many approvals are in.
func (d *Dispatcher) NotifyPartialProgress(ctx context.Context, req *model.AccessRequest, required int) error {
	meta := requestMetadata(req)
	if n := len(req.Approvals); n > 0 {
		meta[model.MetaActor] = req.Approvals[n-1]
	}
	meta[model.MetaApprovals] = strconv.Itoa(len(req.Approvals))
	meta[model.MetaRequired] = strconv.Itoa(required)
	return d.send(ctx, &model.Notification{
		RecipientEmail: req.RequesterEmail,
		Type:           model.NotificationRequestApproved,
		Title:          "Request partially approved",
		Message:        fmt.Sprintf("Your request for %s on %s has %d of %d approvals.", req.RequestedRole, req.AssetName, len(req.Approvals), required),
		Metadata:       meta,
	})
}

func (d *Dispatcher) NotifyRejected(ctx context.Context, req *model.AccessRequest) error {
	meta := requestMetadata(req)
	meta[model.MetaActor] = req.ReviewedBy
	message := fmt.Sprintf("Your request for %s on %s (%s) was rejected.", req.RequestedRole, req.AssetName, req.GCPProjectID)
	if req.AdminNote != "" {
		message += " Reason: " + req.AdminNote
	}
	return d.send(ctx, &model.Notification{
		RecipientEmail: req.RequesterEmail,
		Type:           model.NotificationRequestRejected,
		Title:          "Access request rejected",
		Message:        message,
		Metadata:       meta,
	})
}

func (d *Dispatcher) NotifyRevoked(ctx context.Context, grant *model.GrantedAccess) error {
	return d.send(ctx, &model.Notification{
		RecipientEmail: grant.UserEmail,
		Type:           model.NotificationAccessRevoked,
		Title:          "Access revoked",
		Message:        fmt.Sprintf("Your %s access on %s (%s) was revoked.", grant.Role, grant.AssetName, grant.GCPProjectID),
		Metadata: map[string]string{
			model.MetaGrantID:   grant.ID,
			model.MetaRequestID: grant.OriginalRequestID,
			model.MetaAssetName: grant.AssetName,
			model.MetaProjectID: grant.GCPProjectID,
			model.MetaRole:      grant.Role,
			model.MetaActor:     grant.RevokedBy,
		},
	})
}

// NotifyNewRequest writes one record per recipient. Every recipient is
// attempted; failures are joined.
func (d *Dispatcher) NotifyNewRequest(ctx context.Context, req *model.AccessRequest, recipients []string) error {
	var errs []error
	for _, recipient := range recipients {
		meta := requestMetadata(req)
		meta[model.MetaActor] = req.RequesterEmail
		err := d.send(ctx, &model.Notification{
			RecipientEmail: recipient,
			Type:           model.NotificationNewRequest,
			Title:          "New access request",
			Message:        fmt.Sprintf("%s requested %s on %s (%s).", req.RequesterEmail, req.RequestedRole, req.AssetName, req.GCPProjectID),
			Metadata:       meta,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) NotifyBulkAction(ctx context.Context, count int, action model.BulkAction, actor string, recipients []string) error {
	var errs []error
	for _, recipient := range recipients {
		err := d.send(ctx, &model.Notification{
			RecipientEmail: recipient,
			Type:           model.NotificationBulkAction,
			Title:          "Bulk action completed",
			Message:        fmt.Sprintf("%s applied %s to %d request(s).", actor, action, count),
			Metadata: map[string]string{
				model.MetaActor:  actor,
				model.MetaAction: string(action),
				model.MetaCount:  strconv.Itoa(count),
			},
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) send(ctx context.Context, n *model.Notification) error {
	n.CreatedAt = d.now()
	n.ExpiresAt = n.CreatedAt.Add(d.retention)

	if err := d.store.CreateNotification(ctx, n); err != nil {
		logger.Error("Failed to persist notification",
			zap.Error(err),
			zap.String("recipient", n.RecipientEmail),
			zap.String("type", string(n.Type)))
		return err
	}
	if err := d.publisher.Publish(ctx, n); err != nil {
		logger.Error("Failed to publish notification",
			zap.Error(err),
			zap.String("notificationID", n.ID),
			zap.String("recipient", n.RecipientEmail))
		return fmt.Errorf("%w: %v", grant_errors.ErrNotificationTransport, err)
	}
	logger.Debug("Notification dispatched",
		zap.String("notificationID", n.ID),
		zap.String("recipient", n.RecipientEmail),
		zap.String("type", string(n.Type)))
	return nil
}
