// service/notification_service.go
package service

import (
	"context"
	"time"

	"github.com/dev-mohitbeniwal/grantflow/dao"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

type INotificationService interface {
	ListNotifications(ctx context.Context, recipientEmail string, unreadOnly bool, limit, offset int) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, recipientEmail string) (int, error)
	MarkRead(ctx context.Context, recipientEmail, notificationID string) error
	MarkAllRead(ctx context.Context, recipientEmail string) (int, error)
	PurgeExpired(ctx context.Context) (int, error)
}

// NotificationService is the recipient's inbox.
type NotificationService struct {
	store dao.NotificationStore
	now   func() time.Time
}

var _ INotificationService = &NotificationService{}

func NewNotificationService(store dao.NotificationStore) *NotificationService {
	return &NotificationService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func recipient(email string) (string, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return "", grant_errors.ErrMissingIdentity
	}
	return email, nil
}

func (s *NotificationService) ListNotifications(ctx context.Context, recipientEmail string, unreadOnly bool, limit, offset int) ([]*model.Notification, error) {
	email, err := recipient(recipientEmail)
	if err != nil {
		return nil, err
	}
	limit, offset = model.ClampPage(limit, offset)
	return s.store.ListNotifications(ctx, model.NotificationFilter{
		RecipientEmail: email,
		UnreadOnly:     unreadOnly,
		Now:            s.now(),
		Limit:          limit,
		Offset:         offset,
	})
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientEmail string) (int, error) {
	email, err := recipient(recipientEmail)
	if err != nil {
		return 0, err
	}
	return s.store.CountUnread(ctx, email, s.now())
}

func (s *NotificationService) MarkRead(ctx context.Context, recipientEmail, notificationID string) error {
	email, err := recipient(recipientEmail)
	if err != nil {
		return err
	}
	return s.store.MarkRead(ctx, email, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientEmail string) (int, error) {
	email, err := recipient(recipientEmail)
	if err != nil {
		return 0, err
	}
	return s.store.MarkAllRead(ctx, email)
}

func (s *NotificationService) PurgeExpired(ctx context.Context) (int, error) {
	return s.store.DeleteExpired(ctx, s.now())
}
