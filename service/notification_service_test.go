package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/grantflow/dao/memory"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

func TestNotificationInbox(t *testing.T) {
	store := memory.NewNotificationStore()
	svc := NewNotificationService(store)
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	for i, n := range []*model.Notification{
		{ID: "n1", RecipientEmail: requester, Type: model.NotificationRequestApproved, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(time.Hour)},
		{ID: "n2", RecipientEmail: requester, Type: model.NotificationAccessRevoked, CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour)},
		{ID: "n3", RecipientEmail: requester, Type: model.NotificationRequestRejected, CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
		{ID: "n4", RecipientEmail: alice, Type: model.NotificationNewRequest, CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
	} {
		require.NoError(t, store.CreateNotification(ctx, n), i)
	}

	list, err := svc.ListNotifications(ctx, "DEV@example.com", false, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n2", list[0].ID)
	assert.Equal(t, "n1", list[1].ID)

	count, err := svc.UnreadCount(ctx, requester)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkRead(ctx, requester, "n2"))
	assert.ErrorIs(t, svc.MarkRead(ctx, requester, "n4"), grant_errors.ErrNotificationNotFound)

	unread, err := svc.ListNotifications(ctx, requester, true, 0, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n1", unread[0].ID)

	marked, err := svc.MarkAllRead(ctx, requester)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)
	count, err = svc.UnreadCount(ctx, requester)
	require.NoError(t, err)
	assert.Zero(t, count)

	purged, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
}

func TestNotificationInboxRequiresIdentity(t *testing.T) {
	svc := NewNotificationService(memory.NewNotificationStore())
	ctx := context.Background()

	_, err := svc.ListNotifications(ctx, "", false, 0, 0)
	assert.ErrorIs(t, err, grant_errors.ErrMissingIdentity)
	_, err = svc.UnreadCount(ctx, " ")
	assert.ErrorIs(t, err, grant_errors.ErrMissingIdentity)
	assert.ErrorIs(t, svc.MarkRead(ctx, "", "n1"), grant_errors.ErrMissingIdentity)
}
