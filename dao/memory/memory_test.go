package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

func newRequest(id string) *model.AccessRequest {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.AccessRequest{
		ID:             id,
		RequesterEmail: "u@example.com",
		AssetName:      "bq-dataset",
		GCPProjectID:   "proj-1",
		RequestedRole:  "roles/viewer",
		Status:         model.StatusPending,
		Approvals:      []string{},
		SubmittedAt:    now,
		UpdatedAt:      now,
	}
}

func TestRequestStoreCompareAndSet(t *testing.T) {
	ctx := context.Background()
	store := NewRequestStore()
	require.NoError(t, store.CreateRequest(ctx, newRequest("r1")))

	assert.ErrorIs(t, store.CreateRequest(ctx, newRequest("r1")), grant_errors.ErrRequestExists)

	current, err := store.GetRequest(ctx, "r1")
	require.NoError(t, err)
	current.Approvals = append(current.Approvals, "a1@example.com")

	updated, err := store.UpdateRequest(ctx, current, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version)

	_, err = store.UpdateRequest(ctx, current, 0)
	assert.ErrorIs(t, err, grant_errors.ErrStaleWrite)
	assert.ErrorIs(t, err, grant_errors.ErrConflict)

	_, err = store.UpdateRequest(ctx, newRequest("missing"), 0)
	assert.ErrorIs(t, err, grant_errors.ErrRequestNotFound)
}

func TestRequestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewRequestStore()
	require.NoError(t, store.CreateRequest(ctx, newRequest("r1")))

	got, err := store.GetRequest(ctx, "r1")
	require.NoError(t, err)
	got.Approvals = append(got.Approvals, "tamper@example.com")

	again, err := store.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, again.Approvals)
}

func TestRequestStoreListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	store := NewRequestStore()
	for i, id := range []string{"a", "b", "c"} {
		req := newRequest(id)
		req.SubmittedAt = req.SubmittedAt.Add(time.Duration(i) * time.Minute)
		if id == "b" {
			req.GCPProjectID = "proj-2"
		}
		require.NoError(t, store.CreateRequest(ctx, req))
	}

	all, err := store.ListRequests(ctx, model.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

	scoped, err := store.ListRequests(ctx, model.RequestFilter{ProjectID: "proj-1", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "a", scoped[0].ID)
}

func TestGrantStoreOneActivePerTuple(t *testing.T) {
	ctx := context.Background()
	store := NewGrantStore()
	in := model.GrantRequest{
		UserEmail: "u@example.com",
		AssetName: "bq-dataset",
		ProjectID: "proj-1",
		Role:      "roles/viewer",
		RequestID: "r1",
		GrantedBy: "a@example.com",
		GrantedAt: time.Now().UTC(),
	}

	first, created, err := store.CreateGrant(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := store.CreateGrant(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	revoked, err := store.RevokeGrant(ctx, first.ID, "a@example.com", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, model.GrantRevoked, revoked.Status)
	require.NotNil(t, revoked.RevokedAt)

	_, err = store.RevokeGrant(ctx, first.ID, "a@example.com", time.Now().UTC())
	assert.ErrorIs(t, err, grant_errors.ErrGrantNotActive)

	_, err = store.FindActiveGrant(ctx, in.UserEmail, in.AssetName, in.Role)
	assert.ErrorIs(t, err, grant_errors.ErrGrantNotFound)

	third, created, err := store.CreateGrant(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestGrantStoreSeparatorInNamesKeepsTuplesDistinct(t *testing.T) {
	ctx := context.Background()
	store := NewGrantStore()
	base := model.GrantRequest{UserEmail: "u@example.com", ProjectID: "proj-1", GrantedAt: time.Now().UTC()}

	left := base
	left.AssetName, left.Role, left.RequestID = "b|c", "d", "r1"
	right := base
	right.AssetName, right.Role, right.RequestID = "b", "c|d", "r2"

	g1, created, err := store.CreateGrant(ctx, left)
	require.NoError(t, err)
	assert.True(t, created)

	g2, created, err := store.CreateGrant(ctx, right)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, g1.ID, g2.ID)
	assert.Equal(t, "b", g2.AssetName)
	assert.Equal(t, "c|d", g2.Role)

	found, err := store.FindActiveGrant(ctx, "u@example.com", "b", "c|d")
	require.NoError(t, err)
	assert.Equal(t, g2.ID, found.ID)
}

func TestGrantStoreConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	store := NewGrantStore()
	in := model.GrantRequest{UserEmail: "u@example.com", AssetName: "x", ProjectID: "p", Role: "r"}

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := store.CreateGrant(ctx, in)
			assert.NoError(t, err)
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, createdCount)

	active, err := store.ListGrants(ctx, model.GrantFilter{Status: model.GrantActive})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestNotificationStoreInbox(t *testing.T) {
	ctx := context.Background()
	store := NewNotificationStore()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	fresh := &model.Notification{RecipientEmail: "u@example.com", Type: model.NotificationRequestApproved, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := &model.Notification{RecipientEmail: "u@example.com", Type: model.NotificationRequestRejected, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	other := &model.Notification{RecipientEmail: "v@example.com", Type: model.NotificationNewRequest, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	for _, n := range []*model.Notification{fresh, stale, other} {
		require.NoError(t, store.CreateNotification(ctx, n))
		require.NotEmpty(t, n.ID)
	}

	visible, err := store.ListNotifications(ctx, model.NotificationFilter{RecipientEmail: "u@example.com", Now: now})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, fresh.ID, visible[0].ID)

	unread, err := store.CountUnread(ctx, "u@example.com", now)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	assert.ErrorIs(t, store.MarkRead(ctx, "v@example.com", fresh.ID), grant_errors.ErrNotificationNotFound)
	require.NoError(t, store.MarkRead(ctx, "u@example.com", fresh.ID))

	unread, err = store.CountUnread(ctx, "u@example.com", now)
	require.NoError(t, err)
	assert.Zero(t, unread)

	marked, err := store.MarkAllRead(ctx, "u@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	deleted, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestAdminStoreUpsertKeepsCreation(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := store.UpsertAdminRole(ctx, &model.AdminRole{Email: "a@example.com", Role: model.RoleProjectAdmin, AssignedProjects: []string{"p1"}, CreatedBy: "root", CreatedAt: created})
	require.NoError(t, err)
	role, err := store.UpsertAdminRole(ctx, &model.AdminRole{Email: "a@example.com", Role: model.RoleSuperAdmin, CreatedBy: "other", CreatedAt: created.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, role.Role)
	assert.Equal(t, created, role.CreatedAt)
	assert.Equal(t, "root", role.CreatedBy)

	require.NoError(t, store.DeleteAdminRole(ctx, "a@example.com"))
	_, err = store.GetAdminRole(ctx, "a@example.com")
	assert.ErrorIs(t, err, grant_errors.ErrAdminRoleNotFound)
	assert.ErrorIs(t, store.DeleteAdminRole(ctx, "a@example.com"), grant_errors.ErrAdminRoleNotFound)
}
