package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/grantflow/dao"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

func TestTwoApprovalsIssueGrant(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 2}, nil)
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")

	partial, err := f.services.Access.ApproveRequest(ctx, req.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartiallyApproved, partial.Status)
	assert.Equal(t, []string{alice}, partial.Approvals)
	assert.Empty(t, partial.ReviewedBy)

	approved, err := f.services.Access.ApproveRequest(ctx, req.ID, "  BOB@example.com ")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.Equal(t, []string{alice, bob}, approved.Approvals)
	assert.Equal(t, bob, approved.ReviewedBy)
	require.NotNil(t, approved.ReviewedAt)
	// Submit, two votes, then the grant link.
	assert.Equal(t, int64(4), approved.Version)

	grants, err := f.services.Access.ListGrants(ctx, model.GrantFilter{Status: model.GrantActive})
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, requester, grants[0].UserEmail)
	assert.Equal(t, "orders", grants[0].AssetName)
	assert.Equal(t, "roles/viewer", grants[0].Role)
	assert.Equal(t, project1, grants[0].GCPProjectID)
	assert.Equal(t, req.ID, grants[0].OriginalRequestID)
	assert.Equal(t, bob, grants[0].GrantedBy)
	assert.Equal(t, grants[0].ID, approved.GrantID)

	types := notificationTypes(f.inbox(t, requester))
	assert.Len(t, types, 2)
	assert.ElementsMatch(t, []model.NotificationType{model.NotificationRequestApproved, model.NotificationRequestApproved}, types)
}

func TestDuplicateApprovalIsConflict(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 2}, nil)
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")

	_, err := f.services.Access.ApproveRequest(ctx, req.ID, alice)
	require.NoError(t, err)

	_, err = f.services.Access.ApproveRequest(ctx, req.ID, alice)
	assert.ErrorIs(t, err, grant_errors.ErrDuplicateApproval)
	assert.ErrorIs(t, err, grant_errors.ErrConflict)

	stored, err := f.services.Access.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartiallyApproved, stored.Status)
	assert.Equal(t, []string{alice}, stored.Approvals)

	grants, err := f.services.Access.ListGrants(ctx, model.GrantFilter{})
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestApprovalOutsideProjectIsUnauthorized(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 2}, nil)
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")

	_, err := f.services.Access.ApproveRequest(ctx, req.ID, carol)
	assert.ErrorIs(t, err, grant_errors.ErrNotProjectAdmin)

	_, err = f.services.Access.ApproveRequest(ctx, req.ID, "stranger@example.com")
	assert.ErrorIs(t, err, grant_errors.ErrUnauthorized)

	_, err = f.services.Access.ApproveRequest(ctx, req.ID, " ")
	assert.ErrorIs(t, err, grant_errors.ErrMissingIdentity)

	// Super-admins cover every project.
	updated, err := f.services.Access.ApproveRequest(ctx, req.ID, root)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartiallyApproved, updated.Status)

	stored, err := f.services.Access.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{root}, stored.Approvals)
}

func TestApproveMissingRequest(t *testing.T) {
	f := newFixture(t, EngineConfig{}, nil)

	_, err := f.services.Access.ApproveRequest(context.Background(), "does-not-exist", alice)
	assert.ErrorIs(t, err, grant_errors.ErrRequestNotFound)
	assert.ErrorIs(t, err, grant_errors.ErrNotFound)
}

func TestRejectAfterPartialApprovalKeepsHistory(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 2}, nil)
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/editor")

	_, err := f.services.Access.ApproveRequest(ctx, req.ID, alice)
	require.NoError(t, err)

	rejected, err := f.services.Access.RejectRequest(ctx, req.ID, bob, "not needed for this quarter")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, rejected.Status)
	assert.Equal(t, []string{alice}, rejected.Approvals)
	assert.Equal(t, "not needed for this quarter", rejected.AdminNote)
	assert.Equal(t, bob, rejected.ReviewedBy)

	_, err = f.services.Access.ApproveRequest(ctx, req.ID, root)
	assert.ErrorIs(t, err, grant_errors.ErrRequestFinalized)

	_, err = f.services.Access.RejectRequest(ctx, req.ID, root, "again")
	assert.ErrorIs(t, err, grant_errors.ErrRequestFinalized)

	grants, err := f.services.Access.ListGrants(ctx, model.GrantFilter{})
	require.NoError(t, err)
	assert.Empty(t, grants)

	inbox := f.inbox(t, requester)
	assert.Contains(t, notificationTypes(inbox), model.NotificationRequestRejected)
}

func TestApproveFinalizedRequestIsConflict(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 1}, nil)
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")

	_, err := f.services.Access.ApproveRequest(ctx, req.ID, alice)
	require.NoError(t, err)

	_, err = f.services.Access.ApproveRequest(ctx, req.ID, bob)
	assert.ErrorIs(t, err, grant_errors.ErrRequestFinalized)

	_, err = f.services.Access.RejectRequest(ctx, req.ID, bob, "")
	assert.ErrorIs(t, err, grant_errors.ErrRequestFinalized)
}

func TestSingleApprovalQuorum(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 1}, nil)
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")

	approved, err := f.services.Access.ApproveRequest(ctx, req.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.Equal(t, alice, approved.ReviewedBy)

	grants, err := f.services.Access.ListGrants(ctx, model.GrantFilter{})
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}

func TestConcurrentApprovalsByDistinctAdminsAreAllCounted(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 3}, nil)
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i, approver := range []string{alice, bob, root} {
		wg.Add(1)
		go func(i int, approver string) {
			defer wg.Done()
			_, errs[i] = f.services.Access.ApproveRequest(ctx, req.ID, approver)
		}(i, approver)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	stored, err := f.services.Access.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)
	assert.ElementsMatch(t, []string{alice, bob, root}, stored.Approvals)
	assert.Equal(t, int64(5), stored.Version)
	assert.NotEmpty(t, stored.GrantID)

	grants, err := f.services.Access.ListGrants(ctx, model.GrantFilter{})
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}

func TestConcurrentApprovalsBySameAdminCollapse(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 2}, nil)
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.services.Access.ApproveRequest(ctx, req.ID, alice)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, grant_errors.ErrDuplicateApproval)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := f.services.Access.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice}, stored.Approvals)
	assert.Equal(t, model.StatusPartiallyApproved, stored.Status)
}

func TestSecondRequestForActiveTupleReusesGrant(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 1}, nil)
	ctx := context.Background()
	first := f.submit(t, "orders", "roles/viewer")
	second := f.submit(t, "orders", "roles/viewer")
	require.NotEqual(t, first.ID, second.ID)

	_, err := f.services.Access.ApproveRequest(ctx, first.ID, alice)
	require.NoError(t, err)
	_, err = f.services.Access.ApproveRequest(ctx, second.ID, bob)
	require.NoError(t, err)

	grants, err := f.services.Access.ListGrants(ctx, model.GrantFilter{Status: model.GrantActive})
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, first.ID, grants[0].OriginalRequestID)

	stored, err := f.services.Access.GetRequest(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)
}

func TestRevokeLeavesRequestUntouched(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 1}, nil)
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")
	_, err := f.services.Access.ApproveRequest(ctx, req.ID, alice)
	require.NoError(t, err)

	grants, err := f.services.Access.ListGrants(ctx, model.GrantFilter{})
	require.NoError(t, err)
	require.Len(t, grants, 1)
	grantID := grants[0].ID

	_, err = f.services.Access.RevokeGrant(ctx, grantID, carol)
	assert.ErrorIs(t, err, grant_errors.ErrNotProjectAdmin)

	revoked, err := f.services.Access.RevokeGrant(ctx, grantID, bob)
	require.NoError(t, err)
	assert.Equal(t, model.GrantRevoked, revoked.Status)
	assert.Equal(t, bob, revoked.RevokedBy)
	require.NotNil(t, revoked.RevokedAt)

	stored, err := f.services.Access.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)

	_, err = f.services.Access.RevokeGrant(ctx, grantID, bob)
	assert.ErrorIs(t, err, grant_errors.ErrGrantNotActive)

	// A revoked grant is not re-issued by approving its request again.
	_, err = f.services.Access.ApproveRequest(ctx, req.ID, bob)
	assert.ErrorIs(t, err, grant_errors.ErrRequestFinalized)

	_, err = f.services.Access.RevokeGrant(ctx, "missing", bob)
	assert.ErrorIs(t, err, grant_errors.ErrGrantNotFound)

	assert.Contains(t, notificationTypes(f.inbox(t, requester)), model.NotificationAccessRevoked)

	// The tuple is free again: a fresh request produces a fresh grant.
	again := f.submit(t, "orders", "roles/viewer")
	_, err = f.services.Access.ApproveRequest(ctx, again.ID, alice)
	require.NoError(t, err)
	active, err := f.services.Access.ListGrants(ctx, model.GrantFilter{Status: model.GrantActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.NotEqual(t, grantID, active[0].ID)
	assert.Equal(t, again.ID, active[0].OriginalRequestID)
}

func TestDirectoryFailureDeniesApproval(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 1}, func(s *dao.Stores) {
		s.Admins = failingAdminStore{AdminStore: s.Admins}
	})
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")

	_, err := f.services.Access.ApproveRequest(ctx, req.ID, alice)
	assert.ErrorIs(t, err, grant_errors.ErrUnauthorized)

	stored, err := f.services.Access.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Empty(t, stored.Approvals)
}

func TestStaleWriteIsRetried(t *testing.T) {
	var stale *staleRequestStore
	f := newFixture(t, EngineConfig{RequiredApprovals: 2}, func(s *dao.Stores) {
		stale = &staleRequestStore{RequestStore: s.Requests, remaining: 2}
		s.Requests = stale
	})
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")

	updated, err := f.services.Access.ApproveRequest(ctx, req.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{alice}, updated.Approvals)
	assert.Equal(t, int32(3), stale.updates)
}

func TestStaleWriteGivesUpAfterMaxRetries(t *testing.T) {
	var stale *staleRequestStore
	f := newFixture(t, EngineConfig{RequiredApprovals: 2, MaxWriteRetries: 4}, func(s *dao.Stores) {
		stale = &staleRequestStore{RequestStore: s.Requests, remaining: 100}
		s.Requests = stale
	})
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")

	_, err := f.services.Access.ApproveRequest(ctx, req.ID, alice)
	assert.ErrorIs(t, err, grant_errors.ErrStaleWrite)
	assert.ErrorIs(t, err, grant_errors.ErrConflict)
	assert.Equal(t, int32(4), stale.updates)
}

func TestGrantIssueFailureIsRecoveredOnRetry(t *testing.T) {
	var failing *failingGrantStore
	f := newFixture(t, EngineConfig{RequiredApprovals: 1, GrantIssueRetries: 3}, func(s *dao.Stores) {
		failing = &failingGrantStore{GrantStore: s.Grants, remaining: 3}
		s.Grants = failing
	})
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")

	_, err := f.services.Access.ApproveRequest(ctx, req.ID, alice)
	assert.ErrorIs(t, err, grant_errors.ErrExternalService)
	assert.Equal(t, int32(3), failing.creates)

	stored, err := f.services.Access.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)
	assert.True(t, stored.AwaitingGrant())
	assert.Empty(t, f.inbox(t, requester))

	// The store is back; the same approver retries.
	recovered, err := f.services.Access.ApproveRequest(ctx, req.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, recovered.Status)
	assert.Equal(t, []string{alice}, recovered.Approvals)
	assert.NotEmpty(t, recovered.GrantID)

	grants, err := f.services.Access.ListGrants(ctx, model.GrantFilter{Status: model.GrantActive})
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, recovered.GrantID, grants[0].ID)
	assert.Equal(t, req.ID, grants[0].OriginalRequestID)

	assert.Equal(t, []model.NotificationType{model.NotificationRequestApproved}, notificationTypes(f.inbox(t, requester)))

	// Once the grant is recorded the request is final again.
	_, err = f.services.Access.ApproveRequest(ctx, req.ID, bob)
	assert.ErrorIs(t, err, grant_errors.ErrRequestFinalized)
	assert.Equal(t, int32(4), failing.creates)
}

func TestGrantIssueRetryByAnotherApprover(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 1, GrantIssueRetries: 2}, func(s *dao.Stores) {
		s.Grants = &failingGrantStore{GrantStore: s.Grants, remaining: 2}
	})
	ctx := context.Background()
	req := f.submit(t, "orders", "roles/viewer")

	_, err := f.services.Access.ApproveRequest(ctx, req.ID, alice)
	require.ErrorIs(t, err, grant_errors.ErrExternalService)

	_, err = f.services.Access.ApproveRequest(ctx, req.ID, carol)
	assert.ErrorIs(t, err, grant_errors.ErrNotProjectAdmin)

	recovered, err := f.services.Access.ApproveRequest(ctx, req.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, []string{alice}, recovered.Approvals)
	assert.Equal(t, alice, recovered.ReviewedBy)

	grant, err := f.services.Access.GetGrant(ctx, recovered.GrantID)
	require.NoError(t, err)
	assert.Equal(t, model.GrantActive, grant.Status)
	assert.Equal(t, bob, grant.GrantedBy)
}
