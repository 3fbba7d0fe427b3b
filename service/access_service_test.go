package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

func TestSubmitRequestInitialState(t *testing.T) {
	f := newFixture(t, EngineConfig{}, nil)
	ctx := context.Background()

	req, err := f.services.Access.SubmitRequest(ctx, model.SubmitRequestInput{
		RequesterEmail: " Dev@Example.com ",
		AssetName:      "orders",
		GCPProjectID:   project1,
		RequestedRole:  "roles/viewer",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, requester, req.RequesterEmail)
	assert.Equal(t, model.StatusPending, req.Status)
	assert.NotNil(t, req.Approvals)
	assert.Empty(t, req.Approvals)
	assert.Equal(t, int64(1), req.Version)
	assert.Equal(t, req.SubmittedAt, req.UpdatedAt)
	assert.Nil(t, req.ReviewedAt)

	stored, err := f.services.Access.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, stored.ID)
}

func TestSubmitRequestValidation(t *testing.T) {
	f := newFixture(t, EngineConfig{}, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   model.SubmitRequestInput
	}{
		{"missing asset", model.SubmitRequestInput{RequesterEmail: requester, GCPProjectID: project1, RequestedRole: "roles/viewer"}},
		{"bad requester", model.SubmitRequestInput{RequesterEmail: "not-an-email", AssetName: "a", GCPProjectID: project1, RequestedRole: "r"}},
		{"missing project", model.SubmitRequestInput{RequesterEmail: requester, AssetName: "a", RequestedRole: "r"}},
		{"bad approver", model.SubmitRequestInput{RequesterEmail: requester, AssetName: "a", GCPProjectID: project1, RequestedRole: "r", ApproverList: []string{"nope"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Access.SubmitRequest(ctx, tt.in)
			assert.ErrorIs(t, err, grant_errors.ErrValidation)
		})
	}
}

func TestSubmitRequestWithCallerID(t *testing.T) {
	f := newFixture(t, EngineConfig{}, nil)
	ctx := context.Background()
	in := model.SubmitRequestInput{
		ID:             "req-42",
		RequesterEmail: requester,
		AssetName:      "orders",
		GCPProjectID:   project1,
		RequestedRole:  "roles/viewer",
	}

	req, err := f.services.Access.SubmitRequest(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "req-42", req.ID)

	_, err = f.services.Access.SubmitRequest(ctx, in)
	assert.ErrorIs(t, err, grant_errors.ErrRequestExists)
	assert.ErrorIs(t, err, grant_errors.ErrConflict)
}

func TestSubmitNotifiesExplicitApprovers(t *testing.T) {
	f := newFixture(t, EngineConfig{}, nil)
	ctx := context.Background()

	_, err := f.services.Access.SubmitRequest(ctx, model.SubmitRequestInput{
		RequesterEmail: requester,
		AssetName:      "orders",
		GCPProjectID:   project1,
		RequestedRole:  "roles/viewer",
		ApproverList:   []string{alice, "ALICE@example.com", requester, carol},
	})
	require.NoError(t, err)

	assert.Len(t, f.inbox(t, alice), 1)
	assert.Len(t, f.inbox(t, carol), 1)
	assert.Empty(t, f.inbox(t, requester))
	assert.Empty(t, f.inbox(t, bob))
}

func TestSubmitDefaultsToProjectAdmins(t *testing.T) {
	f := newFixture(t, EngineConfig{}, nil)
	f.submit(t, "orders", "roles/viewer")

	for _, email := range []string{alice, bob, root} {
		inbox := f.inbox(t, email)
		require.Len(t, inbox, 1, email)
		assert.Equal(t, model.NotificationNewRequest, inbox[0].Type)
		assert.NotEmpty(t, inbox[0].Metadata[model.MetaRequestID])
	}
	assert.Empty(t, f.inbox(t, carol))
}

func TestListRequestsFilters(t *testing.T) {
	f := newFixture(t, EngineConfig{RequiredApprovals: 1}, nil)
	ctx := context.Background()
	a := f.submit(t, "orders", "roles/viewer")
	f.submit(t, "invoices", "roles/viewer")
	_, err := f.services.Access.ApproveRequest(ctx, a.ID, alice)
	require.NoError(t, err)

	approved, err := f.services.Access.ListRequests(ctx, model.RequestFilter{Status: model.StatusApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, a.ID, approved[0].ID)

	mine, err := f.services.Access.ListRequests(ctx, model.RequestFilter{RequesterEmail: "DEV@example.com"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = f.services.Access.ListRequests(ctx, model.RequestFilter{Status: "ARCHIVED"})
	assert.ErrorIs(t, err, grant_errors.ErrValidation)

	_, err = f.services.Access.ListGrants(ctx, model.GrantFilter{Status: "EXPIRED"})
	assert.ErrorIs(t, err, grant_errors.ErrValidation)
}
