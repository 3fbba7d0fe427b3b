// dao/store.go
package dao

import (
	"context"
	"time"

	"github.com/dev-mohitbeniwal/grantflow/model"
)

// RequestStore persists AccessRequest records. UpdateRequest is a
// compare-and-set: it succeeds only while the stored version still equals
// expectedVersion, and stores the record with Version = expectedVersion+1.
type RequestStore interface {
	CreateRequest(ctx context.Context, req *model.AccessRequest) error
	GetRequest(ctx context.Context, requestID string) (*model.AccessRequest, error)
	UpdateRequest(ctx context.Context, req *model.AccessRequest, expectedVersion int64) (*model.AccessRequest, error)
	ListRequests(ctx context.Context, filter model.RequestFilter) ([]*model.AccessRequest, error)
}

// GrantStore persists GrantedAccess records and owns the rule that at most one
// ACTIVE grant exists per (user, asset, role). CreateGrant returns the
// existing ACTIVE grant when there is one; created reports which case applied.
type GrantStore interface {
	CreateGrant(ctx context.Context, in model.GrantRequest) (grant *model.GrantedAccess, created bool, err error)
	GetGrant(ctx context.Context, grantID string) (*model.GrantedAccess, error)
	FindActiveGrant(ctx context.Context, userEmail, assetName, role string) (*model.GrantedAccess, error)
	RevokeGrant(ctx context.Context, grantID, revokedBy string, revokedAt time.Time) (*model.GrantedAccess, error)
	ListGrants(ctx context.Context, filter model.GrantFilter) ([]*model.GrantedAccess, error)
}

// NotificationStore is append-mostly; only the read flag is ever mutated.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]*model.Notification, error)
	CountUnread(ctx context.Context, recipientEmail string, now time.Time) (int, error)
	MarkRead(ctx context.Context, recipientEmail, notificationID string) error
	MarkAllRead(ctx context.Context, recipientEmail string) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type AdminStore interface {
	GetAdminRole(ctx context.Context, email string) (*model.AdminRole, error)
	UpsertAdminRole(ctx context.Context, role *model.AdminRole) (*model.AdminRole, error)
	DeleteAdminRole(ctx context.Context, email string) error
	ListAdminRoles(ctx context.Context) ([]*model.AdminRole, error)
}

// Stores bundles one implementation of every contract.
type Stores struct {
	Requests      RequestStore
	Grants        GrantStore
	Notifications NotificationStore
	Admins        AdminStore
}
